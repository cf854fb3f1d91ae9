// Package mocks provides a testify mock of storage.Client for report archive tests.
package mocks

import (
	"context"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
)

// Client mocks storage.Client. ListObjects and RemoveObjects accept either a ready
// channel or a slice as their return value; slices are replayed on a fresh channel
// per call so the same expectation can serve repeated listings.
type Client struct {
	mock.Mock
}

// NewClient returns a mock whose expectations are asserted when t finishes.
func NewClient(t *testing.T) *Client {
	c := new(Client)
	t.Cleanup(func() { c.AssertExpectations(t) })
	return c
}

// Objects builds a listing of report keys with a nominal size.
func Objects(keys ...string) []minio.ObjectInfo {
	out := make([]minio.ObjectInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, minio.ObjectInfo{Key: k, Size: 10})
	}
	return out
}

func (m *Client) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *Client) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucketName, opts).Error(0)
}

func (m *Client) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	info, _ := args.Get(0).(minio.UploadInfo)
	return info, args.Error(1)
}

func (m *Client) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	obj, _ := args.Get(0).(io.ReadCloser)
	return obj, args.Error(1)
}

func (m *Client) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	switch v := m.Called(ctx, bucketName, opts).Get(0).(type) {
	case <-chan minio.ObjectInfo:
		return v
	case []minio.ObjectInfo:
		return replay(v)
	default:
		return replay[minio.ObjectInfo](nil)
	}
}

func (m *Client) RemoveObjects(ctx context.Context, bucketName string, objectsCh <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError {
	switch v := m.Called(ctx, bucketName, objectsCh, opts).Get(0).(type) {
	case <-chan minio.RemoveObjectError:
		return v
	case []minio.RemoveObjectError:
		return replay(v)
	default:
		return replay[minio.RemoveObjectError](nil)
	}
}

func replay[T any](items []T) <-chan T {
	ch := make(chan T, len(items))
	for _, it := range items {
		ch <- it
	}
	close(ch)
	return ch
}
