// Package storage wraps the MinIO Go client for the object storage used by the
// pass report archive (see core/report).
//
// The Client interface exposes only the calls the archive makes, which keeps it easy
// to mock (core/storage/mocks). Both AWS S3 and self-hosted MinIO work.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    ...
//	}
package storage
