package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"calendar-sync/core/reconcile"
	"calendar-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const timeLayout = "20060102T150405Z"

// Report is the archived record of one pass.
type Report struct {
	PassID  string                 `json:"pass_id"`
	Trigger string                 `json:"trigger"`
	Summary *reconcile.PassSummary `json:"summary,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Entry describes a stored report.
type Entry struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Archive stores reports in a bucket.
type Archive struct {
	client storage.Client
	bucket string
	cfg    Config
	logger *zap.Logger
}

// NewArchive creates an archive. A nil logger discards logs.
func NewArchive(client storage.Client, bucket string, cfg Config, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	return &Archive{client: client, bucket: bucket, cfg: cfg, logger: logger}
}

// Key returns the object name of r. Reports without a summary are named after now.
func (a *Archive) Key(r Report, now time.Time) string {
	at := now
	if r.Summary != nil && !r.Summary.StartedAt.IsZero() {
		at = r.Summary.StartedAt
	}
	name := at.UTC().Format(timeLayout) + "-" + r.PassID + ".json"
	if a.cfg.Prefix == "" {
		return name
	}
	return path.Join(a.cfg.Prefix, name)
}

// Save writes r and returns its object name.
func (a *Archive) Save(ctx context.Context, r Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	key := a.Key(r, time.Now())
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("upload report %s: %w", key, err)
	}

	a.logger.Debug("Report archived", zap.String("key", key), zap.Int("bytes", len(data)))
	return key, nil
}

// List returns up to limit reports, newest first. A limit of zero or less returns all.
func (a *Archive) List(ctx context.Context, limit int) ([]Entry, error) {
	entries, err := a.list(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (a *Archive) list(ctx context.Context) ([]Entry, error) {
	prefix := a.cfg.Prefix
	if prefix != "" {
		prefix += "/"
	}

	var entries []Entry
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list reports: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		entries = append(entries, Entry{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key > entries[j].Key
	})
	return entries, nil
}

// Load reads the report stored under key.
func (a *Archive) Load(ctx context.Context, key string) (*Report, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", key, err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", key, err)
	}
	return &r, nil
}

// Prune deletes every report older than the newest cfg.Keep and returns how many
// were removed.
func (a *Archive) Prune(ctx context.Context) (int, error) {
	if a.cfg.Keep <= 0 {
		return 0, nil
	}

	entries, err := a.list(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) <= a.cfg.Keep {
		return 0, nil
	}

	stale := entries[a.cfg.Keep:]
	objects := make(chan minio.ObjectInfo, len(stale))
	for _, e := range stale {
		objects <- minio.ObjectInfo{Key: e.Key}
	}
	close(objects)

	failed := 0
	for rerr := range a.client.RemoveObjects(ctx, a.bucket, objects, minio.RemoveObjectsOptions{}) {
		failed++
		a.logger.Warn("Failed to prune report", zap.String("key", rerr.ObjectName), zap.Error(rerr.Err))
	}

	removed := len(stale) - failed
	if failed > 0 {
		return removed, fmt.Errorf("prune reports: %d of %d deletions failed", failed, len(stale))
	}
	a.logger.Info("Reports pruned", zap.Int("removed", removed))
	return removed, nil
}
