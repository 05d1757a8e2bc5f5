package minio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/roadgrid/cvstore/internal/domain"
)

// timestampTagLayout is zero-padded so timestamp tags sort
// lexicographically and range queries reduce to string comparison.
const timestampTagLayout = "2006-01-02T15:04:05.000Z07:00"

// Config carries the object-store connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// ArchiveStore writes telemetry payloads to an S3-compatible bucket using
// the date-partitioned key convention
// {year}/{month}/{day}/{uuid}_{timestamp}.json.
type ArchiveStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// New connects to the object store and verifies the bucket exists.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*ArchiveStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	return &ArchiveStore{
		client: client,
		bucket: cfg.Bucket,
		logger: logger.With("component", "archive_store"),
	}, nil
}

// Put writes the record payload as a new object tagged with its timestamp
// and byte size, and returns the object key.
func (s *ArchiveStore) Put(ctx context.Context, rec domain.MessageRecord) (string, error) {
	key := ObjectKey(rec.TimeStamp, uuid.New())
	opts := minio.PutObjectOptions{
		ContentType: "application/json",
		UserTags: map[string]string{
			"TimeStamp": TimestampTag(rec.TimeStamp),
			"ByteSize":  ByteSizeTag(rec.ByteSize),
		},
	}

	reader := bytes.NewReader(rec.Payload)
	if _, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(reader.Len()), opts); err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return key, nil
}

// Remove deletes one object. MinIO treats removal of a missing object as
// success, which suits re-run purges.
func (s *ArchiveStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

// SearchRange lists object keys whose embedded timestamp falls in
// [start, end]. It walks the day-partitioned prefixes for the range and
// compares the timestamp portion of each key as a string, which the
// zero-padded layout makes equivalent to a time comparison.
func (s *ArchiveStore) SearchRange(ctx context.Context, start, end time.Time) ([]string, error) {
	startTag := TimestampTag(start)
	endTag := TimestampTag(end)

	var keys []string
	for day := start.UTC().Truncate(24 * time.Hour); !day.After(end.UTC()); day = day.AddDate(0, 0, 1) {
		prefix := fmt.Sprintf("%d/%02d/%02d/", day.Year(), int(day.Month()), day.Day())
		for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
			if obj.Err != nil {
				return nil, fmt.Errorf("list objects under %q: %w", prefix, obj.Err)
			}
			tag, ok := keyTimestamp(obj.Key)
			if !ok {
				continue
			}
			if tag >= startTag && tag <= endTag {
				keys = append(keys, obj.Key)
			}
		}
	}
	return keys, nil
}

// ObjectKey builds the date-partitioned object key for a record written at
// ts.
func ObjectKey(ts time.Time, id uuid.UUID) string {
	ts = ts.UTC()
	return fmt.Sprintf("%d/%02d/%02d/%s_%s.json",
		ts.Year(), int(ts.Month()), ts.Day(), id, TimestampTag(ts))
}

// TimestampTag formats ts in the zero-padded, lexicographically sortable
// tag layout.
func TimestampTag(ts time.Time) string {
	return ts.UTC().Format(timestampTagLayout)
}

// ByteSizeTag left-pads the byte size to 32 digits so numeric range
// queries work as string comparisons.
func ByteSizeTag(size int64) string {
	return fmt.Sprintf("%032d", size)
}

// keyTimestamp extracts the timestamp portion of an object key.
func keyTimestamp(key string) (string, bool) {
	name := key
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	i := strings.Index(name, "_")
	if i < 0 || !strings.HasSuffix(name, ".json") {
		return "", false
	}
	return strings.TrimSuffix(name[i+1:], ".json"), true
}
