// Package storage persists collector artifacts (parquet tables, checkpoint
// markers and raw record archives) in a gocloud blob bucket.
//
// A plain directory path opens a local fileblob bucket; s3://, gs:// and
// mem:// URLs open the matching driver.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob" // GCS driver
	_ "gocloud.dev/blob/memblob" // in-memory driver
	_ "gocloud.dev/blob/s3blob"  // S3 driver
	"gocloud.dev/gcerrors"
)

var (
	objectsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scouter_storage_objects_written_total",
		Help: "Total objects written by kind (table, raw, json)",
	}, []string{"kind"})

	bytesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scouter_storage_bytes_written_total",
		Help: "Total bytes written by kind (table, raw, json)",
	}, []string{"kind"})
)

// ErrNotFound is returned when a key does not exist in the bucket.
var ErrNotFound = errors.New("object not found")

// Store is a bucket rooted at one output location.
type Store struct {
	bucket *blob.Bucket
	uri    string
	logger zerolog.Logger
}

// Open opens the bucket for location. A location without a URL scheme is
// treated as a local directory and created if missing.
func Open(ctx context.Context, location string) (*Store, error) {
	if location == "" {
		return nil, errors.New("storage location is required")
	}

	if strings.Contains(location, "://") {
		bucket, err := blob.OpenBucket(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("open bucket %s: %w", location, err)
		}
		return NewStore(bucket, location), nil
	}

	dir, err := filepath.Abs(location)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", location, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}
	// only the artifacts themselves belong in the directory, no .attrs sidecars
	bucket, err := fileblob.OpenBucket(dir, &fileblob.Options{Metadata: fileblob.MetadataDontWrite})
	if err != nil {
		return nil, fmt.Errorf("open directory %s: %w", dir, err)
	}
	return NewStore(bucket, dir), nil
}

// NewStore wraps an already opened bucket. uri is used only for display.
func NewStore(bucket *blob.Bucket, uri string) *Store {
	return &Store{
		bucket: bucket,
		uri:    uri,
		logger: log.With().Str("component", "storage").Logger(),
	}
}

// URI returns the display location of key.
func (s *Store) URI(key string) string {
	if strings.HasSuffix(s.uri, "/") {
		return s.uri + key
	}
	return s.uri + "/" + key
}

// Write stores data under key, replacing any existing object.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	return s.write(ctx, "blob", key, data)
}

func (s *Store) write(ctx context.Context, kind, key string, data []byte) error {
	w, err := s.bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("create writer for %s: %w", key, err)
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer for %s: %w", key, err)
	}

	objectsWritten.WithLabelValues(kind).Inc()
	bytesWritten.WithLabelValues(kind).Add(float64(len(data)))
	s.logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("Object written")
	return nil
}

// Read returns the object stored under key, or ErrNotFound.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.URI(key))
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Exists reports whether key exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	return s.bucket.Exists(ctx, key)
}

// List returns all keys with the given prefix in lexical order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	iter := s.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		if obj.IsDir {
			continue
		}
		keys = append(keys, obj.Key)
	}

	return keys, nil
}

// Close releases the bucket.
func (s *Store) Close() error {
	if s.bucket != nil {
		return s.bucket.Close()
	}
	return nil
}
