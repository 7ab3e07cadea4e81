package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/jo-urn/lol-scouter/pkg/tables"
)

// Key prefixes for intermediate artifacts.
const (
	FragmentPrefix = "fragmented_data/"
	BackupPrefix   = "backups/"
	RawPrefix      = "raw/"
)

// TableKey returns the key of a table file under prefix.
func TableKey(prefix, table, suffix string) string {
	return path.Join(prefix, tables.FileName(table, suffix))
}

// WriteTable encodes rows as parquet and stores them under
// prefix/<table>[_suffix].parquet. It returns the key written.
func WriteTable[T tables.Row](ctx context.Context, s *Store, prefix, suffix string, rows []T) (string, error) {
	key := TableKey(prefix, tables.NameOf[T](), suffix)

	data, err := tables.Encode(rows)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	if err := s.write(ctx, "table", key, data); err != nil {
		return "", err
	}
	return key, nil
}

// ReadTable loads every row of the table stored under key. A missing table
// is reported as ErrNotFound.
func ReadTable[T tables.Row](ctx context.Context, s *Store, key string) ([]T, error) {
	data, err := s.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	rows, err := tables.Decode[T](data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return rows, nil
}

// WriteJSON stores v as indented JSON.
func (s *Store) WriteJSON(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.write(ctx, "json", key, data)
}

// ReadJSON decodes the JSON object stored under key into v.
func (s *Store) ReadJSON(ctx context.Context, key string, v any) error {
	data, err := s.Read(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}
