package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// RawExtension is the extension of raw record archives.
const RawExtension = ".jsonl.zst"

// RawKey returns the archive key for a job and range suffix.
func RawKey(job, suffix string) string {
	if suffix == "" {
		return RawPrefix + job + RawExtension
	}
	return RawPrefix + job + "_" + suffix + RawExtension
}

// EncodeRaw compacts each record onto one line and zstd-compresses the
// result.
func EncodeRaw(records []json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	for i, rec := range records {
		if err := json.Compact(&buf, rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		buf.WriteByte('\n')
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()

	return enc.EncodeAll(buf.Bytes(), nil), nil
}

// DecodeRaw reverses EncodeRaw.
func DecodeRaw(data []byte) ([]json.RawMessage, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	plain, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}

	var records []json.RawMessage
	for _, line := range bytes.Split(plain, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}
		records = append(records, json.RawMessage(line))
	}
	return records, nil
}

// WriteRaw archives raw API bodies under key.
func (s *Store) WriteRaw(ctx context.Context, key string, records []json.RawMessage) error {
	data, err := EncodeRaw(records)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return s.write(ctx, "raw", key, data)
}

// ReadRaw loads the raw API bodies archived under key.
func (s *Store) ReadRaw(ctx context.Context, key string) ([]json.RawMessage, error) {
	data, err := s.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	records, err := DecodeRaw(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return records, nil
}
