package tables

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// Extension is the file extension for encoded tables.
const Extension = ".parquet"

// FileName returns the object name for a table, with an optional
// "<start>-<end>" range suffix.
func FileName(table, suffix string) string {
	if suffix == "" {
		return table + Extension
	}
	return fmt.Sprintf("%s_%s%s", table, suffix, Extension)
}

// NameOf returns the table name of row type T.
func NameOf[T Row]() string {
	var zero T
	return zero.TableName()
}

// Dedup drops rows equal to an earlier row, keeping first-seen order.
func Dedup[T comparable](rows []T) []T {
	seen := make(map[T]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row]; ok {
			continue
		}
		seen[row] = struct{}{}
		out = append(out, row)
	}
	return out
}

// Encode serializes rows as a snappy-compressed parquet file.
func Encode[T any](rows []T) ([]byte, error) {
	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows, parquet.Compression(&parquet.Snappy)); err != nil {
		return nil, fmt.Errorf("encode parquet: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads every row of a parquet file.
func Decode[T any](data []byte) ([]T, error) {
	rows, err := parquet.Read[T](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("decode parquet: %w", err)
	}
	return rows, nil
}
