// Package record gives path-based, error-recording access to decoded Riot
// API response bodies.
//
// Bodies are decoded once with json.Decoder.UseNumber so that 64-bit ids
// (gameId, creation timestamps) survive without float rounding. A Reader
// wraps one decoded value and returns zero values for missing or
// mistyped fields while remembering the first failure, so row builders can
// read every column straight through and make a single skip decision at
// the end.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotObject is returned when a body expected to be a JSON object is not.
var ErrNotObject = errors.New("record is not an object")

// ErrNotList is returned when a body expected to be a JSON array is not.
var ErrNotList = errors.New("record is not a list")

// Value is a decoded JSON value: map[string]any, []any, json.Number,
// string, bool or nil.
type Value = any

// Decode parses a JSON body, keeping numbers as json.Number.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v Value
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return v, nil
}

// DecodeList parses a JSON body and requires it to be an array.
func DecodeList(data []byte) ([]Value, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, ErrNotList
	}
	return list, nil
}

// MissingFieldError reports a field that was absent or had the wrong type.
type MissingFieldError struct {
	Path string
	Want string
}

// Error implements error.
func (e *MissingFieldError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("missing field %q", e.Path)
	}
	return fmt.Sprintf("field %q: want %s", e.Path, e.Want)
}

// Lookup walks v along path. String segments index objects, int segments
// index arrays.
func Lookup(v Value, path ...any) (Value, bool) {
	cur := v
	for _, seg := range path {
		switch s := seg.(type) {
		case string:
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			next, ok := obj[s]
			if !ok {
				return nil, false
			}
			cur = next
		case int:
			list, ok := cur.([]any)
			if !ok || s < 0 || s >= len(list) {
				return nil, false
			}
			cur = list[s]
		default:
			return nil, false
		}
	}
	return cur, true
}

// FormatPath renders a lookup path the way it appears in error messages,
// e.g. participants[3].stats.win.
func FormatPath(path ...any) string {
	var b strings.Builder
	for _, seg := range path {
		switch s := seg.(type) {
		case int:
			b.WriteString("[")
			b.WriteString(strconv.Itoa(s))
			b.WriteString("]")
		default:
			if b.Len() > 0 {
				b.WriteString(".")
			}
			fmt.Fprint(&b, s)
		}
	}
	return b.String()
}

// Reader reads typed fields from one record and keeps the first error.
type Reader struct {
	root Value
	err  error
}

// NewReader wraps v.
func NewReader(v Value) *Reader {
	return &Reader{root: v}
}

// Err returns the first field error encountered, or nil.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) fail(want string, path []any) {
	if r.err == nil {
		r.err = &MissingFieldError{Path: FormatPath(path...), Want: want}
	}
}

// Has reports whether path resolves to a non-null value without recording an error.
func (r *Reader) Has(path ...any) bool {
	v, ok := Lookup(r.root, path...)
	return ok && v != nil
}

// Value returns the raw value at path.
func (r *Reader) Value(path ...any) Value {
	v, ok := Lookup(r.root, path...)
	if !ok || v == nil {
		r.fail("", path)
		return nil
	}
	return v
}

// Int returns the integer at path.
func (r *Reader) Int(path ...any) int64 {
	v := r.Value(path...)
	if v == nil {
		return 0
	}
	n, ok := toInt(v)
	if !ok {
		r.fail("integer", path)
		return 0
	}
	return n
}

// Float returns the number at path.
func (r *Reader) Float(path ...any) float64 {
	v := r.Value(path...)
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			r.fail("number", path)
			return 0
		}
		return f
	case float64:
		return n
	default:
		r.fail("number", path)
		return 0
	}
}

// String returns the string at path.
func (r *Reader) String(path ...any) string {
	v := r.Value(path...)
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail("string", path)
		return ""
	}
	return s
}

// Bool returns the boolean at path.
func (r *Reader) Bool(path ...any) bool {
	v := r.Value(path...)
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.fail("boolean", path)
		return false
	}
	return b
}

// Flag returns the boolean at path as 0 or 1.
func (r *Reader) Flag(path ...any) int64 {
	if r.Bool(path...) {
		return 1
	}
	return 0
}

// List returns the array at path.
func (r *Reader) List(path ...any) []Value {
	v := r.Value(path...)
	if v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		r.fail("list", path)
		return nil
	}
	return list
}

func toInt(v Value) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil || f != float64(int64(f)) {
			return 0, false
		}
		return int64(f), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
