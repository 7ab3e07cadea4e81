package collector

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned when a range does not fit its input list.
var ErrInvalidRange = errors.New("invalid collection range")

// Range is a half-open [Start, End) window over a job's input list. A
// negative End means "to the end of the list".
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// All covers the whole input list.
var All = Range{Start: 0, End: -1}

// Resolve checks r against a list of n items and fills in an open End.
func (r Range) Resolve(n int) (Range, error) {
	end := r.End
	if end < 0 {
		end = n
	}
	if r.Start < 0 || r.Start > end || end > n {
		return Range{}, fmt.Errorf("%w: %s over %d items", ErrInvalidRange, r, n)
	}
	return Range{Start: r.Start, End: end}, nil
}

// Len returns the number of items in a resolved range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Suffix returns the "<start>-<end>" file name suffix.
func (r Range) Suffix() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// String implements fmt.Stringer.
func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}
