// Package normalize turns raw Riot API records into flat output tables.
//
// Every extractor walks its input once, builds each row through a
// record.Reader and drops the row (never the batch) when a required field
// is missing. Dropped rows are returned as Skip values next to the kept
// rows so callers can count and report them.
package normalize

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jo-urn/lol-scouter/pkg/tables"
)

var (
	rowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scouter_normalize_rows_total",
			Help: "Total number of rows produced per output table, checkpoint snapshots included",
		},
		[]string{"table"},
	)

	skippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scouter_normalize_skipped_total",
			Help: "Total number of sub-records dropped per output table",
		},
		[]string{"table"},
	)
)

// Skip describes one dropped sub-record.
type Skip struct {
	Table       string
	Record      int // index of the raw record in the batch
	Participant int // participant or entry index, -1 when the whole record was dropped
	Reason      string
}

// String implements fmt.Stringer.
func (s Skip) String() string {
	if s.Participant < 0 {
		return fmt.Sprintf("%s: record %d: %s", s.Table, s.Record, s.Reason)
	}
	return fmt.Sprintf("%s: record %d participant %d: %s", s.Table, s.Record, s.Participant, s.Reason)
}

// Extraction is the result of building one table: kept rows plus the
// reasons for every dropped sub-record.
type Extraction[T tables.Row] struct {
	Rows    []T
	Skipped []Skip
}

// Table returns the name of the table being built.
func (e *Extraction[T]) Table() string {
	return tables.NameOf[T]()
}

func (e *Extraction[T]) add(rows ...T) {
	e.Rows = append(e.Rows, rows...)
}

func (e *Extraction[T]) skip(record, participant int, err error) {
	e.Skipped = append(e.Skipped, Skip{
		Table:       e.Table(),
		Record:      record,
		Participant: participant,
		Reason:      err.Error(),
	})
}

// observe publishes row and skip counts once an extraction is complete.
func (e *Extraction[T]) observe() {
	name := e.Table()
	rowsTotal.WithLabelValues(name).Add(float64(len(e.Rows)))
	skippedTotal.WithLabelValues(name).Add(float64(len(e.Skipped)))
}
