// Package checkpoint writes periodic snapshots of a running collection job
// and a JSON marker describing how far the job got.
//
// Snapshots are cumulative: each one holds everything collected since the
// job started. Resuming is a manual step; LoadMarker and Marker.Remaining
// tell the operator which range to pass to the next run.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jo-urn/lol-scouter/pkg/storage"
)

// Default cadences, in processed items.
const (
	DefaultFragmentEvery = 100
	DefaultBackupEvery   = 1000
)

var (
	// ErrNoCheckpoint is returned when no marker exists for a job.
	ErrNoCheckpoint = errors.New("no checkpoint found")

	checkpointsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scouter_checkpoints_written_total",
		Help: "Total checkpoints written by job",
	}, []string{"job"})

	checkpointFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scouter_checkpoint_failures_total",
		Help: "Total checkpoint writes that failed by job",
	}, []string{"job"})
)

// Marker records the progress of one job run.
type Marker struct {
	Job       string    `json:"job"`
	Start     int       `json:"start"`
	End       int       `json:"end"`
	Processed int       `json:"processed"`
	NextIndex int       `json:"next_index"`
	Complete  bool      `json:"complete"`
	Files     []string  `json:"files,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Remaining returns the half-open range still to collect. done is true when
// the run finished or reached its end.
func (m *Marker) Remaining() (start, end int, done bool) {
	if m.Complete || m.NextIndex >= m.End {
		return m.End, m.End, true
	}
	return m.NextIndex, m.End, false
}

// Store persists markers. *storage.Store implements it.
type Store interface {
	WriteJSON(ctx context.Context, key string, v any) error
	ReadJSON(ctx context.Context, key string, v any) error
}

// SnapshotFunc persists everything collected for [start, end) and returns
// the keys it wrote.
type SnapshotFunc func(ctx context.Context, start, end int) ([]string, error)

// Config configures a Writer.
type Config struct {
	// Job names the marker file.
	Job string

	// Dir is the key prefix for the marker, e.g. "backups/".
	Dir string

	// Every is the checkpoint cadence. Zero or less disables checkpoints.
	Every int

	// Start and End are the job's input range, End exclusive.
	Start int
	End   int
}

// Writer decides when to checkpoint and persists snapshot plus marker.
type Writer struct {
	cfg      Config
	store    Store
	snapshot SnapshotFunc
	now      func() time.Time
	logger   zerolog.Logger
}

// NewWriter creates a checkpoint writer.
func NewWriter(store Store, cfg Config, snapshot SnapshotFunc) *Writer {
	return &Writer{
		cfg:      cfg,
		store:    store,
		snapshot: snapshot,
		now:      time.Now,
		logger: log.With().
			Str("component", "checkpoint").
			Str("job", cfg.Job).
			Logger(),
	}
}

// MarkerKey returns the key of a job's marker.
func MarkerKey(dir, job string) string {
	return path.Join(dir, job+"_checkpoint.json")
}

// Due reports whether processed items trigger a checkpoint.
func (w *Writer) Due(processed int) bool {
	return w.cfg.Every > 0 && processed > 0 && processed%w.cfg.Every == 0
}

// MaybeCheckpoint writes a snapshot of [Start, Start+processed) when the
// cadence is reached. Failures are logged and counted; the job keeps
// running. It reports whether a checkpoint was written.
func (w *Writer) MaybeCheckpoint(ctx context.Context, processed int) bool {
	if !w.Due(processed) {
		return false
	}

	end := w.cfg.Start + processed
	files, err := w.snapshot(ctx, w.cfg.Start, end)
	if err != nil {
		checkpointFailures.WithLabelValues(w.cfg.Job).Inc()
		w.logger.Error().Err(err).Int("processed", processed).Msg("Checkpoint snapshot failed")
		return false
	}

	if err := w.saveMarker(ctx, processed, false, files); err != nil {
		checkpointFailures.WithLabelValues(w.cfg.Job).Inc()
		w.logger.Error().Err(err).Int("processed", processed).Msg("Checkpoint marker write failed")
		return false
	}

	checkpointsWritten.WithLabelValues(w.cfg.Job).Inc()
	w.logger.Info().
		Int("processed", processed).
		Int("start", w.cfg.Start).
		Int("end", end).
		Strs("files", files).
		Msg("Checkpoint written")
	return true
}

// Finish marks the run complete.
func (w *Writer) Finish(ctx context.Context, processed int, files []string) error {
	if err := w.saveMarker(ctx, processed, true, files); err != nil {
		checkpointFailures.WithLabelValues(w.cfg.Job).Inc()
		return err
	}
	return nil
}

func (w *Writer) saveMarker(ctx context.Context, processed int, complete bool, files []string) error {
	m := Marker{
		Job:       w.cfg.Job,
		Start:     w.cfg.Start,
		End:       w.cfg.End,
		Processed: processed,
		NextIndex: w.cfg.Start + processed,
		Complete:  complete,
		Files:     files,
		UpdatedAt: w.now().UTC(),
	}
	key := MarkerKey(w.cfg.Dir, w.cfg.Job)
	if err := w.store.WriteJSON(ctx, key, m); err != nil {
		return fmt.Errorf("write marker %s: %w", key, err)
	}
	return nil
}

// LoadMarker reads the marker of a job, or ErrNoCheckpoint.
func LoadMarker(ctx context.Context, store Store, dir, job string) (*Marker, error) {
	var m Marker
	if err := store.ReadJSON(ctx, MarkerKey(dir, job), &m); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoCheckpoint
		}
		return nil, fmt.Errorf("load checkpoint for %s: %w", job, err)
	}
	return &m, nil
}
