// Package collector runs the collection jobs: league entries, account
// resolution, match history discovery and match detail collection.
//
// Jobs are strictly sequential. Each run owns its own quota limiter, walks
// its input range one item at a time, checkpoints periodically and writes
// its tables once the range is exhausted. An item whose fetch fails is
// logged and left out; only a missing input table, an invalid range or an
// interrupted run stop a job.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jo-urn/lol-scouter/pkg/pagination"
	"github.com/jo-urn/lol-scouter/pkg/ratelimit"
	"github.com/jo-urn/lol-scouter/pkg/storage"
	"github.com/jo-urn/lol-scouter/pkg/tables"
)

// Job names, used for logging, checkpoint markers and raw archives.
const (
	JobEntries  = "entries"
	JobAccounts = "accounts"
	JobMerge    = "merge"
	JobHistory  = "history"
	JobMatches  = "matches"
)

// ErrMissingInput is returned when a job's input table cannot be read.
var ErrMissingInput = errors.New("missing input table")

// ChampionSource provides the champion key -> name lookup.
// *client.Client implements it.
type ChampionSource interface {
	FetchChampions(ctx context.Context, version string) (map[int64]string, error)
}

// Deps are the collaborators of a Collector.
type Deps struct {
	// Getter performs API requests. Required.
	Getter pagination.Getter

	// Champions provides the champion lookup for the match job.
	Champions ChampionSource

	// Output receives tables, checkpoints and raw archives. Required.
	Output *storage.Store

	// Input holds the tables earlier jobs produced. Defaults to Output.
	Input *storage.Store

	// Cache optionally serves summoner and match bodies, which never change
	// once they exist. Listings always go to the API.
	Cache pagination.Cache

	// Clock replaces the wall clock for cooldowns.
	Clock ratelimit.Clock
}

// Collector runs jobs against one output location.
type Collector struct {
	deps   Deps
	cfg    Config
	now    func() time.Time
	logger zerolog.Logger
}

// New creates a collector.
func New(deps Deps, cfg Config) (*Collector, error) {
	if deps.Getter == nil {
		return nil, errors.New("collector: getter is required")
	}
	if deps.Output == nil {
		return nil, errors.New("collector: output store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("collector: %w", err)
	}
	if deps.Input == nil {
		deps.Input = deps.Output
	}

	return &Collector{
		deps:   deps,
		cfg:    cfg,
		now:    time.Now,
		logger: log.With().Str("component", "collector").Logger(),
	}, nil
}

// Config returns the collector configuration.
func (c *Collector) Config() Config {
	return c.cfg
}

// jobLogger returns the logger for one job.
func (c *Collector) jobLogger(job string) zerolog.Logger {
	return c.logger.With().Str("job", job).Logger()
}

// newFetcher builds the limiter and fetcher for one job run. progress is
// reported at every cooldown.
func (c *Collector) newFetcher(logger zerolog.Logger, progress ratelimit.ProgressFunc) (*pagination.Fetcher, *ratelimit.FixedWindow, error) {
	opts := []ratelimit.Option{
		ratelimit.WithLogger(logger),
		ratelimit.WithProgress(progress),
	}
	if c.deps.Clock != nil {
		opts = append(opts, ratelimit.WithClock(c.deps.Clock))
	}

	limiter, window, err := ratelimit.New(c.cfg.RateLimit, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create limiter: %w", err)
	}

	fetcherOpts := []pagination.Option{pagination.WithLogger(logger)}
	if c.deps.Cache != nil {
		fetcherOpts = append(fetcherOpts, pagination.WithCache(c.deps.Cache))
	}
	return pagination.NewFetcher(c.deps.Getter, limiter, fetcherOpts...), window, nil
}

// readInput loads a whole input table. A missing table is fatal.
func readInput[T tables.Row](ctx context.Context, c *Collector) ([]T, error) {
	key := tables.FileName(tables.NameOf[T](), "")
	rows, err := storage.ReadTable[T](ctx, c.deps.Input, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, c.deps.Input.URI(key))
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return rows, nil
}

// writeTable stores rows under prefix and records the output in rep when
// rep is not nil.
func writeTable[T tables.Row](ctx context.Context, c *Collector, rep *Report, prefix, suffix string, rows []T) (string, error) {
	key, err := storage.WriteTable(ctx, c.deps.Output, prefix, suffix, rows)
	if err != nil {
		return "", err
	}
	if rep != nil {
		uri := c.deps.Output.URI(key)
		rep.output(uri, tables.NameOf[T](), len(rows))
		c.logger.Info().Str("path", uri).Int("rows", len(rows)).Msg("File saved")
	}
	return key, nil
}

// archive stores the raw bodies of a run when enabled. Failures are logged
// since the tables are already written.
func (c *Collector) archive(ctx context.Context, logger zerolog.Logger, rep *Report, job string, r Range, raw []json.RawMessage) {
	if !c.cfg.ArchiveRaw {
		return
	}
	key := storage.RawKey(job, r.Suffix())
	if err := c.deps.Output.WriteRaw(ctx, key, raw); err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Raw archive write failed")
		return
	}
	rep.Outputs = append(rep.Outputs, c.deps.Output.URI(key))
	logger.Info().Str("path", c.deps.Output.URI(key)).Int("records", len(raw)).Msg("Raw archive saved")
}

// isInterrupted reports whether err should stop the job.
func isInterrupted(err error) bool {
	return errors.Is(err, pagination.ErrInterrupted)
}
