package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/jo-urn/lol-scouter/pkg/normalize"
	"github.com/jo-urn/lol-scouter/pkg/record"
	"github.com/jo-urn/lol-scouter/pkg/storage"
	"github.com/jo-urn/lol-scouter/pkg/tables"
)

// ErrUnknownJob is returned for a job without a raw archive.
var ErrUnknownJob = errors.New("job has no raw archive")

// Renormalize rebuilds a job's tables from the raw archive of an earlier
// run over rng, without calling the API. rng must be the range the run
// resolved to.
func (c *Collector) Renormalize(ctx context.Context, job string, rng Range) (*Report, error) {
	switch job {
	case JobAccounts, JobHistory, JobMatches:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownJob, job)
	}
	if rng.Start < 0 || rng.End < rng.Start {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRange, rng)
	}

	logger := c.jobLogger(job).With().Bool("offline", true).Logger()

	key := storage.RawKey(job, rng.Suffix())
	raw, err := c.deps.Input.ReadRaw(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, c.deps.Input.URI(key))
		}
		return nil, err
	}

	rep := newReport(job, rng, c.now())
	items := make([]record.Value, 0, len(raw))
	for i, body := range raw {
		rep.Requested++
		v, err := record.Decode(body)
		if err != nil {
			f := rep.fail(i, "", 0, err)
			logger.Warn().Int("index", i).Str("reason", f.Message).Msg("Skipping archived record")
			continue
		}
		rep.Fetched++
		items = append(items, v)
	}

	switch job {
	case JobAccounts:
		ext := normalize.AccountInfo(items)
		rep.skip(ext.Skipped)
		_, err = writeTable(ctx, c, rep, "", "", ext.Rows)
	case JobHistory:
		ext := normalize.MatchIDs(items)
		rep.skip(ext.Skipped)
		_, err = writeTable(ctx, c, rep, "", "", tables.Dedup(ext.Rows))
	case JobMatches:
		mt := normalize.Matches(items, c.championLookup(ctx, logger))
		rep.skip(allSkips(mt))
		_, err = writeMatchTables(ctx, c, rep, "", rng.Suffix(), mt)
	}
	if err != nil {
		return rep, err
	}

	rep.finish(nil, c.now())
	rep.Log(logger)
	return rep, nil
}
