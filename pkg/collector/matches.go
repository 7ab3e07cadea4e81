package collector

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/jo-urn/lol-scouter/pkg/checkpoint"
	"github.com/jo-urn/lol-scouter/pkg/normalize"
	"github.com/jo-urn/lol-scouter/pkg/record"
	"github.com/jo-urn/lol-scouter/pkg/storage"
	"github.com/jo-urn/lol-scouter/pkg/tables"
)

// CollectMatches downloads the detail of every match_ids game in rng and
// writes the ten match tables with a "<start>-<end>" suffix. Backups of all
// tables go to backups/ every BackupEvery items.
func (c *Collector) CollectMatches(ctx context.Context, rng Range) (*Report, error) {
	logger := c.jobLogger(JobMatches)

	ids, err := readInput[tables.MatchIDRow](ctx, c)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("matches", len(ids)).Msg("Loaded match ids")

	rng, err = rng.Resolve(len(ids))
	if err != nil {
		return nil, err
	}
	rep := newReport(JobMatches, rng, c.now())

	champions := c.championLookup(ctx, logger)

	var (
		matches []record.Value
		raw     []json.RawMessage
	)
	fetcher, window, err := c.newFetcher(logger, func() int { return len(matches) })
	if err != nil {
		return nil, err
	}

	cp := checkpoint.NewWriter(c.deps.Output, checkpoint.Config{
		Job:   JobMatches,
		Dir:   storage.BackupPrefix,
		Every: c.cfg.BackupEvery,
		Start: rng.Start,
		End:   rng.End,
	}, func(ctx context.Context, start, end int) ([]string, error) {
		mt := normalize.Matches(matches, champions)
		return writeMatchTables(ctx, c, nil, storage.BackupPrefix, Range{Start: start, End: end}.Suffix(), mt)
	})

	for i := rng.Start; i < rng.End; i++ {
		rep.Requested++
		id := strconv.FormatInt(ids[i].GameID, 10)

		body, err := fetcher.FetchImmutable(ctx, "/lol/match/v4/matches/"+id, nil)
		switch {
		case err == nil:
			v, decodeErr := record.Decode(body)
			if decodeErr != nil {
				f := rep.fail(i, id, 0, decodeErr)
				logger.Warn().Int("index", i).Str("reason", f.Message).Msg("Skipping match")
				break
			}
			rep.Fetched++
			matches = append(matches, v)
			raw = append(raw, body)
		case isInterrupted(err):
			rep.finish(window, c.now())
			return rep, err
		default:
			f := rep.fail(i, id, 0, err)
			logger.Warn().Int("index", i).Str("reason", f.Message).Msg("Skipping match")
		}

		if cp.MaybeCheckpoint(ctx, i-rng.Start+1) {
			rep.Checkpoints++
		}
	}

	mt := normalize.Matches(matches, champions)
	logSkips(logger, mt)

	keys, err := writeMatchTables(ctx, c, rep, "", rng.Suffix(), mt)
	if err != nil {
		rep.finish(window, c.now())
		return rep, err
	}
	if err := cp.Finish(ctx, rng.Len(), keys); err != nil {
		logger.Error().Err(err).Msg("Checkpoint marker write failed")
	}
	c.archive(ctx, logger, rep, JobMatches, rng, raw)

	rep.skip(allSkips(mt))
	rep.finish(window, c.now())
	rep.Log(logger)
	return rep, nil
}

// championLookup fetches the champion names once per run. No table depends
// on it, so a failure only leaves the lookup empty.
func (c *Collector) championLookup(ctx context.Context, logger zerolog.Logger) map[int64]string {
	if c.deps.Champions == nil {
		return nil
	}
	champions, err := c.deps.Champions.FetchChampions(ctx, c.cfg.DataDragonVersion)
	if err != nil {
		logger.Warn().Err(err).Str("version", c.cfg.DataDragonVersion).Msg("Champion lookup unavailable")
		return nil
	}
	return champions
}

// writeMatchTables writes every table of mt and returns the keys written.
func writeMatchTables(ctx context.Context, c *Collector, rep *Report, prefix, suffix string, mt *normalize.MatchTables) ([]string, error) {
	var keys []string
	add := func(key string, err error) error {
		if err != nil {
			return err
		}
		keys = append(keys, key)
		return nil
	}

	steps := []func() error{
		func() error { return add(writeTable(ctx, c, rep, prefix, suffix, mt.Info.Rows)) },
		func() error { return add(writeTable(ctx, c, rep, prefix, suffix, mt.Bans.Rows)) },
		func() error { return add(writeTable(ctx, c, rep, prefix, suffix, mt.Picks.Rows)) },
		func() error { return add(writeTable(ctx, c, rep, prefix, suffix, mt.Players.Rows)) },
		func() error { return add(writeTable(ctx, c, rep, prefix, suffix, mt.PlayerLanes.Rows)) },
		func() error { return add(writeTable(ctx, c, rep, prefix, suffix, mt.PlayerChamps.Rows)) },
		func() error { return add(writeTable(ctx, c, rep, prefix, suffix, mt.LaningStats.Rows)) },
		func() error { return add(writeTable(ctx, c, rep, prefix, suffix, mt.CombatStats.Rows)) },
		func() error { return add(writeTable(ctx, c, rep, prefix, suffix, mt.FlairStats.Rows)) },
		func() error { return add(writeTable(ctx, c, rep, prefix, suffix, mt.ObjectiveStats.Rows)) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return keys, err
		}
	}
	return keys, nil
}

func allSkips(mt *normalize.MatchTables) []normalize.Skip {
	var out []normalize.Skip
	out = append(out, mt.Info.Skipped...)
	out = append(out, mt.Bans.Skipped...)
	out = append(out, mt.Picks.Skipped...)
	out = append(out, mt.Players.Skipped...)
	out = append(out, mt.PlayerLanes.Skipped...)
	out = append(out, mt.PlayerChamps.Skipped...)
	out = append(out, mt.LaningStats.Skipped...)
	out = append(out, mt.CombatStats.Skipped...)
	out = append(out, mt.FlairStats.Skipped...)
	out = append(out, mt.ObjectiveStats.Skipped...)
	return out
}

func logSkips(logger zerolog.Logger, mt *normalize.MatchTables) {
	for _, s := range allSkips(mt) {
		logger.Debug().Str("table", s.Table).Int("record", s.Record).Int("participant", s.Participant).Str("reason", s.Reason).Msg("Sub-record skipped")
	}
}
