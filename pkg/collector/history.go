package collector

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/jo-urn/lol-scouter/pkg/checkpoint"
	"github.com/jo-urn/lol-scouter/pkg/normalize"
	"github.com/jo-urn/lol-scouter/pkg/pagination"
	"github.com/jo-urn/lol-scouter/pkg/record"
	"github.com/jo-urn/lol-scouter/pkg/storage"
	"github.com/jo-urn/lol-scouter/pkg/tables"
)

// CollectMatchHistory pages through the ranked matchlist of every
// players_pool_account account in rng, starting at beginTime (epoch ms),
// and writes match_ids.
//
// A game seen from several accounts is kept once, in fragments and in the
// final table. This differs from the historical output, which listed a game
// once per account that played it; the raw archive still holds every
// matchlist entry as returned.
func (c *Collector) CollectMatchHistory(ctx context.Context, rng Range, beginTime int64) (*Report, error) {
	logger := c.jobLogger(JobHistory)

	players, err := readInput[tables.PlayerPoolAccountRow](ctx, c)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.AccountID
	}
	logger.Info().Int("accounts", len(ids)).Int64("begin_time", beginTime).Msg("Loaded account ids")

	rng, err = rng.Resolve(len(ids))
	if err != nil {
		return nil, err
	}
	rep := newReport(JobHistory, rng, c.now())

	var entries []record.Value
	fetcher, window, err := c.newFetcher(logger, func() int { return len(entries) })
	if err != nil {
		return nil, err
	}

	cp := checkpoint.NewWriter(c.deps.Output, checkpoint.Config{
		Job:   JobHistory,
		Dir:   storage.FragmentPrefix,
		Every: c.cfg.FragmentEvery,
		Start: rng.Start,
		End:   rng.End,
	}, func(ctx context.Context, start, end int) ([]string, error) {
		ext := normalize.MatchIDs(entries)
		key, err := writeTable(ctx, c, nil, storage.FragmentPrefix, Range{Start: start, End: end}.Suffix(), tables.Dedup(ext.Rows))
		if err != nil {
			return nil, err
		}
		return []string{key}, nil
	})

	query := url.Values{
		"queue":     {strconv.Itoa(c.cfg.MatchQueue)},
		"beginTime": {strconv.FormatInt(beginTime, 10)},
	}

	for i := rng.Start; i < rng.End; i++ {
		rep.Requested++

		res, err := fetcher.FetchAll(ctx, pagination.Request{
			Path:       "/lol/match/v4/matchlists/by-account/" + url.PathEscape(ids[i]),
			Query:      query,
			Mode:       pagination.ModeOffset,
			PageSize:   c.cfg.PageSize,
			ItemsField: "matches",
		})
		if err != nil {
			rep.finish(window, c.now())
			return rep, err
		}
		entries = append(entries, res.Items...)

		if res.Err != nil {
			f := rep.fail(i, ids[i], res.FailedPage, res.Err)
			logger.Warn().
				Int("index", i).
				Int("page", res.FailedPage).
				Str("reason", f.Message).
				Msg("Skipping account")
		} else {
			rep.Fetched++
		}

		if cp.MaybeCheckpoint(ctx, i-rng.Start+1) {
			rep.Checkpoints++
		}
	}

	ext := normalize.MatchIDs(entries)
	rep.skip(ext.Skipped)

	key, err := writeTable(ctx, c, rep, "", "", tables.Dedup(ext.Rows))
	if err != nil {
		rep.finish(window, c.now())
		return rep, err
	}
	if err := cp.Finish(ctx, rng.Len(), []string{key}); err != nil {
		logger.Error().Err(err).Msg("Checkpoint marker write failed")
	}
	c.archive(ctx, logger, rep, JobHistory, rng, encodeItems(entries))

	rep.finish(window, c.now())
	rep.Log(logger)
	return rep, nil
}

// encodeItems re-encodes decoded items for the raw archive. Items came from
// valid JSON, so marshalling only fails on programmer error and the item is
// dropped.
func encodeItems(items []record.Value) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			continue
		}
		out = append(out, data)
	}
	return out
}
