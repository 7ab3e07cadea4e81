package collector

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/jo-urn/lol-scouter/pkg/checkpoint"
	"github.com/jo-urn/lol-scouter/pkg/normalize"
	"github.com/jo-urn/lol-scouter/pkg/record"
	"github.com/jo-urn/lol-scouter/pkg/storage"
	"github.com/jo-urn/lol-scouter/pkg/tables"
)

// CollectAccounts resolves the account id of every players_pool summoner in
// rng and writes account_info. Fragments go to fragmented_data/ every
// FragmentEvery items.
func (c *Collector) CollectAccounts(ctx context.Context, rng Range) (*Report, error) {
	logger := c.jobLogger(JobAccounts)

	pool, err := readInput[tables.PlayerPoolRow](ctx, c)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(pool))
	for i, p := range pool {
		ids[i] = p.SummonerID
	}
	logger.Info().Int("summoners", len(ids)).Msg("Loaded summoner ids")

	rng, err = rng.Resolve(len(ids))
	if err != nil {
		return nil, err
	}
	rep := newReport(JobAccounts, rng, c.now())

	var (
		summoners []record.Value
		raw       []json.RawMessage
	)
	fetcher, window, err := c.newFetcher(logger, func() int { return len(summoners) })
	if err != nil {
		return nil, err
	}

	cp := checkpoint.NewWriter(c.deps.Output, checkpoint.Config{
		Job:   JobAccounts,
		Dir:   storage.FragmentPrefix,
		Every: c.cfg.FragmentEvery,
		Start: rng.Start,
		End:   rng.End,
	}, func(ctx context.Context, start, end int) ([]string, error) {
		ext := normalize.AccountInfo(summoners)
		key, err := writeTable(ctx, c, nil, storage.FragmentPrefix, Range{Start: start, End: end}.Suffix(), ext.Rows)
		if err != nil {
			return nil, err
		}
		return []string{key}, nil
	})

	for i := rng.Start; i < rng.End; i++ {
		rep.Requested++

		body, err := fetcher.FetchImmutable(ctx, "/lol/summoner/v4/summoners/"+url.PathEscape(ids[i]), nil)
		switch {
		case err == nil:
			v, decodeErr := record.Decode(body)
			if decodeErr != nil {
				f := rep.fail(i, ids[i], 0, decodeErr)
				logger.Warn().Int("index", i).Str("reason", f.Message).Msg("Skipping summoner")
				break
			}
			rep.Fetched++
			summoners = append(summoners, v)
			raw = append(raw, body)
		case isInterrupted(err):
			rep.finish(window, c.now())
			return rep, err
		default:
			f := rep.fail(i, ids[i], 0, err)
			logger.Warn().Int("index", i).Str("reason", f.Message).Msg("Skipping summoner")
		}

		if cp.MaybeCheckpoint(ctx, i-rng.Start+1) {
			rep.Checkpoints++
		}
	}

	ext := normalize.AccountInfo(summoners)
	rep.skip(ext.Skipped)

	key, err := writeTable(ctx, c, rep, "", "", ext.Rows)
	if err != nil {
		rep.finish(window, c.now())
		return rep, err
	}
	if err := cp.Finish(ctx, rng.Len(), []string{key}); err != nil {
		logger.Error().Err(err).Msg("Checkpoint marker write failed")
	}
	c.archive(ctx, logger, rep, JobAccounts, rng, raw)

	rep.finish(window, c.now())
	rep.Log(logger)
	return rep, nil
}

// MergeAccounts joins players_pool with account_info on summonerId and
// writes players_pool_account.
func (c *Collector) MergeAccounts(ctx context.Context) (*Report, error) {
	logger := c.jobLogger(JobMerge)

	pool, err := readInput[tables.PlayerPoolRow](ctx, c)
	if err != nil {
		return nil, err
	}
	accounts, err := readInput[tables.AccountInfoRow](ctx, c)
	if err != nil {
		return nil, err
	}

	rep := newReport(JobMerge, Range{Start: 0, End: len(pool)}, c.now())
	rep.Requested = len(pool)

	ext := normalize.MergeAccounts(pool, accounts)
	rep.skip(ext.Skipped)
	rep.Fetched = len(pool) - len(ext.Skipped)

	if _, err := writeTable(ctx, c, rep, "", "", ext.Rows); err != nil {
		return rep, err
	}

	rep.finish(nil, c.now())
	rep.Log(logger)
	return rep, nil
}
