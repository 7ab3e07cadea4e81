package collector

import (
	"context"
	"fmt"

	"github.com/jo-urn/lol-scouter/pkg/client"
	"github.com/jo-urn/lol-scouter/pkg/normalize"
	"github.com/jo-urn/lol-scouter/pkg/pagination"
	"github.com/jo-urn/lol-scouter/pkg/record"
	"github.com/jo-urn/lol-scouter/pkg/tables"
)

// CollectLeagueEntries builds players_pool from the apex leagues and the
// paged division listings. A league or division that fails is logged and
// left out; earlier pages of a failed division are kept.
func (c *Collector) CollectLeagueEntries(ctx context.Context) (*Report, error) {
	logger := c.jobLogger(JobEntries)
	rep := newReport(JobEntries, Range{}, c.now())

	var entries int
	fetcher, window, err := c.newFetcher(logger, func() int { return entries })
	if err != nil {
		return nil, err
	}

	var master []tables.PlayerPoolRow
	for i, league := range c.cfg.MasterLeagues {
		path := fmt.Sprintf("/lol/league/v4/%s/by-queue/%s", league, c.cfg.Queue)
		rep.Requested++

		body, err := fetcher.Fetch(ctx, path, nil)
		if err != nil {
			if isInterrupted(err) {
				rep.finish(window, c.now())
				return rep, err
			}
			f := rep.fail(i, league, 0, err)
			logger.Warn().Str("league", league).Str("reason", f.Message).Msg("Skipping league")
			continue
		}

		v, err := record.Decode(body)
		if err != nil {
			f := rep.fail(i, league, 0, err)
			logger.Warn().Str("league", league).Str("reason", f.Message).Msg("Skipping league")
			continue
		}
		rep.Fetched++

		ext := normalize.MasterLeague(v, i)
		rep.skip(ext.Skipped)
		master = append(master, ext.Rows...)
		entries += len(ext.Rows)
	}

	var paged []record.Value
	for i, d := range c.cfg.Divisions {
		path := fmt.Sprintf("/lol/league/v4/entries/%s/%s/%s", c.cfg.Queue, d.Tier, d.Division)
		rep.Requested++

		res, err := fetcher.FetchAll(ctx, pagination.Request{Path: path, Mode: pagination.ModePage})
		if err != nil {
			rep.finish(window, c.now())
			return rep, err
		}
		paged = append(paged, res.Items...)
		entries += len(res.Items)

		if res.Err != nil {
			id := d.Tier + " " + d.Division
			rep.fail(len(c.cfg.MasterLeagues)+i, id, res.FailedPage, res.Err)
			logger.Warn().
				Str("division", id).
				Int("page", res.FailedPage).
				Str("reason", client.Message(res.Err)).
				Msg("Stopping division early")
			continue
		}
		rep.Fetched++
		logger.Debug().Str("tier", d.Tier).Str("division", d.Division).Int("pages", res.Pages).Msg("Division collected")
	}

	division := normalize.DivisionEntries(paged)
	rep.skip(division.Skipped)

	pool := normalize.PlayersPool(division.Rows, master)
	if _, err := writeTable(ctx, c, rep, "", "", pool); err != nil {
		rep.finish(window, c.now())
		return rep, err
	}

	rep.finish(window, c.now())
	rep.Log(logger)
	return rep, nil
}
