package normalize

import (
	"errors"

	"github.com/jo-urn/lol-scouter/pkg/record"
	"github.com/jo-urn/lol-scouter/pkg/tables"
)

var errNotInPool = errors.New("summonerId not present in account info")

// MasterLeague extracts the entries of one by-queue league body
// ({"tier": ..., "entries": [...]}). The league tier is attached to every
// entry since master-tier entries do not carry it themselves.
func MasterLeague(league record.Value, index int) Extraction[tables.PlayerPoolRow] {
	var ext Extraction[tables.PlayerPoolRow]

	lr := record.NewReader(league)
	tier := lr.String("tier")
	entries := lr.List("entries")
	if err := lr.Err(); err != nil {
		ext.skip(index, -1, err)
		ext.observe()
		return ext
	}

	for i, entry := range entries {
		r := record.NewReader(entry)
		row := tables.PlayerPoolRow{
			SummonerID:   r.String("summonerId"),
			SummonerName: r.String("summonerName"),
			Tier:         tier,
			Rank:         r.String("rank"),
			LeaguePoints: r.Int("leaguePoints"),
			Wins:         r.Int("wins"),
			Losses:       r.Int("losses"),
		}
		if err := r.Err(); err != nil {
			ext.skip(index, i, err)
			continue
		}
		ext.add(row)
	}

	ext.observe()
	return ext
}

// DivisionEntries extracts paged league entries. Division entries carry
// their own tier; leagueId, queueType and miniSeries are not kept.
func DivisionEntries(entries []record.Value) Extraction[tables.PlayerPoolRow] {
	var ext Extraction[tables.PlayerPoolRow]

	for i, entry := range entries {
		r := record.NewReader(entry)
		row := tables.PlayerPoolRow{
			SummonerID:   r.String("summonerId"),
			SummonerName: r.String("summonerName"),
			Tier:         r.String("tier"),
			Rank:         r.String("rank"),
			LeaguePoints: r.Int("leaguePoints"),
			Wins:         r.Int("wins"),
			Losses:       r.Int("losses"),
		}
		if err := r.Err(); err != nil {
			ext.skip(i, -1, err)
			continue
		}
		ext.add(row)
	}

	ext.observe()
	return ext
}

// PlayersPool concatenates division and master-tier entries and drops
// duplicate rows.
func PlayersPool(parts ...[]tables.PlayerPoolRow) []tables.PlayerPoolRow {
	var all []tables.PlayerPoolRow
	for _, p := range parts {
		all = append(all, p...)
	}
	return tables.Dedup(all)
}

// AccountInfo extracts (summonerId, accountId) from summoner bodies, where
// the summoner id is the "id" field.
func AccountInfo(summoners []record.Value) Extraction[tables.AccountInfoRow] {
	var ext Extraction[tables.AccountInfoRow]

	for i, s := range summoners {
		r := record.NewReader(s)
		row := tables.AccountInfoRow{
			SummonerID: r.String("id"),
			AccountID:  r.String("accountId"),
		}
		if err := r.Err(); err != nil {
			ext.skip(i, -1, err)
			continue
		}
		ext.add(row)
	}

	ext.observe()
	return ext
}

// MergeAccounts inner-joins the player pool with account info on summonerId.
// Output follows pool order; a summoner with several account rows yields
// one row per match.
func MergeAccounts(pool []tables.PlayerPoolRow, accounts []tables.AccountInfoRow) Extraction[tables.PlayerPoolAccountRow] {
	var ext Extraction[tables.PlayerPoolAccountRow]

	bySummoner := make(map[string][]string, len(accounts))
	for _, a := range accounts {
		bySummoner[a.SummonerID] = append(bySummoner[a.SummonerID], a.AccountID)
	}

	for i, p := range pool {
		ids, ok := bySummoner[p.SummonerID]
		if !ok {
			ext.skip(i, -1, errNotInPool)
			continue
		}
		for _, accountID := range ids {
			ext.add(tables.PlayerPoolAccountRow{
				SummonerID:   p.SummonerID,
				SummonerName: p.SummonerName,
				Tier:         p.Tier,
				Rank:         p.Rank,
				LeaguePoints: p.LeaguePoints,
				Wins:         p.Wins,
				Losses:       p.Losses,
				AccountID:    accountID,
			})
		}
	}

	ext.observe()
	return ext
}

// MatchIDs extracts (gameId, timestamp) from matchlist entries.
func MatchIDs(entries []record.Value) Extraction[tables.MatchIDRow] {
	var ext Extraction[tables.MatchIDRow]

	for i, e := range entries {
		r := record.NewReader(e)
		row := tables.MatchIDRow{
			GameID:    r.Int("gameId"),
			Timestamp: r.Int("timestamp"),
		}
		if err := r.Err(); err != nil {
			ext.skip(i, -1, err)
			continue
		}
		ext.add(row)
	}

	ext.observe()
	return ext
}
