package normalize

import (
	"errors"

	"github.com/jo-urn/lol-scouter/pkg/record"
	"github.com/jo-urn/lol-scouter/pkg/tables"
)

// TeamSize is the number of participants per side.
const TeamSize = 5

var errNoWinner = errors.New("no team marked as winner")

// MatchTables is every table derived from a batch of match bodies.
type MatchTables struct {
	Info           Extraction[tables.MatchInfoRow]
	Bans           Extraction[tables.ChampionBanRow]
	Picks          Extraction[tables.ChampionPickRow]
	Players        Extraction[tables.PlayerInfoRow]
	PlayerLanes    Extraction[tables.PlayerLaneRow]
	PlayerChamps   Extraction[tables.PlayerChampionRow]
	LaningStats    Extraction[tables.LaningStatsRow]
	CombatStats    Extraction[tables.CombatStatsRow]
	FlairStats     Extraction[tables.FlairStatsRow]
	ObjectiveStats Extraction[tables.ObjectiveStatsRow]

	// ChampionNames is the champion id -> display name lookup in effect for
	// this batch. It is carried alongside the tables and not joined into them.
	ChampionNames map[int64]string
}

// Skipped returns the total number of dropped sub-records across tables.
func (m *MatchTables) Skipped() int {
	return len(m.Info.Skipped) + len(m.Bans.Skipped) + len(m.Picks.Skipped) +
		len(m.Players.Skipped) + len(m.PlayerLanes.Skipped) + len(m.PlayerChamps.Skipped) +
		len(m.LaningStats.Skipped) + len(m.CombatStats.Skipped) +
		len(m.FlairStats.Skipped) + len(m.ObjectiveStats.Skipped)
}

// RowCounts returns the number of rows per table name.
func (m *MatchTables) RowCounts() map[string]int {
	return map[string]int{
		m.Info.Table():           len(m.Info.Rows),
		m.Bans.Table():           len(m.Bans.Rows),
		m.Picks.Table():          len(m.Picks.Rows),
		m.Players.Table():        len(m.Players.Rows),
		m.PlayerLanes.Table():    len(m.PlayerLanes.Rows),
		m.PlayerChamps.Table():   len(m.PlayerChamps.Rows),
		m.LaningStats.Table():    len(m.LaningStats.Rows),
		m.CombatStats.Table():    len(m.CombatStats.Rows),
		m.FlairStats.Table():     len(m.FlairStats.Rows),
		m.ObjectiveStats.Table(): len(m.ObjectiveStats.Rows),
	}
}

// Matches normalizes full match bodies. Each body is traversed once and
// feeds every table; a malformed team, ban or participant only drops its
// own rows.
func Matches(matches []record.Value, championNames map[int64]string) *MatchTables {
	out := &MatchTables{ChampionNames: championNames}

	for idx, m := range matches {
		out.matchInfo(idx, m)
		out.bans(idx, m)

		participants, ok := record.Lookup(m, "participants")
		list, isList := participants.([]any)
		if !ok || !isList {
			err := &record.MissingFieldError{Path: "participants", Want: "list"}
			out.Picks.skip(idx, -1, err)
			out.skipPlayer(idx, -1, err)
			out.skipStats(idx, -1, err)
			continue
		}

		for i := range list {
			out.pick(idx, m, i, len(list))
			out.player(idx, m, i)
			out.stats(idx, m, i)
		}
	}

	out.Players.Rows = tables.Dedup(out.Players.Rows)

	out.Info.observe()
	out.Bans.observe()
	out.Picks.observe()
	out.Players.observe()
	out.PlayerLanes.observe()
	out.PlayerChamps.observe()
	out.LaningStats.observe()
	out.CombatStats.observe()
	out.FlairStats.observe()
	out.ObjectiveStats.observe()

	return out
}

func (m *MatchTables) matchInfo(idx int, match record.Value) {
	r := record.NewReader(match)

	var winner string
	for _, team := range r.List("teams") {
		tr := record.NewReader(team)
		if tr.String("win") != "Win" {
			continue
		}
		if side, ok := Winner(tr.Int("teamId")); ok && tr.Err() == nil {
			winner = side
			break
		}
	}

	row := tables.MatchInfoRow{
		MatchID:       r.Int("gameId"),
		Region:        r.String("platformId"),
		DateCreated:   Day(r.Int("gameCreation")),
		MatchDuration: r.Int("gameDuration"),
		Patch:         Patch(r.String("gameVersion")),
		Winner:        winner,
	}
	if err := r.Err(); err != nil {
		m.Info.skip(idx, -1, err)
		return
	}
	if winner == "" {
		m.Info.skip(idx, -1, errNoWinner)
		return
	}
	m.Info.add(row)
}

func (m *MatchTables) bans(idx int, match record.Value) {
	r := record.NewReader(match)
	matchID := r.Int("gameId")
	teams := r.List("teams")
	if err := r.Err(); err != nil {
		m.Bans.skip(idx, -1, err)
		return
	}

	for t := range teams {
		tr := record.NewReader(match)
		bans := tr.List("teams", t, "bans")
		if err := tr.Err(); err != nil {
			m.Bans.skip(idx, -1, err)
			continue
		}
		for b := range bans {
			br := record.NewReader(match)
			champion := br.Int("teams", t, "bans", b, "championId")
			if err := br.Err(); err != nil {
				m.Bans.skip(idx, -1, err)
				continue
			}
			m.Bans.add(tables.ChampionBanRow{
				Champion: champion,
				MatchID:  matchID,
				Banned:   1,
			})
		}
	}
}

// opponents returns the participant indexes on the other side of i.
func opponents(i, n int) (lo, hi int) {
	if n < TeamSize {
		return 0, 0
	}
	if i < TeamSize {
		return TeamSize, n
	}
	return 0, TeamSize
}

func (m *MatchTables) pick(idx int, match record.Value, i, n int) {
	r := record.NewReader(match)

	champion := r.Int("participants", i, "championId")
	matchID := r.Int("gameId")
	region := r.String("platformId")
	lane := CorrectLane(
		r.String("participants", i, "timeline", "lane"),
		r.String("participants", i, "timeline", "role"),
	)
	won := r.Bool("participants", i, "stats", "win")

	lo, hi := opponents(i, n)
	opp := make([]int64, 0, hi-lo)
	for j := lo; j < hi; j++ {
		opp = append(opp, r.Int("participants", j, "championId"))
	}

	if err := r.Err(); err != nil {
		m.Picks.skip(idx, i, err)
		return
	}

	for _, o := range opp {
		m.Picks.add(tables.ChampionPickRow{
			Champion: champion,
			MatchID:  matchID,
			Region:   region,
			Picked:   1,
			Lane:     lane,
			Opponent: o,
			Won:      Binary(won),
			Lost:     Binary(!won),
		})
	}
}

func (m *MatchTables) player(idx int, match record.Value, i int) {
	r := record.NewReader(match)

	info := tables.PlayerInfoRow{
		AccountID:  r.String("participantIdentities", i, "player", "accountId"),
		SummonerID: r.String("participantIdentities", i, "player", "summonerId"),
		Region:     r.String("participantIdentities", i, "player", "currentPlatformId"),
		Name:       r.String("participantIdentities", i, "player", "summonerName"),
	}
	champion := r.Int("participants", i, "championId")
	lane := CorrectLane(
		r.String("participants", i, "timeline", "lane"),
		r.String("participants", i, "timeline", "role"),
	)
	won := Binary(r.Bool("participants", i, "stats", "win"))

	if err := r.Err(); err != nil {
		m.skipPlayer(idx, i, err)
		return
	}

	m.Players.add(info)
	m.PlayerLanes.add(tables.PlayerLaneRow{AccountID: info.AccountID, Lane: lane, Won: won})
	m.PlayerChamps.add(tables.PlayerChampionRow{AccountID: info.AccountID, Champion: champion, Won: won})
}

// stats builds the four stat rows of one participant. They are kept or
// dropped together.
func (m *MatchTables) stats(idx int, match record.Value, i int) {
	r := record.NewReader(match)
	p := func(path ...any) []any {
		return append([]any{"participants", i}, path...)
	}

	matchID := r.Int("gameId")
	accountID := r.String("participantIdentities", i, "player", "accountId")
	region := r.String("participantIdentities", i, "player", "currentPlatformId")
	champion := r.Int(p("championId")...)
	lane := CorrectLane(r.String(p("timeline", "lane")...), r.String(p("timeline", "role")...))
	won := Binary(r.Bool(p("stats", "win")...))

	laning := tables.LaningStatsRow{
		MatchID:      matchID,
		AccountID:    accountID,
		Region:       region,
		Champion:     champion,
		Lane:         lane,
		XPPM10:       r.Float(p("timeline", "xpPerMinDeltas", "0-10")...),
		CSPM10:       r.Float(p("timeline", "creepsPerMinDeltas", "0-10")...),
		GoldPM10:     r.Float(p("timeline", "goldPerMinDeltas", "0-10")...),
		DmgTakenPM10: r.Float(p("timeline", "damageTakenPerMinDeltas", "0-10")...),
		Won:          won,
	}

	combat := tables.CombatStatsRow{
		MatchID:          matchID,
		AccountID:        accountID,
		Region:           region,
		Champion:         champion,
		Lane:             lane,
		DmgTotal:         r.Int(p("stats", "totalDamageDealtToChampions")...),
		HealingTotal:     r.Int(p("stats", "totalHeal")...),
		UnitsHealed:      r.Int(p("stats", "totalUnitsHealed")...),
		DamageMitigated:  r.Int(p("stats", "damageSelfMitigated")...),
		CrowdControl:     r.Int(p("stats", "totalTimeCrowdControlDealt")...),
		DmgTaken:         r.Int(p("stats", "totalDamageTaken")...),
		FirstBlood:       r.Flag(p("stats", "firstBloodKill")...),
		FirstBloodAssist: r.Flag(p("stats", "firstBloodAssist")...),
		Won:              won,
	}

	flair := tables.FlairStatsRow{
		MatchID:          matchID,
		AccountID:        accountID,
		Region:           region,
		Champion:         champion,
		Lane:             lane,
		KillingSprees:    r.Int(p("stats", "killingSprees")...),
		LongestTimeAlive: r.Int(p("stats", "longestTimeSpentLiving")...),
		DoubleKills:      r.Int(p("stats", "doubleKills")...),
		TripleKills:      r.Int(p("stats", "tripleKills")...),
		QuadraKills:      r.Int(p("stats", "quadraKills")...),
		PentaKills:       r.Int(p("stats", "pentaKills")...),
		Won:              won,
	}

	objective := tables.ObjectiveStatsRow{
		MatchID:         matchID,
		AccountID:       accountID,
		Region:          region,
		Champion:        champion,
		Lane:            lane,
		DmgToObjectives: r.Int(p("stats", "damageDealtToObjectives")...),
		DmgToTurrets:    r.Int(p("stats", "damageDealtToTurrets")...),
		TotalCS:         r.Int(p("stats", "totalMinionsKilled")...),
		JungleCS:        r.Int(p("stats", "neutralMinionsKilled")...),
		JungleInvaded:   r.Int(p("stats", "neutralMinionsKilledEnemyJungle")...),
		WardsPlaced:     r.Int(p("stats", "wardsPlaced")...),
		WardsKilled:     r.Int(p("stats", "wardsKilled")...),
		Won:             won,
	}

	if err := r.Err(); err != nil {
		m.skipStats(idx, i, err)
		return
	}

	m.LaningStats.add(laning)
	m.CombatStats.add(combat)
	m.FlairStats.add(flair)
	m.ObjectiveStats.add(objective)
}

func (m *MatchTables) skipPlayer(idx, i int, err error) {
	m.Players.skip(idx, i, err)
	m.PlayerLanes.skip(idx, i, err)
	m.PlayerChamps.skip(idx, i, err)
}

func (m *MatchTables) skipStats(idx, i int, err error) {
	m.LaningStats.skip(idx, i, err)
	m.CombatStats.skip(idx, i, err)
	m.FlairStats.skip(idx, i, err)
	m.ObjectiveStats.skip(idx, i, err)
}
