package testutil

import (
	"encoding/json"
	"fmt"
)

// Match fixture constants.
const (
	FixtureCreation = int64(1594723062000) // 2020-07-14T10:37:42Z
	FixtureVersion  = "10.14.123.4567"
	FixturePlatform = "EUW1"
)

// fixtureRoles lists (lane, role) per participant. Participants 3/4 and
// 8/9 use the overloaded bottom-lane labels.
var fixtureRoles = [10][2]string{
	{"TOP", "SOLO"},
	{"JUNGLE", "NONE"},
	{"MIDDLE", "SOLO"},
	{"BOTTOM", "DUO_CARRY"},
	{"BOTTOM", "DUO_SUPPORT"},
	{"TOP", "SOLO"},
	{"JUNGLE", "NONE"},
	{"BOTTOM", "DUO"},
	{"BOTTOM", "DUO_CARRY"},
	{"BOTTOM", "DUO_SUPPORT"},
}

// MatchFixture builds a full match body with 10 participants. The blue side
// (teamId 100) wins. Champion ids are gameID%1000*100 + participant index + 1
// so they are unique within a match. Edits are applied before encoding.
func MatchFixture(gameID int64, edits ...func(map[string]any)) map[string]any {
	participants := make([]any, 10)
	identities := make([]any, 10)
	for i := 0; i < 10; i++ {
		teamID := 100
		if i >= 5 {
			teamID = 200
		}
		participants[i] = map[string]any{
			"participantId": i + 1,
			"teamId":        teamID,
			"championId":    FixtureChampion(gameID, i),
			"stats": map[string]any{
				"win":                             teamID == 100,
				"totalDamageDealtToChampions":     10000 + i,
				"totalHeal":                       2000 + i,
				"totalUnitsHealed":                1 + i%3,
				"damageSelfMitigated":             5000 + i,
				"totalTimeCrowdControlDealt":      100 + i,
				"totalDamageTaken":                15000 + i,
				"firstBloodKill":                  i == 2,
				"firstBloodAssist":                i == 1,
				"killingSprees":                   i % 3,
				"longestTimeSpentLiving":          600 + i,
				"doubleKills":                     i % 2,
				"tripleKills":                     0,
				"quadraKills":                     0,
				"pentaKills":                      0,
				"damageDealtToObjectives":         3000 + i,
				"damageDealtToTurrets":            1000 + i,
				"totalMinionsKilled":              150 + i,
				"neutralMinionsKilled":            10 + i,
				"neutralMinionsKilledEnemyJungle": i % 4,
				"wardsPlaced":                     8 + i,
				"wardsKilled":                     2 + i%2,
			},
			"timeline": map[string]any{
				"lane":                    fixtureRoles[i][0],
				"role":                    fixtureRoles[i][1],
				"xpPerMinDeltas":          map[string]any{"0-10": 400.5 + float64(i)},
				"creepsPerMinDeltas":      map[string]any{"0-10": 6.5},
				"goldPerMinDeltas":        map[string]any{"0-10": 350.25},
				"damageTakenPerMinDeltas": map[string]any{"0-10": 420.0 + float64(i)},
			},
		}
		identities[i] = map[string]any{
			"participantId": i + 1,
			"player": map[string]any{
				"accountId":         fmt.Sprintf("acc-%d", i),
				"summonerId":        fmt.Sprintf("sum-%d", i),
				"currentPlatformId": FixturePlatform,
				"summonerName":      fmt.Sprintf("Player %d", i),
			},
		}
	}

	match := map[string]any{
		"gameId":       gameID,
		"platformId":   FixturePlatform,
		"gameCreation": FixtureCreation,
		"gameDuration": 1843,
		"gameVersion":  FixtureVersion,
		"teams": []any{
			map[string]any{
				"teamId": 100,
				"win":    "Win",
				"bans": []any{
					map[string]any{"championId": 1, "pickTurn": 1},
					map[string]any{"championId": 2, "pickTurn": 2},
				},
			},
			map[string]any{
				"teamId": 200,
				"win":    "Fail",
				"bans": []any{
					map[string]any{"championId": 3, "pickTurn": 6},
				},
			},
		},
		"participants":          participants,
		"participantIdentities": identities,
	}

	for _, edit := range edits {
		edit(match)
	}
	return match
}

// MatchJSON encodes MatchFixture.
func MatchJSON(gameID int64, edits ...func(map[string]any)) string {
	data, err := json.Marshal(MatchFixture(gameID, edits...))
	if err != nil {
		panic(err)
	}
	return string(data)
}

// FixtureChampion returns the champion id used for participant i.
func FixtureChampion(gameID int64, i int) int64 {
	return (gameID%1000)*100 + int64(i) + 1
}

// Participant returns participant i of a fixture for editing.
func Participant(match map[string]any, i int) map[string]any {
	return match["participants"].([]any)[i].(map[string]any)
}

// DropTimelineLane removes timeline.lane from participant i.
func DropTimelineLane(i int) func(map[string]any) {
	return func(m map[string]any) {
		delete(Participant(m, i)["timeline"].(map[string]any), "lane")
	}
}

// ChampionJSON returns a Data Dragon champion.json body for the given
// key -> name pairs.
func ChampionJSON(names map[int64]string) string {
	data := make(map[string]any, len(names))
	for key, name := range names {
		data[name] = map[string]any{
			"id":   name,
			"key":  fmt.Sprintf("%d", key),
			"name": name,
		}
	}
	body, err := json.Marshal(map[string]any{
		"type":    "champion",
		"version": "10.14.1",
		"data":    data,
	})
	if err != nil {
		panic(err)
	}
	return string(body)
}
