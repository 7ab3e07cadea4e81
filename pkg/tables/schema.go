// Package tables defines the flat output row types and their parquet
// encoding.
package tables

import (
	"time"
)

// Row is implemented by every output row type.
type Row interface {
	TableName() string
}

// PlayerPoolRow is one ranked ladder entry. Master-tier and division
// entries are reduced to these shared columns before concatenation.
type PlayerPoolRow struct {
	SummonerID   string `parquet:"summonerId"`
	SummonerName string `parquet:"summonerName"`
	Tier         string `parquet:"tier"`
	Rank         string `parquet:"rank"`
	LeaguePoints int64  `parquet:"leaguePoints"`
	Wins         int64  `parquet:"wins"`
	Losses       int64  `parquet:"losses"`
}

// TableName returns the canonical table name.
func (PlayerPoolRow) TableName() string {
	return "players_pool"
}

// AccountInfoRow maps an encrypted summoner id to its account id.
type AccountInfoRow struct {
	SummonerID string `parquet:"summonerId"`
	AccountID  string `parquet:"accountId"`
}

// TableName returns the canonical table name.
func (AccountInfoRow) TableName() string {
	return "account_info"
}

// PlayerPoolAccountRow is players_pool inner-joined with account_info.
type PlayerPoolAccountRow struct {
	SummonerID   string `parquet:"summonerId"`
	SummonerName string `parquet:"summonerName"`
	Tier         string `parquet:"tier"`
	Rank         string `parquet:"rank"`
	LeaguePoints int64  `parquet:"leaguePoints"`
	Wins         int64  `parquet:"wins"`
	Losses       int64  `parquet:"losses"`
	AccountID    string `parquet:"accountId"`
}

// TableName returns the canonical table name.
func (PlayerPoolAccountRow) TableName() string {
	return "players_pool_account"
}

// MatchIDRow is one matchlist entry.
type MatchIDRow struct {
	GameID    int64 `parquet:"gameId"`
	Timestamp int64 `parquet:"timestamp"` // epoch ms
}

// TableName returns the canonical table name.
func (MatchIDRow) TableName() string {
	return "match_ids"
}

// MatchInfoRow holds per-match metadata.
type MatchInfoRow struct {
	MatchID       int64     `parquet:"match_id"`
	Region        string    `parquet:"region"`
	DateCreated   time.Time `parquet:"date_created,timestamp(millisecond)"` // UTC day
	MatchDuration int64     `parquet:"match_duration"`                      // seconds
	Patch         string    `parquet:"patch"`                               // e.g. "10.14"
	Winner        string    `parquet:"winner"`                              // "Blue" | "Red"
}

// TableName returns the canonical table name.
func (MatchInfoRow) TableName() string {
	return "match_info"
}

// ChampionBanRow is one ban.
type ChampionBanRow struct {
	Champion int64 `parquet:"champion"`
	MatchID  int64 `parquet:"match_id"`
	Banned   int64 `parquet:"banned"`
}

// TableName returns the canonical table name.
func (ChampionBanRow) TableName() string {
	return "champion_bans"
}

// ChampionPickRow pairs one pick with one opposing champion.
type ChampionPickRow struct {
	Champion int64  `parquet:"champion"`
	MatchID  int64  `parquet:"match_id"`
	Region   string `parquet:"region"`
	Picked   int64  `parquet:"picked"`
	Lane     string `parquet:"lane"`
	Opponent int64  `parquet:"opponent"`
	Won      int64  `parquet:"won"`
	Lost     int64  `parquet:"lost"`
}

// TableName returns the canonical table name.
func (ChampionPickRow) TableName() string {
	return "champion_picks"
}

// PlayerInfoRow is a player identity as seen in a match.
type PlayerInfoRow struct {
	AccountID  string `parquet:"account_id"`
	SummonerID string `parquet:"summoner_id"`
	Region     string `parquet:"region"`
	Name       string `parquet:"name"`
}

// TableName returns the canonical table name.
func (PlayerInfoRow) TableName() string {
	return "players_info"
}

// PlayerLaneRow records the lane a player occupied in one match.
type PlayerLaneRow struct {
	AccountID string `parquet:"account_id"`
	Lane      string `parquet:"lane"`
	Won       int64  `parquet:"won"`
}

// TableName returns the canonical table name.
func (PlayerLaneRow) TableName() string {
	return "players_lanes"
}

// PlayerChampionRow records the champion a player used in one match.
type PlayerChampionRow struct {
	AccountID string `parquet:"account_id"`
	Champion  int64  `parquet:"champion"`
	Won       int64  `parquet:"won"`
}

// TableName returns the canonical table name.
func (PlayerChampionRow) TableName() string {
	return "players_champions"
}

// LaningStatsRow holds 0-10 minute per-minute deltas.
type LaningStatsRow struct {
	MatchID      int64   `parquet:"match_id"`
	AccountID    string  `parquet:"account_id"`
	Region       string  `parquet:"region"`
	Champion     int64   `parquet:"champion"`
	Lane         string  `parquet:"lane"`
	XPPM10       float64 `parquet:"xppm_10"`
	CSPM10       float64 `parquet:"cspm_10"`
	GoldPM10     float64 `parquet:"goldpm_10"`
	DmgTakenPM10 float64 `parquet:"dmg_takenpm_10"`
	Won          int64   `parquet:"won"`
}

// TableName returns the canonical table name.
func (LaningStatsRow) TableName() string {
	return "player_laning_stats"
}

// CombatStatsRow holds damage, healing and first-blood stats.
type CombatStatsRow struct {
	MatchID          int64  `parquet:"match_id"`
	AccountID        string `parquet:"account_id"`
	Region           string `parquet:"region"`
	Champion         int64  `parquet:"champion"`
	Lane             string `parquet:"lane"`
	DmgTotal         int64  `parquet:"dmg_total"`
	HealingTotal     int64  `parquet:"healing_total"`
	UnitsHealed      int64  `parquet:"units_healed"`
	DamageMitigated  int64  `parquet:"damage_mitigated"`
	CrowdControl     int64  `parquet:"crowd_control"`
	DmgTaken         int64  `parquet:"dmg_taken"`
	FirstBlood       int64  `parquet:"first_blood"`
	FirstBloodAssist int64  `parquet:"first_blood_assist"`
	Won              int64  `parquet:"won"`
}

// TableName returns the canonical table name.
func (CombatStatsRow) TableName() string {
	return "player_combat_stats"
}

// FlairStatsRow holds multikill and survival stats.
type FlairStatsRow struct {
	MatchID          int64  `parquet:"match_id"`
	AccountID        string `parquet:"account_id"`
	Region           string `parquet:"region"`
	Champion         int64  `parquet:"champion"`
	Lane             string `parquet:"lane"`
	KillingSprees    int64  `parquet:"killing_sprees"`
	LongestTimeAlive int64  `parquet:"longest_time_alive"`
	DoubleKills      int64  `parquet:"double_kills"`
	TripleKills      int64  `parquet:"triple_kills"`
	QuadraKills      int64  `parquet:"quadra_kills"`
	PentaKills       int64  `parquet:"penta_kills"`
	Won              int64  `parquet:"won"`
}

// TableName returns the canonical table name.
func (FlairStatsRow) TableName() string {
	return "player_flair_stats"
}

// ObjectiveStatsRow holds objective, farm and vision stats.
type ObjectiveStatsRow struct {
	MatchID         int64  `parquet:"match_id"`
	AccountID       string `parquet:"account_id"`
	Region          string `parquet:"region"`
	Champion        int64  `parquet:"champion"`
	Lane            string `parquet:"lane"`
	DmgToObjectives int64  `parquet:"dmg_to_objectives"`
	DmgToTurrets    int64  `parquet:"dmg_to_turrets"`
	TotalCS         int64  `parquet:"total_cs"`
	JungleCS        int64  `parquet:"jungle_cs"`
	JungleInvaded   int64  `parquet:"jungle_invaded"`
	WardsPlaced     int64  `parquet:"wards_placed"`
	WardsKilled     int64  `parquet:"wards_killed"`
	Won             int64  `parquet:"won"`
}

// TableName returns the canonical table name.
func (ObjectiveStatsRow) TableName() string {
	return "player_objective_stats"
}
