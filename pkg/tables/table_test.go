package tables

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		table  string
		suffix string
		want   string
	}{
		{table: "players_pool", suffix: "", want: "players_pool.parquet"},
		{table: "match_info", suffix: "0-1000", want: "match_info_0-1000.parquet"},
		{table: "account_info", suffix: "100-200", want: "account_info_100-200.parquet"},
	}

	for _, tt := range tests {
		if got := FileName(tt.table, tt.suffix); got != tt.want {
			t.Errorf("FileName(%q, %q) = %q, want %q", tt.table, tt.suffix, got, tt.want)
		}
	}
}

func TestNameOf(t *testing.T) {
	if got := NameOf[ChampionPickRow](); got != "champion_picks" {
		t.Errorf("NameOf[ChampionPickRow]() = %q, want champion_picks", got)
	}
	if got := NameOf[ObjectiveStatsRow](); got != "player_objective_stats" {
		t.Errorf("NameOf[ObjectiveStatsRow]() = %q, want player_objective_stats", got)
	}
}

func TestDedup_IsSetUnion(t *testing.T) {
	a := []PlayerPoolRow{
		{SummonerID: "s1", Tier: "DIAMOND", Rank: "I", LeaguePoints: 10},
		{SummonerID: "s2", Tier: "DIAMOND", Rank: "I", LeaguePoints: 20},
		{SummonerID: "s3", Tier: "MASTER", Rank: "I", LeaguePoints: 30},
	}
	b := []PlayerPoolRow{
		{SummonerID: "s2", Tier: "DIAMOND", Rank: "I", LeaguePoints: 20},
		{SummonerID: "s3", Tier: "MASTER", Rank: "I", LeaguePoints: 30},
		{SummonerID: "s4", Tier: "MASTER", Rank: "I", LeaguePoints: 40},
	}

	once := Dedup(append(append([]PlayerPoolRow{}, a...), b...))
	if len(once) != 4 {
		t.Fatalf("Dedup() len = %d, want union cardinality 4", len(once))
	}

	twice := Dedup(append(append([]PlayerPoolRow{}, once...), b...))
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Dedup() not stable under repeated input (-once +twice):\n%s", diff)
	}

	if once[0].SummonerID != "s1" || once[3].SummonerID != "s4" {
		t.Errorf("Dedup() did not preserve first-seen order: %+v", once)
	}
}

func TestEncodeDecode(t *testing.T) {
	day := time.Date(2020, 7, 14, 0, 0, 0, 0, time.UTC)
	rows := []MatchInfoRow{
		{MatchID: 4712345678, Region: "EUW1", DateCreated: day, MatchDuration: 1843, Patch: "10.14", Winner: "Blue"},
		{MatchID: 4712345679, Region: "EUW1", DateCreated: day, MatchDuration: 1502, Patch: "10.14", Winner: "Red"},
	}

	data, err := Encode(rows)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got, err := Decode[MatchInfoRow](data)
	require.NoError(t, err)

	if diff := cmp.Diff(rows, got, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("Decode(Encode()) mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_EmptyTable(t *testing.T) {
	data, err := Encode([]ChampionBanRow{})
	require.NoError(t, err)

	got, err := Decode[ChampionBanRow](data)
	require.NoError(t, err)
	if len(got) != 0 {
		t.Errorf("Decode() len = %d, want 0", len(got))
	}
}
