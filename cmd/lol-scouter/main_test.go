package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jo-urn/lol-scouter/internal/config"
	"github.com/jo-urn/lol-scouter/internal/testutil"
	"github.com/jo-urn/lol-scouter/pkg/client"
	"github.com/jo-urn/lol-scouter/pkg/collector"
	"github.com/jo-urn/lol-scouter/pkg/storage"
	"github.com/jo-urn/lol-scouter/pkg/tables"
)

// isolate clears API key variables and moves to an empty directory so no
// stray .env file is picked up.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvAPIKeyAlias, "")
	t.Setenv(config.EnvOutput, "")
	t.Setenv(config.EnvRedisAddr, "")
	t.Setenv(config.EnvLogLevel, "")
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scouter.toml")
	content := `
[api]
base_url = "` + baseURL + `"
data_dragon_url = "` + baseURL + `"

[collector]
master_leagues = ["challengerleagues"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestEntriesCommand(t *testing.T) {
	isolate(t)
	t.Setenv(config.EnvAPIKey, "RGAPI-test")

	mock := testutil.NewMockRiot()
	defer mock.Close()

	mock.SetResponse("/lol/league/v4/challengerleagues/by-queue/RANKED_SOLO_5x5", testutil.NewJSONResponse(`{
		"tier": "CHALLENGER", "leagueId": "c", "queue": "RANKED_SOLO_5x5", "name": "Challengers",
		"entries": [
			{"summonerId": "c1", "summonerName": "C1", "leaguePoints": 1200, "rank": "I", "wins": 300, "losses": 250, "veteran": true, "inactive": false, "freshBlood": false, "hotStreak": true}
		]}`))
	mock.SetPages("/lol/league/v4/entries/RANKED_SOLO_5x5/DIAMOND/I", "page", map[string]testutil.MockResponse{
		"1": testutil.NewJSONResponse(`[{"leagueId": "d", "queueType": "RANKED_SOLO_5x5", "tier": "DIAMOND", "rank": "I", "summonerId": "d1", "summonerName": "D1", "leaguePoints": 75, "wins": 100, "losses": 90, "veteran": false, "inactive": false, "freshBlood": false, "hotStreak": false}]`),
		"2": testutil.NewJSONResponse(`[]`),
	})

	out := t.TempDir()
	_, err := execute(t, "entries", "--config", writeConfig(t, mock.URL()), "--out", out)
	require.NoError(t, err)

	assert.Equal(t, 3, mock.RequestCount())

	store, err := storage.Open(context.Background(), out)
	require.NoError(t, err)
	defer store.Close()

	pool, err := storage.ReadTable[tables.PlayerPoolRow](context.Background(), store, "players_pool.parquet")
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, "d1", pool[0].SummonerID)
	assert.Equal(t, "c1", pool[1].SummonerID)
}

func TestOnlineCommandRequiresAPIKey(t *testing.T) {
	isolate(t)

	_, err := execute(t, "entries", "--out", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrMissingAPIKey)
}

func TestMergeCommand_MissingInput(t *testing.T) {
	isolate(t)

	_, err := execute(t, "merge", "--out", t.TempDir())
	assert.ErrorIs(t, err, collector.ErrMissingInput)
}

func TestResumePlanCommand_NoCheckpoint(t *testing.T) {
	isolate(t)

	stdout, err := execute(t, "resume-plan", "--job", "accounts", "--out", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "accounts: no checkpoint")
}

func TestResumePlanCommand_UnknownJob(t *testing.T) {
	isolate(t)

	_, err := execute(t, "resume-plan", "--job", "entries", "--out", t.TempDir())
	assert.Error(t, err)
}

func TestNormalizeCommand_RequiresJob(t *testing.T) {
	isolate(t)

	_, err := execute(t, "normalize", "--out", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"job"`)
}

func TestNormalizeCommand_Offline(t *testing.T) {
	isolate(t)
	ctx := context.Background()
	out := t.TempDir()

	store, err := storage.Open(ctx, out)
	require.NoError(t, err)
	defer store.Close()

	raw := []json.RawMessage{
		json.RawMessage(`{"id":"s0","accountId":"a0","puuid":"p0","name":"P0"}`),
		json.RawMessage(`{"id":"s1","accountId":"a1","puuid":"p1","name":"P1"}`),
	}
	require.NoError(t, store.WriteRaw(ctx, storage.RawKey("accounts", "0-2"), raw))

	// no API key is configured: the command must not need one
	_, err = execute(t, "normalize", "--job", "accounts", "--start", "0", "--end", "2", "--out", out)
	require.NoError(t, err)

	rows, err := storage.ReadTable[tables.AccountInfoRow](ctx, store, "account_info.parquet")
	require.NoError(t, err)
	assert.Equal(t, []tables.AccountInfoRow{
		{SummonerID: "s0", AccountID: "a0"},
		{SummonerID: "s1", AccountID: "a1"},
	}, rows)
}

func TestHistoryCommand_NegativeDays(t *testing.T) {
	isolate(t)

	_, err := execute(t, "history", "--days-ago=-1")
	assert.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	isolate(t)

	_, err := execute(t, "merge", "--out", t.TempDir(), "--log-level", "loud")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid configuration"), err.Error())
}

func TestConfigInit(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "scouter.toml")

	stdout, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+path)

	cfg, err := config.Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, err = execute(t, "config", "init", path)
	assert.Error(t, err)
}
