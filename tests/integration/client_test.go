package integration

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gocloud.dev/blob/memblob"

	"github.com/jo-urn/lol-scouter/internal/testutil"
	"github.com/jo-urn/lol-scouter/pkg/cache"
	"github.com/jo-urn/lol-scouter/pkg/client"
	"github.com/jo-urn/lol-scouter/pkg/collector"
	"github.com/jo-urn/lol-scouter/pkg/storage"
	"github.com/jo-urn/lol-scouter/pkg/tables"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// noSleep keeps cooldowns out of the tests.
type noSleep struct{}

func (noSleep) Sleep(context.Context, time.Duration) error { return nil }

func newRiot(t *testing.T, mock *testutil.MockRiot) *client.Client {
	t.Helper()
	cfg := client.DefaultConfig("RGAPI-integration")
	cfg.BaseURL = mock.URL()
	cfg.DataDragonURL = mock.URL()
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

func seedPool(t *testing.T, store *storage.Store, n int) {
	t.Helper()
	rows := make([]tables.PlayerPoolRow, n)
	for i := range rows {
		rows[i] = tables.PlayerPoolRow{SummonerID: fmt.Sprintf("s%02d", i), SummonerName: fmt.Sprintf("Player %d", i), Tier: "DIAMOND", Rank: "I"}
	}
	if _, err := storage.WriteTable(context.Background(), store, "", "", rows); err != nil {
		t.Fatalf("Failed to seed players_pool: %v", err)
	}
}

func serveSummoners(mock *testutil.MockRiot, n int, missing int) {
	for i := 0; i < n; i++ {
		if i == missing {
			continue
		}
		mock.SetResponse(fmt.Sprintf("/lol/summoner/v4/summoners/s%02d", i), testutil.NewJSONResponse(fmt.Sprintf(
			`{"id":"s%02d","accountId":"a%02d","puuid":"p%02d","name":"Player %d","profileIconId":1,"revisionDate":1594723062000,"summonerLevel":30}`,
			i, i, i, i)))
	}
}

func runAccounts(t *testing.T, riot *client.Client, manager *cache.Manager, input *storage.Store) (*collector.Report, *storage.Store) {
	t.Helper()
	output := storage.NewStore(memblob.OpenBucket(nil), "mem://run")
	t.Cleanup(func() { output.Close() })

	c, err := collector.New(collector.Deps{
		Getter: riot,
		Output: output,
		Input:  input,
		Cache:  manager,
		Clock:  noSleep{},
	}, collector.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create collector: %v", err)
	}

	rep, err := c.CollectAccounts(context.Background(), collector.All)
	if err != nil {
		t.Fatalf("CollectAccounts() error = %v", err)
	}
	return rep, output
}

// TestCollectAccounts_CacheAvoidsRepeatRequests runs the account job twice
// against one Redis cache. The second run is served from the cache except
// for the failed item, which is never cached.
func TestCollectAccounts_CacheAvoidsRepeatRequests(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockRiot()
	defer mock.Close()

	const n, missing = 12, 5
	serveSummoners(mock, n, missing)

	input := storage.NewStore(memblob.OpenBucket(nil), "mem://input")
	defer input.Close()
	seedPool(t, input, n)

	riot := newRiot(t, mock)
	manager := cache.NewManager(redisClient, time.Hour)

	// Run 1: every summoner goes to the API
	rep1, out1 := runAccounts(t, riot, manager, input)
	if mock.RequestCount() != n {
		t.Errorf("After run 1: API requests = %d, want %d", mock.RequestCount(), n)
	}
	if rep1.Requests != n {
		t.Errorf("Run 1 counted requests = %d, want %d", rep1.Requests, n)
	}
	if len(rep1.Failures) != 1 || rep1.Failures[0].Message != "Data not found" {
		t.Errorf("Run 1 failures = %+v, want one 'Data not found'", rep1.Failures)
	}

	// Run 2: only the failed summoner is requested again
	rep2, out2 := runAccounts(t, riot, manager, input)
	if mock.RequestCount() != n+1 {
		t.Errorf("After run 2: API requests = %d, want %d", mock.RequestCount(), n+1)
	}
	if rep2.Requests != 1 {
		t.Errorf("Run 2 counted requests = %d, want 1 (cache hits are free)", rep2.Requests)
	}

	rows1, err := storage.ReadTable[tables.AccountInfoRow](context.Background(), out1, "account_info.parquet")
	if err != nil {
		t.Fatalf("Failed to read run 1 output: %v", err)
	}
	rows2, err := storage.ReadTable[tables.AccountInfoRow](context.Background(), out2, "account_info.parquet")
	if err != nil {
		t.Fatalf("Failed to read run 2 output: %v", err)
	}
	if len(rows1) != n-1 || len(rows2) != n-1 {
		t.Fatalf("rows = %d and %d, want %d", len(rows1), len(rows2), n-1)
	}
	for i := range rows1 {
		if rows1[i] != rows2[i] {
			t.Errorf("row %d differs between runs: %+v vs %+v", i, rows1[i], rows2[i])
		}
	}
}

// TestCacheManager_TTL verifies entries expire in Redis.
func TestCacheManager_TTL(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	ctx := context.Background()
	manager := cache.NewManager(redisClient, time.Second)

	key := cache.CacheKey{
		Path:        "/lol/match/v4/matchlists/by-account/a01",
		QueryParams: url.Values{"beginIndex": []string{"100"}, "queue": []string{"420"}},
	}

	if err := manager.Put(ctx, key, []byte(`{"matches":[]}`), 200); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	entry, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(entry.Data) != `{"matches":[]}` {
		t.Errorf("Get() data = %s", entry.Data)
	}

	ttl, err := redisClient.PTTL(ctx, key.String()).Result()
	if err != nil {
		t.Fatalf("PTTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Second {
		t.Errorf("TTL = %v, want within (0, 1s]", ttl)
	}

	time.Sleep(1500 * time.Millisecond)

	if _, err := manager.Get(ctx, key); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("Get() after expiry error = %v, want ErrCacheMiss", err)
	}
}

// TestCacheManager_Delete verifies explicit invalidation.
func TestCacheManager_Delete(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	ctx := context.Background()
	manager := cache.NewManager(redisClient, 0)
	key := cache.CacheKey{Path: "/lol/summoner/v4/summoners/s01"}

	if err := manager.Put(ctx, key, []byte(`{"id":"s01"}`), 200); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := manager.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := manager.Get(ctx, key); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("Get() after delete error = %v, want ErrCacheMiss", err)
	}
}
