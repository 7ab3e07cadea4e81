package pagination

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jo-urn/lol-scouter/internal/testutil"
	"github.com/jo-urn/lol-scouter/pkg/cache"
	"github.com/jo-urn/lol-scouter/pkg/client"
)

type countingLimiter struct {
	calls int
	err   error
}

func (l *countingLimiter) BeforeRequest(ctx context.Context) error {
	l.calls++
	return l.err
}

type memCache struct {
	entries map[string]*cache.CacheEntry
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*cache.CacheEntry)}
}

func (c *memCache) Get(ctx context.Context, key cache.CacheKey) (*cache.CacheEntry, error) {
	if e, ok := c.entries[key.String()]; ok {
		return e, nil
	}
	return nil, cache.ErrCacheMiss
}

func (c *memCache) Put(ctx context.Context, key cache.CacheKey, data []byte, statusCode int) error {
	c.entries[key.String()] = cache.NewEntry(data, statusCode, 0)
	return nil
}

func newTestFetcher(t *testing.T, mock *testutil.MockRiot, limiter *countingLimiter, opts ...Option) *Fetcher {
	t.Helper()
	cfg := client.DefaultConfig("RGAPI-test")
	cfg.BaseURL = mock.URL()
	c, err := client.New(cfg)
	require.NoError(t, err)
	return NewFetcher(c, limiter, opts...)
}

const divisionPath = "/lol/league/v4/entries/RANKED_SOLO_5x5/DIAMOND/I"

func TestFetchAll_PageModeStopsOnEmptyPage(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetPages(divisionPath, "page", map[string]testutil.MockResponse{
		"1": testutil.NewJSONResponse(`[{"summonerId":"a"},{"summonerId":"b"}]`),
		"2": testutil.NewJSONResponse(`[{"summonerId":"c"}]`),
		"3": testutil.NewJSONResponse(`[]`),
	})

	limiter := &countingLimiter{}
	f := newTestFetcher(t, mock, limiter)

	res, err := f.FetchAll(context.Background(), Request{Path: divisionPath, Mode: ModePage})
	require.NoError(t, err)

	assert.NoError(t, res.Err)
	assert.Equal(t, 2, res.Pages)
	assert.Len(t, res.Items, 3)
	assert.Equal(t, 3, mock.RequestCount())
	assert.Equal(t, 3, limiter.calls)

	for i, u := range mock.Requests() {
		assert.Equal(t, []string{"1", "2", "3"}[i], u.Query().Get("page"))
	}
}

func TestFetchAll_EmptyFirstPage(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetPages(divisionPath, "page", map[string]testutil.MockResponse{})

	f := newTestFetcher(t, mock, &countingLimiter{})
	res, err := f.FetchAll(context.Background(), Request{Path: divisionPath, Mode: ModePage})
	require.NoError(t, err)

	assert.NoError(t, res.Err)
	assert.Zero(t, res.Pages)
	assert.Empty(t, res.Items)
}

func TestFetchAll_OffsetMode(t *testing.T) {
	const path = "/lol/match/v4/matchlists/by-account/acc-1"

	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetPages(path, "beginIndex", map[string]testutil.MockResponse{
		"0":   testutil.NewJSONResponse(`{"matches":[{"gameId":1,"timestamp":10},{"gameId":2,"timestamp":20}],"startIndex":0,"endIndex":100,"totalGames":3}`),
		"100": testutil.NewJSONResponse(`{"matches":[{"gameId":3,"timestamp":30}],"startIndex":100,"endIndex":200,"totalGames":3}`),
		"200": testutil.NewJSONResponse(`{"matches":[],"startIndex":200,"endIndex":200,"totalGames":3}`),
	})

	f := newTestFetcher(t, mock, &countingLimiter{})
	res, err := f.FetchAll(context.Background(), Request{
		Path:       path,
		Query:      map[string][]string{"queue": {"420"}, "beginTime": {"1593475200000"}},
		Mode:       ModeOffset,
		ItemsField: "matches",
	})
	require.NoError(t, err)

	assert.NoError(t, res.Err)
	assert.Equal(t, 2, res.Pages)
	assert.Len(t, res.Items, 3)

	reqs := mock.Requests()
	require.Len(t, reqs, 3)
	for i, u := range reqs {
		q := u.Query()
		assert.Equal(t, []string{"0", "100", "200"}[i], q.Get("beginIndex"))
		assert.Equal(t, "420", q.Get("queue"))
		assert.Equal(t, "1593475200000", q.Get("beginTime"))
	}
}

func TestFetchAll_ErrorKeepsEarlierPages(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetPages(divisionPath, "page", map[string]testutil.MockResponse{
		"1": testutil.NewJSONResponse(`[{"summonerId":"a"}]`),
		"2": testutil.NewStatusResponse(http.StatusServiceUnavailable, "Service unavailable"),
		"3": testutil.NewJSONResponse(`[{"summonerId":"never"}]`),
	})

	f := newTestFetcher(t, mock, &countingLimiter{})
	res, err := f.FetchAll(context.Background(), Request{Path: divisionPath, Mode: ModePage})
	require.NoError(t, err)

	require.Error(t, res.Err)
	assert.Equal(t, "Service unavailable", client.Message(res.Err))
	assert.Equal(t, 2, res.FailedPage)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 2, mock.RequestCount(), "no retry and no further pages")
}

func TestFetchAll_MalformedPage(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetPages(divisionPath, "page", map[string]testutil.MockResponse{
		"1": testutil.NewJSONResponse(`{"not":"a list"}`),
	})

	f := newTestFetcher(t, mock, &countingLimiter{})
	res, err := f.FetchAll(context.Background(), Request{Path: divisionPath, Mode: ModePage})
	require.NoError(t, err)
	assert.Error(t, res.Err)
	assert.Equal(t, 1, res.FailedPage)
}

func TestFetchAll_Interrupted(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()

	limiter := &countingLimiter{err: context.Canceled}
	f := newTestFetcher(t, mock, limiter)

	_, err := f.FetchAll(context.Background(), Request{Path: divisionPath, Mode: ModePage})
	assert.True(t, errors.Is(err, ErrInterrupted))
	assert.Zero(t, mock.RequestCount())
}

func TestFetchImmutable_CacheHitSkipsLimiter(t *testing.T) {
	const path = "/lol/match/v4/matches/77"

	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetResponse(path, testutil.NewJSONResponse(`{"gameId":77}`))

	limiter := &countingLimiter{}
	f := newTestFetcher(t, mock, limiter, WithCache(newMemCache()))

	for i := 0; i < 3; i++ {
		body, err := f.FetchImmutable(context.Background(), path, nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"gameId":77}`, string(body))
	}

	assert.Equal(t, 1, limiter.calls)
	assert.Equal(t, 1, mock.RequestCount())
}

func TestFetchImmutable_ErrorsAreNotCached(t *testing.T) {
	const path = "/lol/match/v4/matches/78"

	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetResponse(path, testutil.NewStatusResponse(http.StatusNotFound, "Data not found"))

	mc := newMemCache()
	f := newTestFetcher(t, mock, &countingLimiter{}, WithCache(mc))

	_, err := f.FetchImmutable(context.Background(), path, nil)
	require.Error(t, err)
	_, err = f.FetchImmutable(context.Background(), path, nil)
	require.Error(t, err)

	assert.Empty(t, mc.entries)
	assert.Equal(t, 2, mock.RequestCount())
}

func TestFetch_BypassesCache(t *testing.T) {
	const path = "/lol/league/v4/challengerleagues/by-queue/RANKED_SOLO_5x5"

	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetResponse(path, testutil.NewJSONResponse(`{"entries":[]}`))

	mc := newMemCache()
	limiter := &countingLimiter{}
	f := newTestFetcher(t, mock, limiter, WithCache(mc))

	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), path, nil)
		require.NoError(t, err)
	}

	assert.Empty(t, mc.entries)
	assert.Equal(t, 2, limiter.calls)
	assert.Equal(t, 2, mock.RequestCount())
}

// A listing that grows between runs must be seen whole on the second run,
// even with a cache attached.
func TestFetchAll_ListingNotCachedByDefault(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()

	mc := newMemCache()
	f := newTestFetcher(t, mock, &countingLimiter{}, WithCache(mc))
	req := Request{Path: divisionPath, Mode: ModePage}

	mock.SetPages(divisionPath, "page", map[string]testutil.MockResponse{
		"1": testutil.NewJSONResponse(`[{"summonerId":"a"}]`),
		"2": testutil.NewJSONResponse(`[]`),
	})
	res, err := f.FetchAll(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	mock.SetPages(divisionPath, "page", map[string]testutil.MockResponse{
		"1": testutil.NewJSONResponse(`[{"summonerId":"a"},{"summonerId":"b"}]`),
		"2": testutil.NewJSONResponse(`[{"summonerId":"c"}]`),
		"3": testutil.NewJSONResponse(`[]`),
	})
	res, err = f.FetchAll(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, res.Items, 3)
	assert.Equal(t, 2, res.Pages)
	assert.Empty(t, mc.entries)
	assert.Equal(t, 5, mock.RequestCount())
}

func TestFetchAll_CacheableRequest(t *testing.T) {
	mock := testutil.NewMockRiot()
	defer mock.Close()
	mock.SetPages(divisionPath, "page", map[string]testutil.MockResponse{
		"1": testutil.NewJSONResponse(`[{"summonerId":"a"}]`),
	})

	limiter := &countingLimiter{}
	f := newTestFetcher(t, mock, limiter, WithCache(newMemCache()))
	req := Request{Path: divisionPath, Mode: ModePage, Cacheable: true}

	for i := 0; i < 2; i++ {
		res, err := f.FetchAll(context.Background(), req)
		require.NoError(t, err)
		assert.Len(t, res.Items, 1)
	}

	assert.Equal(t, 2, limiter.calls, "page 1 and the empty page 2, once")
	assert.Equal(t, 2, mock.RequestCount())
}

func TestBeginTimeFromDaysAgo(t *testing.T) {
	now := time.Date(2020, 7, 14, 12, 0, 0, 0, time.UTC)
	got := BeginTimeFromDaysAgo(now, 14)
	want := time.Date(2020, 6, 30, 12, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, want, got)
	assert.Equal(t, now.UnixMilli(), BeginTimeFromDaysAgo(now, 0))
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "page", ModePage.String())
	assert.Equal(t, "offset", ModeOffset.String())
	assert.Equal(t, "single", ModeSingle.String())
}
