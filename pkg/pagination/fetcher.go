package pagination

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jo-urn/lol-scouter/pkg/cache"
	"github.com/jo-urn/lol-scouter/pkg/client"
	"github.com/jo-urn/lol-scouter/pkg/ratelimit"
	"github.com/jo-urn/lol-scouter/pkg/record"
)

var (
	pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scouter_pages_fetched_total",
		Help: "Total pages fetched by pagination mode and source",
	}, []string{"mode", "source"})

	abortedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scouter_fetch_aborted_total",
		Help: "Total resources whose fetch was aborted by a non-success response",
	}, []string{"mode"})
)

// ErrInterrupted wraps limiter failures, which only happen when the run
// is being cancelled.
var ErrInterrupted = errors.New("fetch interrupted")

// DefaultPageSize is the offset step for offset pagination.
const DefaultPageSize = 100

// Mode selects how successive pages are addressed.
type Mode int

const (
	// ModeSingle issues exactly one request.
	ModeSingle Mode = iota

	// ModePage sends page=1,2,3,...
	ModePage

	// ModeOffset sends beginIndex=0,PageSize,2*PageSize,...
	ModeOffset
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModePage:
		return "page"
	case ModeOffset:
		return "offset"
	default:
		return "single"
	}
}

// Getter performs one HTTP GET. *client.Client implements it.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values) (*client.Response, error)
}

// Cache stores successful response bodies. *cache.Manager implements it.
type Cache interface {
	Get(ctx context.Context, key cache.CacheKey) (*cache.CacheEntry, error)
	Put(ctx context.Context, key cache.CacheKey, data []byte, statusCode int) error
}

// Request describes one paginated resource.
type Request struct {
	// Path is the endpoint path including any identifier.
	Path string

	// Query holds fixed parameters sent with every page (queue, beginTime).
	Query url.Values

	// Mode selects the pagination scheme.
	Mode Mode

	// PageSize is the offset step in ModeOffset. Zero means DefaultPageSize.
	PageSize int

	// ItemsField names the array inside an object body ("matches" for
	// matchlists). Empty means the body itself is the array.
	ItemsField string

	// Cacheable allows pages to be served from and stored in the cache.
	// Leave it unset for listings that grow or change upstream.
	Cacheable bool
}

// Result holds the items gathered for one resource.
type Result struct {
	// Items from every successful page, in page order.
	Items []record.Value

	// Pages is the number of non-empty pages fetched.
	Pages int

	// Err is set when a page failed; Items still holds earlier pages.
	Err error

	// FailedPage is the 1-based page that failed, 0 when Err is nil.
	FailedPage int
}

// Fetcher issues rate-limited, optionally cached requests.
type Fetcher struct {
	getter  Getter
	limiter ratelimit.Limiter
	cache   Cache
	logger  zerolog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithCache enables the response cache.
func WithCache(c Cache) Option {
	return func(f *Fetcher) {
		f.cache = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a fetcher. The limiter is owned by the caller and
// typically lives for one job run.
func NewFetcher(getter Getter, limiter ratelimit.Limiter, opts ...Option) *Fetcher {
	f := &Fetcher{
		getter:  getter,
		limiter: limiter,
		logger:  log.With().Str("component", "fetcher").Logger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues a single request and returns the body of a 200 response.
// The cache is not consulted. Upstream failures are returned as
// *client.APIError; a cancelled run as ErrInterrupted.
func (f *Fetcher) Fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	body, _, err := f.fetch(ctx, path, query, false)
	return body, err
}

// FetchImmutable is Fetch for resources that never change once they exist
// (a summoner or match by id). Their bodies go through the cache.
func (f *Fetcher) FetchImmutable(ctx context.Context, path string, query url.Values) ([]byte, error) {
	body, _, err := f.fetch(ctx, path, query, true)
	return body, err
}

func (f *Fetcher) fetch(ctx context.Context, path string, query url.Values, cacheable bool) ([]byte, string, error) {
	key := cache.CacheKey{Path: path, QueryParams: query}
	useCache := cacheable && f.cache != nil

	if useCache {
		entry, err := f.cache.Get(ctx, key)
		switch {
		case err == nil:
			return entry.Data, "cache", nil
		case !errors.Is(err, cache.ErrCacheMiss):
			f.logger.Warn().Err(err).Str("path", path).Msg("Cache get error")
		}
	}

	if err := f.limiter.BeforeRequest(ctx); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInterrupted, err)
	}

	resp, err := f.getter.Get(ctx, path, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInterrupted, ctx.Err())
		}
		return nil, "", err
	}

	if useCache {
		if err := f.cache.Put(ctx, key, resp.Body, resp.StatusCode); err != nil {
			f.logger.Warn().Err(err).Str("path", path).Msg("Failed to cache response")
		}
	}

	return resp.Body, "api", nil
}

// FetchAll follows pagination until an empty page or a failed request.
// The returned error is non-nil only for ErrInterrupted.
func (f *Fetcher) FetchAll(ctx context.Context, req Request) (Result, error) {
	var res Result

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	for page := 1; ; page++ {
		query := url.Values{}
		for k, v := range req.Query {
			query[k] = v
		}
		switch req.Mode {
		case ModePage:
			query.Set("page", strconv.Itoa(page))
		case ModeOffset:
			query.Set("beginIndex", strconv.Itoa((page-1)*pageSize))
		}

		body, source, err := f.fetch(ctx, req.Path, query, req.Cacheable)
		if err != nil {
			if errors.Is(err, ErrInterrupted) {
				return res, err
			}
			abortedTotal.WithLabelValues(req.Mode.String()).Inc()
			res.Err = err
			res.FailedPage = page
			return res, nil
		}

		items, err := pageItems(body, req.ItemsField)
		if err != nil {
			abortedTotal.WithLabelValues(req.Mode.String()).Inc()
			res.Err = fmt.Errorf("page %d: %w", page, err)
			res.FailedPage = page
			return res, nil
		}
		pagesTotal.WithLabelValues(req.Mode.String(), source).Inc()

		if len(items) == 0 {
			return res, nil
		}
		res.Items = append(res.Items, items...)
		res.Pages++

		if req.Mode == ModeSingle {
			return res, nil
		}
	}
}

func pageItems(body []byte, field string) ([]record.Value, error) {
	v, err := record.Decode(body)
	if err != nil {
		return nil, err
	}
	if field != "" {
		r := record.NewReader(v)
		list := r.List(field)
		if err := r.Err(); err != nil {
			return nil, err
		}
		return list, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, record.ErrNotList
	}
	return list, nil
}

// BeginTimeFromDaysAgo returns the epoch millisecond lower bound for a
// matchlist window starting the given number of days before now.
func BeginTimeFromDaysAgo(now time.Time, days int) int64 {
	return now.AddDate(0, 0, -days).UnixMilli()
}
