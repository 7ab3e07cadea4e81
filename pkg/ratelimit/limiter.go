package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for quota tracking.
var (
	windowRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scouter_ratelimit_window_requests",
		Help: "Number of requests counted in the current quota window",
	})

	cooldownsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scouter_ratelimit_cooldowns_total",
		Help: "Total number of quota cooldowns taken",
	})

	cooldownSeconds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scouter_ratelimit_cooldown_seconds_total",
		Help: "Total time spent suspended in quota cooldowns",
	})
)

// Limiter is called immediately before every outbound request.
type Limiter interface {
	BeforeRequest(ctx context.Context) error
}

// Clock abstracts sleeping so cooldowns can be tested without waiting.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock sleeps on the wall clock, returning early if ctx is cancelled.
type RealClock struct{}

// Sleep implements Clock.
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ProgressFunc reports how many items a job has accumulated so far.
// It is invoked once per cooldown.
type ProgressFunc func() int

// FixedWindow is a count-only quota limiter. It is meant for a single
// sequential caller; the mutex only keeps the counter consistent.
type FixedWindow struct {
	mu       sync.Mutex
	budget   Budget
	cooldown time.Duration
	clock    Clock
	progress ProgressFunc
	logger   zerolog.Logger
}

// Option configures a FixedWindow.
type Option func(*FixedWindow)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(w *FixedWindow) {
		w.clock = c
	}
}

// WithProgress sets the callback used to report progress at each cooldown.
func WithProgress(fn ProgressFunc) Option {
	return func(w *FixedWindow) {
		w.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *FixedWindow) {
		w.logger = logger
	}
}

// NewFixedWindow creates a limiter for one job run.
func NewFixedWindow(cfg Config, opts ...Option) (*FixedWindow, error) {
	if cfg.Ceiling <= 0 {
		return nil, fmt.Errorf("ceiling must be positive (got %d)", cfg.Ceiling)
	}
	if cfg.Cooldown < 0 {
		return nil, fmt.Errorf("cooldown must not be negative (got %s)", cfg.Cooldown)
	}

	w := &FixedWindow{
		budget:   Budget{Ceiling: cfg.Ceiling},
		cooldown: cfg.Cooldown,
		clock:    RealClock{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// BeforeRequest counts the upcoming request. When the window is exhausted
// it reports progress, resets the counter and suspends for the cooldown.
func (w *FixedWindow) BeforeRequest(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	exhausted := w.budget.Spend()
	windowRequests.Set(float64(w.budget.Used))
	if !exhausted {
		return nil
	}

	event := w.logger.Info().
		Int("requests", w.budget.Total).
		Dur("cooldown", w.cooldown)
	if w.progress != nil {
		event = event.Int("entries_so_far", w.progress())
	}
	event.Msg("Request quota reached, cooling down")

	w.budget.Reset()
	windowRequests.Set(0)
	cooldownsTotal.Inc()
	cooldownSeconds.Add(w.cooldown.Seconds())

	if err := w.clock.Sleep(ctx, w.cooldown); err != nil {
		return fmt.Errorf("quota cooldown interrupted: %w", err)
	}
	return nil
}

// Budget returns a copy of the current counter state.
func (w *FixedWindow) Budget() Budget {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.budget
}

// Paced wraps a Limiter with a per-second token bucket, so bursts inside a
// quota window stay under the short upstream limit.
type Paced struct {
	next    Limiter
	limiter *rate.Limiter
}

// NewPaced returns next unchanged when perSecond is not positive.
func NewPaced(next Limiter, perSecond float64) Limiter {
	if perSecond <= 0 {
		return next
	}
	return &Paced{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// BeforeRequest implements Limiter.
func (p *Paced) BeforeRequest(ctx context.Context) error {
	if err := p.next.BeforeRequest(ctx); err != nil {
		return err
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacing wait: %w", err)
	}
	return nil
}

// New builds the limiter described by cfg.
func New(cfg Config, opts ...Option) (Limiter, *FixedWindow, error) {
	window, err := NewFixedWindow(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return NewPaced(window, cfg.PerSecond), window, nil
}
