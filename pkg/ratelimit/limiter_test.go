package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock records requested sleeps instead of waiting.
type fakeClock struct {
	sleeps []time.Duration
	err    error
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	if c.err != nil {
		return c.err
	}
	return ctx.Err()
}

func TestFixedWindow_CooldownCount(t *testing.T) {
	tests := []struct {
		name    string
		ceiling int
		calls   int
		want    int
	}{
		{name: "no calls", ceiling: 100, calls: 0, want: 0},
		{name: "below ceiling", ceiling: 100, calls: 99, want: 0},
		{name: "exactly ceiling", ceiling: 100, calls: 100, want: 1},
		{name: "just past ceiling", ceiling: 100, calls: 101, want: 1},
		{name: "several windows", ceiling: 100, calls: 250, want: 2},
		{name: "multiple of ceiling", ceiling: 100, calls: 300, want: 3},
		{name: "small ceiling", ceiling: 3, calls: 10, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{}
			w, err := NewFixedWindow(Config{Ceiling: tt.ceiling, Cooldown: DefaultCooldown}, WithClock(clock))
			if err != nil {
				t.Fatalf("NewFixedWindow() error = %v", err)
			}

			for i := 0; i < tt.calls; i++ {
				if err := w.BeforeRequest(context.Background()); err != nil {
					t.Fatalf("BeforeRequest() call %d error = %v", i, err)
				}
			}

			if len(clock.sleeps) != tt.want {
				t.Errorf("cooldowns = %d, want %d", len(clock.sleeps), tt.want)
			}
			for _, d := range clock.sleeps {
				if d != DefaultCooldown {
					t.Errorf("cooldown duration = %s, want %s", d, DefaultCooldown)
				}
			}

			budget := w.Budget()
			if budget.Used >= tt.ceiling {
				t.Errorf("Used = %d, must stay below ceiling %d between calls", budget.Used, tt.ceiling)
			}
			if budget.Cooldowns != tt.want {
				t.Errorf("Budget().Cooldowns = %d, want %d", budget.Cooldowns, tt.want)
			}
			if budget.Total != tt.calls {
				t.Errorf("Budget().Total = %d, want %d", budget.Total, tt.calls)
			}
		})
	}
}

func TestFixedWindow_ReportsProgress(t *testing.T) {
	clock := &fakeClock{}
	collected := 0
	calls := 0
	w, err := NewFixedWindow(
		Config{Ceiling: 2, Cooldown: time.Second},
		WithClock(clock),
		WithProgress(func() int {
			calls++
			return collected
		}),
	)
	if err != nil {
		t.Fatalf("NewFixedWindow() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		collected += 10
		if err := w.BeforeRequest(context.Background()); err != nil {
			t.Fatalf("BeforeRequest() error = %v", err)
		}
	}

	if calls != 2 {
		t.Errorf("progress callback invoked %d times, want 2", calls)
	}
}

func TestFixedWindow_CancelledCooldown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w, err := NewFixedWindow(Config{Ceiling: 1, Cooldown: time.Hour}, WithClock(&fakeClock{}))
	if err != nil {
		t.Fatalf("NewFixedWindow() error = %v", err)
	}

	err = w.BeforeRequest(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("BeforeRequest() error = %v, want context.Canceled", err)
	}
}

func TestNewFixedWindow_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: DefaultConfig(), wantErr: false},
		{name: "zero ceiling", cfg: Config{Ceiling: 0, Cooldown: time.Second}, wantErr: true},
		{name: "negative cooldown", cfg: Config{Ceiling: 10, Cooldown: -time.Second}, wantErr: true},
		{name: "zero cooldown", cfg: Config{Ceiling: 10}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFixedWindow(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFixedWindow() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRealClock_Sleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := RealClock{}.Sleep(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep() error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep() did not return promptly on cancelled context")
	}
}

func TestNew_PacingDisabledByDefault(t *testing.T) {
	limiter, window, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if limiter != Limiter(window) {
		t.Error("New() with PerSecond=0 should return the fixed window unwrapped")
	}

	paced, _, err := New(Config{Ceiling: 100, Cooldown: time.Second, PerSecond: 1000})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := paced.(*Paced); !ok {
		t.Errorf("New() with PerSecond>0 returned %T, want *Paced", paced)
	}
	if err := paced.BeforeRequest(context.Background()); err != nil {
		t.Errorf("Paced.BeforeRequest() error = %v", err)
	}
}
