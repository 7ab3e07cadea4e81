// Package ratelimit paces outbound Riot API requests against the
// per-credential quota. The quota is count based: a fixed number of calls
// is allowed before a mandatory cooldown, independent of how much wall
// clock time the calls took.
package ratelimit

import (
	"time"
)

// Defaults matching the development key quota the collector was tuned for.
const (
	// DefaultCeiling is the number of requests allowed per quota window.
	DefaultCeiling = 100

	// DefaultCooldown is how long the caller is suspended once the ceiling is reached.
	// The upstream window is two minutes; one extra second absorbs clock skew.
	DefaultCooldown = 121 * time.Second
)

// Config holds the quota window parameters.
type Config struct {
	// Ceiling is the number of requests per window.
	Ceiling int `toml:"ceiling"`

	// Cooldown is the suspension applied when the ceiling is reached.
	Cooldown time.Duration `toml:"cooldown"`

	// PerSecond optionally caps the request rate within a window.
	// Zero disables pacing.
	PerSecond float64 `toml:"per_second"`
}

// DefaultConfig returns the quota parameters of a development API key.
func DefaultConfig() Config {
	return Config{
		Ceiling:  DefaultCeiling,
		Cooldown: DefaultCooldown,
	}
}

// Budget is the mutable request counter for the current quota window.
type Budget struct {
	// Used is the number of requests counted in the current window.
	Used int `json:"used"`

	// Ceiling is the window size.
	Ceiling int `json:"ceiling"`

	// Cooldowns is the number of cooldowns taken since the budget was created.
	Cooldowns int `json:"cooldowns"`

	// Total is the number of requests counted since the budget was created.
	Total int `json:"total"`
}

// Spend counts one request and reports whether the window is now exhausted.
func (b *Budget) Spend() bool {
	b.Used++
	b.Total++
	return b.Exhausted()
}

// Exhausted returns true once the counter has reached the ceiling.
func (b *Budget) Exhausted() bool {
	return b.Used >= b.Ceiling
}

// Reset starts a new window.
func (b *Budget) Reset() {
	b.Used = 0
	b.Cooldowns++
}

// Remaining returns the number of requests left before the next cooldown.
func (b *Budget) Remaining() int {
	if b.Used >= b.Ceiling {
		return 0
	}
	return b.Ceiling - b.Used
}
