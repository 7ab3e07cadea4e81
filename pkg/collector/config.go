package collector

import (
	"errors"
	"fmt"

	"github.com/jo-urn/lol-scouter/pkg/checkpoint"
	"github.com/jo-urn/lol-scouter/pkg/client"
	"github.com/jo-urn/lol-scouter/pkg/pagination"
	"github.com/jo-urn/lol-scouter/pkg/ratelimit"
)

// Collection defaults.
const (
	DefaultQueue      = "RANKED_SOLO_5x5"
	DefaultMatchQueue = 420

	// DefaultBeginTime is the matchlist lower bound used when no day window
	// is given (2020-06-30T00:00:00Z, the start of patch 10.13).
	DefaultBeginTime = int64(1593475200000)
)

// DefaultMasterLeagues are the apex leagues, fetched whole by queue.
var DefaultMasterLeagues = []string{
	"challengerleagues",
	"grandmasterleagues",
	"masterleagues",
}

// Division is one paged league-entries listing.
type Division struct {
	Tier     string `toml:"tier"`
	Division string `toml:"division"`
}

// Config parameterizes every job.
type Config struct {
	// Queue is the ranked queue name for league endpoints.
	Queue string `toml:"queue"`

	// MatchQueue is the numeric queue id matchlists are filtered by.
	MatchQueue int `toml:"match_queue"`

	// MasterLeagues lists the by-queue league endpoints to collect.
	// Empty disables apex tier collection.
	MasterLeagues []string `toml:"master_leagues"`

	// Divisions lists the paged tiers to collect, in order.
	Divisions []Division `toml:"divisions"`

	// BeginTime is the default matchlist lower bound in epoch ms.
	BeginTime int64 `toml:"begin_time"`

	// DataDragonVersion selects the champion lookup release.
	DataDragonVersion string `toml:"data_dragon_version"`

	RateLimit ratelimit.Config `toml:"rate_limit"`

	// PageSize is the matchlist beginIndex step.
	PageSize int `toml:"page_size"`

	// FragmentEvery is the checkpoint cadence of the account and history jobs.
	FragmentEvery int `toml:"fragment_every"`

	// BackupEvery is the checkpoint cadence of the match detail job.
	BackupEvery int `toml:"backup_every"`

	// ArchiveRaw keeps the raw API bodies of each run next to its tables.
	ArchiveRaw bool `toml:"archive_raw"`
}

// DefaultConfig returns the settings the collector was originally run with.
func DefaultConfig() Config {
	return Config{
		Queue:             DefaultQueue,
		MatchQueue:        DefaultMatchQueue,
		MasterLeagues:     append([]string(nil), DefaultMasterLeagues...),
		Divisions:         []Division{{Tier: "DIAMOND", Division: "I"}},
		BeginTime:         DefaultBeginTime,
		DataDragonVersion: client.DefaultDataDragonVersion,
		RateLimit:         ratelimit.DefaultConfig(),
		PageSize:          pagination.DefaultPageSize,
		FragmentEvery:     checkpoint.DefaultFragmentEvery,
		BackupEvery:       checkpoint.DefaultBackupEvery,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.Queue == "" {
		errs = append(errs, errors.New("queue is required"))
	}
	if c.RateLimit.Ceiling <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.ceiling must be positive (got %d)", c.RateLimit.Ceiling))
	}
	if c.RateLimit.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("rate_limit.cooldown must not be negative (got %s)", c.RateLimit.Cooldown))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size must be positive (got %d)", c.PageSize))
	}
	if c.FragmentEvery < 0 || c.BackupEvery < 0 {
		errs = append(errs, errors.New("fragment_every and backup_every must not be negative (0 disables checkpoints)"))
	}
	for i, d := range c.Divisions {
		if d.Tier == "" || d.Division == "" {
			errs = append(errs, fmt.Errorf("divisions[%d]: tier and division are required", i))
		}
	}
	return errors.Join(errs...)
}
