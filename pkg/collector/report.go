package collector

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jo-urn/lol-scouter/pkg/client"
	"github.com/jo-urn/lol-scouter/pkg/normalize"
	"github.com/jo-urn/lol-scouter/pkg/ratelimit"
)

// Failure is an input item whose fetch was aborted.
type Failure struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	Page    int    `json:"page,omitempty"`
	Message string `json:"message"`
}

// Report summarizes one job run.
type Report struct {
	Job   string `json:"job"`
	Range Range  `json:"range"`

	// Requested counts input items attempted, Fetched those that produced
	// at least one successful response.
	Requested int `json:"requested"`
	Fetched   int `json:"fetched"`

	Failures []Failure        `json:"failures,omitempty"`
	Skipped  []normalize.Skip `json:"skipped,omitempty"`

	Requests    int `json:"requests"`
	Cooldowns   int `json:"cooldowns"`
	Checkpoints int `json:"checkpoints"`

	Rows    map[string]int `json:"rows"`
	Outputs []string       `json:"outputs"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func newReport(job string, r Range, now time.Time) *Report {
	return &Report{
		Job:       job,
		Range:     r,
		Rows:      make(map[string]int),
		StartedAt: now,
	}
}

func (r *Report) fail(index int, id string, page int, err error) Failure {
	f := Failure{Index: index, ID: id, Page: page, Message: client.Message(err)}
	r.Failures = append(r.Failures, f)
	return f
}

func (r *Report) skip(skips []normalize.Skip) {
	r.Skipped = append(r.Skipped, skips...)
}

func (r *Report) output(uri, table string, rows int) {
	r.Outputs = append(r.Outputs, uri)
	r.Rows[table] = rows
}

func (r *Report) finish(window *ratelimit.FixedWindow, now time.Time) {
	if window != nil {
		b := window.Budget()
		r.Requests = b.Total
		r.Cooldowns = b.Cooldowns
	}
	r.FinishedAt = now
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Log writes the summary at info level.
func (r *Report) Log(logger zerolog.Logger) {
	tables := make([]string, 0, len(r.Rows))
	for t := range r.Rows {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	rows := zerolog.Dict()
	for _, t := range tables {
		rows = rows.Int(t, r.Rows[t])
	}

	logger.Info().
		Str("job", r.Job).
		Stringer("range", r.Range).
		Int("requested", r.Requested).
		Int("fetched", r.Fetched).
		Int("failed", len(r.Failures)).
		Int("skipped", len(r.Skipped)).
		Int("requests", r.Requests).
		Int("cooldowns", r.Cooldowns).
		Int("checkpoints", r.Checkpoints).
		Dict("rows", rows).
		Dur("duration", r.Duration()).
		Msg("Job finished")
}
