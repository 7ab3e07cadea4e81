package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jo-urn/lol-scouter/internal/config"
	"github.com/jo-urn/lol-scouter/pkg/checkpoint"
	"github.com/jo-urn/lol-scouter/pkg/collector"
	"github.com/jo-urn/lol-scouter/pkg/pagination"
)

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "lol-scouter",
		Short:         "Collects ranked League of Legends data from the Riot API into parquet tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	g.register(root)

	root.AddCommand(
		jobCmd(g, "entries", "Fetch league entries into players_pool", nil,
			func(ctx context.Context, c *collector.Collector, _ collector.Range) (*collector.Report, error) {
				return c.CollectLeagueEntries(ctx)
			}),
		rangeJobCmd(g, "accounts", "Fetch summoner accounts for players_pool into account_info",
			func(ctx context.Context, c *collector.Collector, rng collector.Range) (*collector.Report, error) {
				return c.CollectAccounts(ctx, rng)
			}),
		newMergeCmd(g),
		newHistoryCmd(g),
		rangeJobCmd(g, "matches", "Fetch match details for match_ids into the match tables",
			func(ctx context.Context, c *collector.Collector, rng collector.Range) (*collector.Report, error) {
				return c.CollectMatches(ctx, rng)
			}),
		newNormalizeCmd(g),
		newResumePlanCmd(g),
		newConfigCmd(),
	)
	return root
}

type jobFunc func(ctx context.Context, c *collector.Collector, rng collector.Range) (*collector.Report, error)

type rangeFlags struct {
	start int
	end   int
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&r.start, "start", 0, "first input index (inclusive)")
	cmd.Flags().IntVar(&r.end, "end", -1, "last input index (exclusive); -1 means the whole list")
}

func (r *rangeFlags) rng() collector.Range {
	return collector.Range{Start: r.start, End: r.end}
}

// jobCmd builds a command that runs one online job.
// rf is nil for jobs without an input range.
func jobCmd(g *globalFlags, use, short string, rf *rangeFlags, run jobFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, g, true)
			if err != nil {
				return err
			}
			defer a.Close()

			rng := collector.All
			if rf != nil {
				rng = rf.rng()
			}
			return jobResult(use)(run(cmd.Context(), a.collector, rng))
		},
	}
	if rf != nil {
		rf.register(cmd)
	}
	return cmd
}

func rangeJobCmd(g *globalFlags, use, short string, run jobFunc) *cobra.Command {
	return jobCmd(g, use, short, &rangeFlags{}, run)
}

// jobResult wraps the error of a finished job with its name. Jobs log
// their own summary.
func jobResult(job string) func(*collector.Report, error) error {
	return func(_ *collector.Report, err error) error {
		if err != nil {
			return fmt.Errorf("%s job failed: %w", job, err)
		}
		return nil
	}
}

func newMergeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Join players_pool with account_info into players_pool_account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, g, false)
			if err != nil {
				return err
			}
			defer a.Close()
			return jobResult(collector.JobMerge)(a.collector.MergeAccounts(cmd.Context()))
		},
	}
}

func newHistoryCmd(g *globalFlags) *cobra.Command {
	rf := &rangeFlags{}
	var daysAgo int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Fetch matchlists for players_pool_account into match_ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if daysAgo < 0 {
				return fmt.Errorf("--days-ago must not be negative (got %d)", daysAgo)
			}
			a, err := newApp(cmd, g, true)
			if err != nil {
				return err
			}
			defer a.Close()

			beginTime := a.cfg.Collector.BeginTime
			if daysAgo > 0 {
				beginTime = pagination.BeginTimeFromDaysAgo(time.Now(), daysAgo)
			}
			return jobResult(collector.JobHistory)(a.collector.CollectMatchHistory(cmd.Context(), rf.rng(), beginTime))
		},
	}
	rf.register(cmd)
	cmd.Flags().IntVar(&daysAgo, "days-ago", 0, "only matches from the last N days (default: collector.begin_time)")
	return cmd
}

func newNormalizeCmd(g *globalFlags) *cobra.Command {
	rf := &rangeFlags{}
	var job string

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Rebuild a job's tables from its raw archive without API requests",
		Long: "Rebuild a job's tables from the raw archive written with collector.archive_raw.\n" +
			"--start and --end must match the range the archived run covered.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, g, false)
			if err != nil {
				return err
			}
			defer a.Close()
			return jobResult("normalize "+job)(a.collector.Renormalize(cmd.Context(), job, rf.rng()))
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&job, "job", "", "accounts, history or matches")
	_ = cmd.MarkFlagRequired("job")
	// archives are named after the resolved range of the run
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newResumePlanCmd(g *globalFlags) *cobra.Command {
	var job string

	cmd := &cobra.Command{
		Use:   "resume-plan",
		Short: "Print the range a follow-up run of a job should cover",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, g, false)
			if err != nil {
				return err
			}
			defer a.Close()

			marker, next, done, err := a.collector.ResumePlan(cmd.Context(), job)
			if err != nil {
				if errors.Is(err, checkpoint.ErrNoCheckpoint) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: no checkpoint, run the whole list\n", job)
					return nil
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: processed %d of %s (updated %s)\n",
				job, marker.Processed, collector.Range{Start: marker.Start, End: marker.End}, marker.UpdatedAt.Format(time.RFC3339))
			if done {
				fmt.Fprintf(out, "%s: complete\n", job)
				return nil
			}
			fmt.Fprintf(out, "%s: next --start %d --end %d\n", job, next.Start, next.End)
			return nil
		},
	}
	cmd.Flags().StringVar(&job, "job", "", "accounts, history or matches")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the example configuration (default config.toml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteExample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	return cmd
}
