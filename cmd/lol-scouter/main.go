// Command lol-scouter collects ranked League of Legends data from the Riot
// API into parquet tables.
//
// Jobs run one at a time, each reading the tables the previous one wrote:
//
//	lol-scouter entries               # players_pool
//	lol-scouter accounts              # account_info
//	lol-scouter merge                 # players_pool_account
//	lol-scouter history --days-ago 7  # match_ids
//	lol-scouter matches --end 5000    # match tables
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
