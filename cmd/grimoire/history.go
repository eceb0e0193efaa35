package main

import (
	"fmt"
	"time"

	"github.com/archerdnd/grimoire"
)

// fmtRound keeps printed durations readable.
const fmtRound = 10 * time.Millisecond

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if deps.History == nil {
		fmt.Fprintln(deps.Stderr, "error: the sync journal is disabled (GRIMOIRE_HISTORY_DB=off)")
		return grimoire.Errorf(grimoire.EINVALID, "sync journal disabled")
	}

	recs, err := deps.History.ListSyncs(deps.Ctx, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}

	if len(recs) == 0 {
		fmt.Fprintln(deps.Stdout, "No syncs recorded. Use 'grimoire sync' to fetch content.")
		return nil
	}

	for _, rec := range recs {
		entries, failed := 0, 0
		for _, kr := range rec.Report.Kinds {
			entries += kr.Entries
			if kr.Status == grimoire.KindFailed {
				failed++
			}
		}
		fmt.Fprintf(deps.Stdout, "%s  %-8s %4d entries, %d kinds failed, took %s\n",
			rec.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			rec.State,
			entries,
			failed,
			rec.FinishedAt.Sub(rec.StartedAt).Round(fmtRound),
		)
	}
	return nil
}
