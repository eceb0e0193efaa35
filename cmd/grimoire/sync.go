package main

import (
	"fmt"
	"sort"

	"github.com/archerdnd/grimoire"
	"github.com/archerdnd/grimoire/session"
)

// Run executes the sync command.
func (c *SyncCmd) Run(deps *Dependencies) error {
	kinds := make([]grimoire.Kind, 0, len(c.Kinds))
	for _, raw := range c.Kinds {
		kind, err := grimoire.ParseKind(raw)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
			return err
		}
		kinds = append(kinds, kind)
	}

	if err := deps.Session.Run(deps.Ctx, session.ModeOnline, kinds); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}

	report := deps.Session.Report()
	printSyncReport(deps, report)

	if report.Status().State == grimoire.SyncFailed {
		return grimoire.Errorf(grimoire.EUNAVAILABLE, "sync failed for every kind")
	}
	return nil
}

func printSyncReport(deps *Dependencies, report *grimoire.SyncReport) {
	kinds := make([]grimoire.Kind, 0, len(report.Kinds))
	for kind := range report.Kinds {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	total := 0
	for _, kind := range kinds {
		kr := report.Kinds[kind]
		switch kr.Status {
		case grimoire.KindSuccess:
			fmt.Fprintf(deps.Stdout, "%-10s %d entries\n", kind, kr.Entries)
			total += kr.Entries
		case grimoire.KindFailed:
			fmt.Fprintf(deps.Stderr, "%-10s failed after %d attempts: %s\n", kind, kr.Attempts, kr.Err)
		case grimoire.KindCancelled:
			fmt.Fprintf(deps.Stderr, "%-10s cancelled\n", kind)
		}
	}

	switch report.Status().State {
	case grimoire.SyncSuccess:
		fmt.Fprintf(deps.Stdout, "Synced %d entries\n", total)
	case grimoire.SyncPartial:
		fmt.Fprintf(deps.Stdout, "Synced %d entries (some kinds failed; cached copies kept)\n", total)
	}
}
