package main

import (
	"fmt"

	"github.com/archerdnd/grimoire"
	"github.com/archerdnd/grimoire/query"
	"github.com/archerdnd/grimoire/session"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	p := query.Predicate{Name: c.Query, Tags: c.Tag}

	if c.Kind != "" {
		kind, err := grimoire.ParseKind(c.Kind)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
			return err
		}
		p.Kind = &kind
	}
	if c.Origin != "" {
		origin, err := grimoire.ParseOrigin(c.Origin)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
			return err
		}
		p.Origin = &origin
	}

	if err := deps.Session.Run(deps.Ctx, session.ModeOffline, nil); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}

	results, err := deps.Session.Query(p)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No matches. Run 'grimoire sync' to refresh the cache.")
		return nil
	}

	for _, r := range results {
		fmt.Fprintf(deps.Stdout, "%-30s %-24s %s%s\n", r.Entry.ID.String(), r.Entry.Name, r.Entry.Origin, resultMarks(r))
	}
	return nil
}

// resultMarks annotates a result with its resolution flags.
func resultMarks(r query.Result) string {
	var marks string
	if r.Overridden {
		marks += " (overrides official)"
	}
	if r.UnknownKind {
		marks += " (unknown kind)"
	}
	return marks
}
