package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/archerdnd/grimoire"
	"github.com/archerdnd/grimoire/session"
)

// Run executes the brew add command.
func (c *BrewAddCmd) Run(deps *Dependencies) error {
	kind, err := grimoire.ParseKind(c.Kind)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}

	payload := json.RawMessage(`{}`)
	if c.Payload != "" {
		data, err := os.ReadFile(c.Payload)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: cannot read payload file: %s\n", err)
			return err
		}
		if !json.Valid(data) {
			fmt.Fprintf(deps.Stderr, "error: payload file %q is not valid JSON\n", c.Payload)
			return grimoire.Errorf(grimoire.EINVALID, "payload file %q is not valid JSON", c.Payload)
		}
		payload = data
	}

	entry := &grimoire.Entry{
		ID:      grimoire.ContentID{Kind: kind, Slug: grimoire.Slugify(c.Name)},
		Name:    c.Name,
		Payload: payload,
		Origin:  grimoire.OriginHomebrew,
		Tags:    c.Tag,
	}

	if err := deps.Store.PutHomebrew(deps.Ctx, entry); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}
	deps.Session.Refresh()

	fmt.Fprintf(deps.Stdout, "Saved %s (revision %d)\n", entry.ID.String(), entry.Revision)
	if !entry.ID.Kind.Known() {
		fmt.Fprintf(deps.Stdout, "Note: %q is not an official kind; the entry is kept but never refreshed by sync.\n", entry.ID.Kind)
	}
	return nil
}

// Run executes the brew rm command.
func (c *BrewRmCmd) Run(deps *Dependencies) error {
	id, err := grimoire.ParseContentID(c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}

	if err := deps.Store.DeleteHomebrew(deps.Ctx, id); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}
	deps.Session.Refresh()

	fmt.Fprintf(deps.Stdout, "Removed %s\n", id.String())
	return nil
}

// Run executes the brew list command.
func (c *BrewListCmd) Run(deps *Dependencies) error {
	if err := deps.Session.Run(deps.Ctx, session.ModeOffline, nil); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}

	found := false
	for _, r := range deps.Session.View().Entries() {
		if r.Entry.Origin != grimoire.OriginHomebrew {
			continue
		}
		found = true
		fmt.Fprintf(deps.Stdout, "%-30s %-24s rev %d%s\n", r.Entry.ID.String(), r.Entry.Name, r.Entry.Revision, brewMarks(r.Overridden, r.UnknownKind))
	}
	if !found {
		fmt.Fprintln(deps.Stdout, "No homebrew entries. Use 'grimoire brew add' to create one.")
	}
	return nil
}

func brewMarks(overridden, unknownKind bool) string {
	var marks string
	if overridden {
		marks += " (overrides official)"
	}
	if unknownKind {
		marks += " (unknown kind)"
	}
	return marks
}
