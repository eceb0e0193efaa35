package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/archerdnd/grimoire"
	"github.com/archerdnd/grimoire/session"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	id, err := grimoire.ParseContentID(c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}

	if err := deps.Session.Run(deps.Ctx, session.ModeOffline, nil); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}

	r := deps.Session.View().Get(id)
	if r == nil {
		fmt.Fprintf(deps.Stderr, "error: %q not found. Use 'grimoire search' to browse the cache.\n", id.String())
		return grimoire.Errorf(grimoire.ENOTFOUND, "%s not found", id.String())
	}

	fmt.Fprintf(deps.Stdout, "%s (%s, %s)\n", r.Entry.Name, r.Entry.ID.Kind, r.Entry.Origin)
	if r.Overridden {
		fmt.Fprintln(deps.Stdout, "Overrides the official entry of the same identity.")
	}
	if r.UnknownKind {
		fmt.Fprintln(deps.Stdout, "Kind is not an official kind; never refreshed by sync.")
	}
	if len(r.Entry.Tags) > 0 {
		fmt.Fprintf(deps.Stdout, "Tags: %s\n", strings.Join(r.Entry.Tags, ", "))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, r.Entry.Payload, "", "  "); err != nil {
		pretty.Write(r.Entry.Payload)
	}
	fmt.Fprintln(deps.Stdout, pretty.String())
	return nil
}
