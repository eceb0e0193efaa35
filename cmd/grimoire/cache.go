package main

import (
	"fmt"

	"github.com/archerdnd/grimoire"
)

// Run executes the cache clear command.
func (c *CacheClearCmd) Run(deps *Dependencies) error {
	if c.Kind == "" {
		if err := deps.Store.ClearAll(deps.Ctx); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
			return err
		}
		fmt.Fprintln(deps.Stdout, "Cleared all cached official content. Homebrew content was kept.")
		return nil
	}

	kind, err := grimoire.ParseKind(c.Kind)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}
	if err := deps.Store.ClearOfficial(deps.Ctx, kind); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Cleared cached official %s entries. Homebrew content was kept.\n", c.Kind)
	return nil
}

// Run executes the cache size command.
func (c *CacheSizeCmd) Run(deps *Dependencies) error {
	size, err := deps.Store.Size()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", grimoire.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Cache size: %s (%d bytes)\n", humanBytes(size), size)
	return nil
}

// humanBytes renders a byte count with a binary unit.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
