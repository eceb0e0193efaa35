// Package resolve merges the store's official and homebrew layers into
// a single read-only view under the override rule: a homebrew entry
// shadows the official entry with the same id.
package resolve

import (
	"sort"

	"github.com/archerdnd/grimoire"
)

// Resolved is one entry of the merged view, annotated with how it won.
type Resolved struct {
	Entry *grimoire.Entry

	// Overridden is true when a homebrew entry shadows an official one
	// with the same id. Used to badge results.
	Overridden bool

	// UnknownKind is true for homebrew entries whose kind is outside
	// the official set. They are served, not rejected; the presentation
	// layer surfaces the flag.
	UnknownKind bool
}

// View is the merged, override-applied read model built from one store
// snapshot. It is immutable after Resolve returns; the query engine
// borrows it for the lifetime of one index.
type View struct {
	entries []*Resolved
	byID    map[grimoire.ContentID]*Resolved
	meta    grimoire.Metadata
}

// Resolve builds a View from a snapshot. It is pure and deterministic:
// the same snapshot always produces the same view, in linear time.
func Resolve(snap *grimoire.Snapshot) *View {
	v := &View{
		byID: make(map[grimoire.ContentID]*Resolved, len(snap.Official)+len(snap.Homebrew)),
		meta: snap.Meta,
	}

	for id, e := range snap.Official {
		if _, shadowed := snap.Homebrew[id]; shadowed {
			continue
		}
		v.byID[id] = &Resolved{Entry: e}
	}
	for id, e := range snap.Homebrew {
		_, overrides := snap.Official[id]
		v.byID[id] = &Resolved{
			Entry:       e,
			Overridden:  overrides,
			UnknownKind: !id.Kind.Known(),
		}
	}

	v.entries = make([]*Resolved, 0, len(v.byID))
	for _, r := range v.byID {
		v.entries = append(v.entries, r)
	}
	sort.Slice(v.entries, func(i, j int) bool {
		return v.entries[i].Entry.ID.String() < v.entries[j].Entry.ID.String()
	})
	return v
}

// Entries returns all resolved entries ordered by content id.
// Callers must not mutate the returned slice.
func (v *View) Entries() []*Resolved {
	return v.entries
}

// Get returns the resolved entry for an id, or nil if absent.
func (v *View) Get(id grimoire.ContentID) *Resolved {
	return v.byID[id]
}

// Len returns the number of resolved entries.
func (v *View) Len() int {
	return len(v.entries)
}

// Meta returns the store metadata the view was built from.
func (v *View) Meta() grimoire.Metadata {
	return v.meta
}
