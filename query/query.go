package query

import (
	"sort"
	"strings"

	"github.com/archerdnd/grimoire"
)

// Match ranks how well an entry matched the name term. Lower is better.
type Match int

// Match ranks, best first.
const (
	MatchExact Match = iota
	MatchPrefix
	MatchPartial
	// MatchAll marks results of predicates without a name term.
	MatchAll
)

// Predicate is a conjunction of optional filters. The zero value
// matches every entry of the view; that is deliberate, documented
// behavior, not an error.
type Predicate struct {
	// Kind restricts results to one content kind.
	Kind *grimoire.Kind

	// Tags keeps entries carrying at least one of the given tags.
	Tags []string

	// Origin restricts results to one layer.
	Origin *grimoire.Origin

	// Name keeps entries whose name (or tag) contains the term,
	// case-insensitively, and drives ranking.
	Name string
}

// Result is one ranked query hit.
type Result struct {
	Entry      *grimoire.Entry
	Overridden bool

	// UnknownKind mirrors the resolved view's flag for homebrew
	// entries outside the official kind set.
	UnknownKind bool

	Match Match
}

// Run evaluates the predicate against the index. Results are ordered by
// match rank (exact name, then prefix, then substring/tag match), ties
// broken by content id, so identical inputs always produce identical
// output. The result set is bounded by the view size.
func Run(idx *Index, p Predicate) []Result {
	// Kind, tag and single-token name filters narrow through the
	// inverted index before any entry is ranked.
	cands := idx.candidateSet(p)

	term := normalize(p.Name)

	var results []Result
	for _, r := range idx.view.Entries() {
		id := r.Entry.ID
		if cands != nil && !cands[id] {
			continue
		}
		if p.Kind != nil && id.Kind != *p.Kind {
			continue
		}
		if p.Origin != nil && r.Entry.Origin != *p.Origin {
			continue
		}

		match := MatchAll
		if term != "" {
			var ok bool
			match, ok = matchName(r.Entry, term)
			if !ok {
				continue
			}
		}

		results = append(results, Result{
			Entry:       r.Entry,
			Overridden:  r.Overridden,
			UnknownKind: r.UnknownKind,
			Match:       match,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Match != results[j].Match {
			return results[i].Match < results[j].Match
		}
		return results[i].Entry.ID.String() < results[j].Entry.ID.String()
	})
	return results
}

// matchName ranks an entry against a normalized name term.
func matchName(e *grimoire.Entry, term string) (Match, bool) {
	name := normalize(e.Name)
	switch {
	case name == term:
		return MatchExact, true
	case strings.HasPrefix(name, term):
		return MatchPrefix, true
	case strings.Contains(name, term):
		return MatchPartial, true
	}
	for _, tag := range e.Tags {
		if strings.Contains(normalize(tag), term) {
			return MatchPartial, true
		}
	}
	return 0, false
}
