// Package query builds an inverted index over a resolved view and
// answers filtered, ranked searches against it.
//
// The index is derived state: rebuilt together with the view after any
// store mutation, never persisted, never authoritative.
package query

import (
	"strings"
	"unicode"

	"github.com/archerdnd/grimoire"
	"github.com/archerdnd/grimoire/resolve"
	"github.com/bits-and-blooms/bloom/v3"
)

// bloomFalsePositiveRate is the acceptable false positive rate for the
// tag membership filter. False positives only cost a map lookup.
const bloomFalsePositiveRate = 0.01

// Index is an inverted index over one resolved view. It borrows the
// view read-only for its own lifetime; a new view needs a new index.
type Index struct {
	view *resolve.View

	tokens map[string][]grimoire.ContentID
	tags   map[string][]grimoire.ContentID
	byKind map[grimoire.Kind][]grimoire.ContentID

	// tagFilter answers "definitely not indexed" for tag lookups
	// without touching the map. False positives fall through to it.
	tagFilter *bloom.BloomFilter
}

// BuildIndex scans the view once and builds the index.
func BuildIndex(view *resolve.View) *Index {
	idx := &Index{
		view:   view,
		tokens: make(map[string][]grimoire.ContentID),
		tags:   make(map[string][]grimoire.ContentID),
		byKind: make(map[grimoire.Kind][]grimoire.ContentID),
	}

	n := view.Len()
	if n < 16 {
		n = 16
	}
	idx.tagFilter = bloom.NewWithEstimates(uint(n), bloomFalsePositiveRate)

	for _, r := range view.Entries() {
		id := r.Entry.ID
		idx.byKind[id.Kind] = append(idx.byKind[id.Kind], id)

		for _, tok := range Tokenize(r.Entry.Name) {
			idx.tokens[tok] = append(idx.tokens[tok], id)
		}
		for _, tag := range r.Entry.Tags {
			tag = normalize(tag)
			if tag == "" {
				continue
			}
			idx.tags[tag] = append(idx.tags[tag], id)
			idx.tagFilter.AddString(tag)
		}
	}
	return idx
}

// View returns the resolved view the index was built from.
func (idx *Index) View() *resolve.View {
	return idx.view
}

// idsForTag returns the ids carrying a tag, gated by the bloom filter.
func (idx *Index) idsForTag(tag string) []grimoire.ContentID {
	tag = normalize(tag)
	if tag == "" || !idx.tagFilter.TestString(tag) {
		return nil
	}
	return idx.tags[tag]
}

// candidateSet intersects the index structures a predicate can use and
// returns the ids worth ranking. nil means the predicate offers nothing
// to narrow on and every entry is a candidate.
func (idx *Index) candidateSet(p Predicate) map[grimoire.ContentID]bool {
	var set map[grimoire.ContentID]bool

	if p.Kind != nil {
		set = make(map[grimoire.ContentID]bool, len(idx.byKind[*p.Kind]))
		for _, id := range idx.byKind[*p.Kind] {
			set[id] = true
		}
	}

	if len(p.Tags) > 0 {
		tagged := make(map[grimoire.ContentID]bool)
		for _, tag := range p.Tags {
			for _, id := range idx.idsForTag(tag) {
				tagged[id] = true
			}
		}
		set = intersect(set, tagged)
	}

	// A purely alphanumeric term cannot span a token boundary, so any
	// name containing it has a token containing it; the token index is
	// then a complete candidate source. Terms with spaces or punctuation
	// fall back to the full scan.
	if term := normalize(p.Name); term != "" && alphanumeric(term) {
		named := make(map[grimoire.ContentID]bool)
		for tok, ids := range idx.tokens {
			if strings.Contains(tok, term) {
				for _, id := range ids {
					named[id] = true
				}
			}
		}
		// Names also match through tags.
		for tag, ids := range idx.tags {
			if strings.Contains(tag, term) {
				for _, id := range ids {
					named[id] = true
				}
			}
		}
		set = intersect(set, named)
	}

	return set
}

// intersect narrows a candidate set. A nil set means "everything".
func intersect(set, with map[grimoire.ContentID]bool) map[grimoire.ContentID]bool {
	if set == nil {
		return with
	}
	out := make(map[grimoire.ContentID]bool, len(with))
	for id := range with {
		if set[id] {
			out[id] = true
		}
	}
	return out
}

func alphanumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return s != ""
}

// Tokenize splits a name into lowercase alphanumeric tokens.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
