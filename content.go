package grimoire

import (
	"encoding/json"
	"strings"
	"time"
)

// Kind identifies a category of game content.
//
// The set of kinds the remote source serves is closed and known at build
// time, but homebrew entries may carry kinds outside it. Such entries are
// preserved and flagged rather than rejected; Known reports whether a
// kind belongs to the official set.
type Kind string

// Official content kinds.
const (
	KindSpell     Kind = "spell"
	KindMonster   Kind = "monster"
	KindItem      Kind = "item"
	KindClass     Kind = "class"
	KindSubclass  Kind = "subclass"
	KindRace      Kind = "race"
	KindFeat      Kind = "feat"
	KindFeature   Kind = "feature"
	KindCharacter Kind = "character"
)

// Kinds returns the official content kinds in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindSpell,
		KindMonster,
		KindItem,
		KindClass,
		KindSubclass,
		KindRace,
		KindFeat,
		KindFeature,
		KindCharacter,
	}
}

// ParseKind normalizes a kind name. Any non-empty string parses; callers
// that only accept official kinds should check Known on the result.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return "", Errorf(EINVALID, "content kind required")
	}
	return k, nil
}

// Known reports whether the kind is part of the official set.
func (k Kind) Known() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Origin identifies the layer an entry belongs to.
type Origin string

// Entry origins.
const (
	OriginOfficial Origin = "official"
	OriginHomebrew Origin = "homebrew"
)

// ParseOrigin normalizes an origin name.
func ParseOrigin(s string) (Origin, error) {
	switch o := Origin(strings.ToLower(strings.TrimSpace(s))); o {
	case OriginOfficial, OriginHomebrew:
		return o, nil
	default:
		return "", Errorf(EINVALID, "origin must be official or homebrew, got %q", s)
	}
}

// ContentID is the stable identity of a content entry: a (kind, slug)
// pair, unique within a kind. The same ContentID may exist once per
// origin; that is the homebrew-overrides-official case.
type ContentID struct {
	Kind Kind   `json:"kind"`
	Slug string `json:"slug"`
}

// String returns the canonical "kind/slug" form.
func (id ContentID) String() string {
	return string(id.Kind) + "/" + id.Slug
}

// ParseContentID parses the canonical "kind/slug" form.
func ParseContentID(s string) (ContentID, error) {
	kind, slug, ok := strings.Cut(s, "/")
	if !ok || kind == "" || slug == "" {
		return ContentID{}, Errorf(EINVALID, "content id must be kind/slug, got %q", s)
	}
	k, err := ParseKind(kind)
	if err != nil {
		return ContentID{}, err
	}
	return ContentID{Kind: k, Slug: strings.ToLower(slug)}, nil
}

// Entry is one item of game content.
type Entry struct {
	ID   ContentID `json:"id"`
	Name string    `json:"name"`

	// Payload holds the kind-specific fields verbatim. The engine treats
	// it as opaque; only the presentation layer interprets it.
	Payload json.RawMessage `json:"payload,omitempty"`

	Origin Origin `json:"origin"`

	// Version is the remote-supplied version indicator for official
	// entries. Empty for homebrew.
	Version string `json:"version,omitempty"`

	// Revision is a local monotonic counter assigned by the store to
	// homebrew entries on each write. Zero for official.
	Revision int64 `json:"revision,omitempty"`

	Tags []string `json:"tags,omitempty"`

	FetchedAt time.Time `json:"fetchedAt,omitzero"`
	EditedAt  time.Time `json:"editedAt,omitzero"`
}

// Validate returns an error if the entry contains invalid fields.
func (e *Entry) Validate() error {
	if e.ID.Kind == "" {
		return Errorf(EINVALID, "entry kind required")
	}
	if e.ID.Slug == "" {
		return Errorf(EINVALID, "entry slug required")
	}
	if e.Name == "" {
		return Errorf(EINVALID, "entry name required")
	}
	if e.Origin != OriginOfficial && e.Origin != OriginHomebrew {
		return Errorf(EINVALID, "entry origin must be official or homebrew, got %q", e.Origin)
	}
	return nil
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	dup := *e
	if e.Payload != nil {
		dup.Payload = append(json.RawMessage(nil), e.Payload...)
	}
	if e.Tags != nil {
		dup.Tags = append([]string(nil), e.Tags...)
	}
	return &dup
}

// Slugify converts a display name into a slug: lowercase, spaces and
// runs of non-alphanumerics collapsed to single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			hyphen = false
		default:
			if !hyphen && b.Len() > 0 {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
