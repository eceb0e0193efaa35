package resolve_test

import (
	"testing"

	"github.com/archerdnd/grimoire"
	"github.com/archerdnd/grimoire/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(kind grimoire.Kind, slug string, origin grimoire.Origin) *grimoire.Entry {
	return &grimoire.Entry{
		ID:     grimoire.ContentID{Kind: kind, Slug: slug},
		Name:   slug,
		Origin: origin,
	}
}

func snapshot(official, homebrew []*grimoire.Entry) *grimoire.Snapshot {
	snap := &grimoire.Snapshot{
		Official: make(map[grimoire.ContentID]*grimoire.Entry),
		Homebrew: make(map[grimoire.ContentID]*grimoire.Entry),
	}
	for _, e := range official {
		snap.Official[e.ID] = e
	}
	for _, e := range homebrew {
		snap.Homebrew[e.ID] = e
	}
	return snap
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("homebrew wins for shared ids and is flagged", func(t *testing.T) {
		t.Parallel()

		snap := snapshot(
			[]*grimoire.Entry{
				entry(grimoire.KindSpell, "fireball", grimoire.OriginOfficial),
				entry(grimoire.KindSpell, "shield", grimoire.OriginOfficial),
			},
			[]*grimoire.Entry{
				entry(grimoire.KindSpell, "fireball", grimoire.OriginHomebrew),
			},
		)

		view := resolve.Resolve(snap)
		require.Equal(t, 2, view.Len())

		fireball := view.Get(grimoire.ContentID{Kind: grimoire.KindSpell, Slug: "fireball"})
		require.NotNil(t, fireball)
		assert.Equal(t, grimoire.OriginHomebrew, fireball.Entry.Origin)
		assert.True(t, fireball.Overridden)

		shield := view.Get(grimoire.ContentID{Kind: grimoire.KindSpell, Slug: "shield"})
		require.NotNil(t, shield)
		assert.Equal(t, grimoire.OriginOfficial, shield.Entry.Origin)
		assert.False(t, shield.Overridden)
	})

	t.Run("homebrew-only entries are not flagged as overriding", func(t *testing.T) {
		t.Parallel()

		snap := snapshot(nil, []*grimoire.Entry{
			entry(grimoire.KindSpell, "my-spell", grimoire.OriginHomebrew),
		})

		view := resolve.Resolve(snap)
		got := view.Get(grimoire.ContentID{Kind: grimoire.KindSpell, Slug: "my-spell"})
		require.NotNil(t, got)
		assert.False(t, got.Overridden)
		assert.False(t, got.UnknownKind)
	})

	t.Run("unknown kinds are included and flagged", func(t *testing.T) {
		t.Parallel()

		snap := snapshot(nil, []*grimoire.Entry{
			entry(grimoire.Kind("vehicle"), "airship", grimoire.OriginHomebrew),
		})

		view := resolve.Resolve(snap)
		require.Equal(t, 1, view.Len())
		got := view.Entries()[0]
		assert.True(t, got.UnknownKind)
	})

	t.Run("is deterministic across repeated calls", func(t *testing.T) {
		t.Parallel()

		snap := snapshot(
			[]*grimoire.Entry{
				entry(grimoire.KindSpell, "fireball", grimoire.OriginOfficial),
				entry(grimoire.KindMonster, "goblin", grimoire.OriginOfficial),
				entry(grimoire.KindItem, "rope", grimoire.OriginOfficial),
			},
			[]*grimoire.Entry{
				entry(grimoire.KindSpell, "fireball", grimoire.OriginHomebrew),
				entry(grimoire.KindFeat, "lucky", grimoire.OriginHomebrew),
			},
		)

		first := resolve.Resolve(snap)
		second := resolve.Resolve(snap)

		require.Equal(t, first.Len(), second.Len())
		for i, r := range first.Entries() {
			other := second.Entries()[i]
			assert.Equal(t, r.Entry.ID, other.Entry.ID)
			assert.Equal(t, r.Overridden, other.Overridden)
			assert.Equal(t, r.UnknownKind, other.UnknownKind)
		}
	})

	t.Run("orders entries by content id", func(t *testing.T) {
		t.Parallel()

		snap := snapshot(
			[]*grimoire.Entry{
				entry(grimoire.KindSpell, "shield", grimoire.OriginOfficial),
				entry(grimoire.KindItem, "rope", grimoire.OriginOfficial),
				entry(grimoire.KindSpell, "fireball", grimoire.OriginOfficial),
			},
			nil,
		)

		view := resolve.Resolve(snap)
		var ids []string
		for _, r := range view.Entries() {
			ids = append(ids, r.Entry.ID.String())
		}
		assert.Equal(t, []string{"item/rope", "spell/fireball", "spell/shield"}, ids)
	})
}
