package session_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/archerdnd/grimoire"
	"github.com/archerdnd/grimoire/fs"
	"github.com/archerdnd/grimoire/query"
	"github.com/archerdnd/grimoire/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncerFunc adapts a function to session.Syncer.
type syncerFunc func(ctx context.Context, kinds []grimoire.Kind) (*grimoire.SyncReport, error)

func (f syncerFunc) Sync(ctx context.Context, kinds []grimoire.Kind) (*grimoire.SyncReport, error) {
	return f(ctx, kinds)
}

// historyRecorder captures journaled records in memory.
type historyRecorder struct {
	recs []*grimoire.SyncRecord
	err  error
}

func (h *historyRecorder) RecordSync(_ context.Context, rec *grimoire.SyncRecord) error {
	if h.err != nil {
		return h.err
	}
	h.recs = append(h.recs, rec)
	return nil
}

func (h *historyRecorder) ListSyncs(context.Context, int) ([]*grimoire.SyncRecord, error) {
	return h.recs, nil
}

func openTestStore(t *testing.T) *fs.Store {
	t.Helper()
	store := fs.NewStore(t.TempDir())
	require.NoError(t, store.Open())
	return store
}

func testEntry(kind grimoire.Kind, slug, name string, origin grimoire.Origin) *grimoire.Entry {
	return &grimoire.Entry{
		ID:      grimoire.ContentID{Kind: kind, Slug: slug},
		Name:    name,
		Payload: json.RawMessage(`{}`),
		Origin:  origin,
	}
}

func TestController_Run(t *testing.T) {
	t.Parallel()

	t.Run("offline mode serves the store without syncing", func(t *testing.T) {
		t.Parallel()

		store := openTestStore(t)
		ctx := context.Background()
		require.NoError(t, store.CommitOfficial(ctx, grimoire.KindSpell, []*grimoire.Entry{
			testEntry(grimoire.KindSpell, "fireball", "Fireball", grimoire.OriginOfficial),
		}))

		synced := false
		c := session.New(store, syncerFunc(func(context.Context, []grimoire.Kind) (*grimoire.SyncReport, error) {
			synced = true
			return grimoire.NewSyncReport(), nil
		}))

		require.NoError(t, c.Run(ctx, session.ModeOffline, nil))
		assert.False(t, synced)
		assert.Equal(t, session.StateReady, c.State())
		assert.Nil(t, c.Report())

		results, err := c.Query(query.Predicate{})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "fireball", results[0].Entry.ID.Slug)
	})

	t.Run("online mode syncs then serves and exposes the report", func(t *testing.T) {
		t.Parallel()

		store := openTestStore(t)
		ctx := context.Background()

		c := session.New(store, syncerFunc(func(ctx context.Context, kinds []grimoire.Kind) (*grimoire.SyncReport, error) {
			require.Equal(t, []grimoire.Kind{grimoire.KindSpell}, kinds)
			err := store.CommitOfficial(ctx, grimoire.KindSpell, []*grimoire.Entry{
				testEntry(grimoire.KindSpell, "fireball", "Fireball", grimoire.OriginOfficial),
			})
			require.NoError(t, err)

			report := grimoire.NewSyncReport()
			report.Kinds[grimoire.KindSpell] = grimoire.KindReport{Status: grimoire.KindSuccess, Entries: 1, Attempts: 1}
			return report, nil
		}))

		require.NoError(t, c.Run(ctx, session.ModeOnline, []grimoire.Kind{grimoire.KindSpell}))
		assert.Equal(t, session.StateReady, c.State())

		require.NotNil(t, c.Report())
		assert.Equal(t, grimoire.SyncSuccess, c.Report().Status().State)

		results, err := c.Query(query.Predicate{})
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("partial sync still serves what committed", func(t *testing.T) {
		t.Parallel()

		store := openTestStore(t)
		ctx := context.Background()

		c := session.New(store, syncerFunc(func(ctx context.Context, _ []grimoire.Kind) (*grimoire.SyncReport, error) {
			err := store.CommitOfficial(ctx, grimoire.KindMonster, []*grimoire.Entry{
				testEntry(grimoire.KindMonster, "goblin", "Goblin", grimoire.OriginOfficial),
			})
			require.NoError(t, err)

			report := grimoire.NewSyncReport()
			report.Kinds[grimoire.KindMonster] = grimoire.KindReport{Status: grimoire.KindSuccess, Entries: 1, Attempts: 1}
			report.Kinds[grimoire.KindSpell] = grimoire.KindReport{Status: grimoire.KindFailed, Attempts: 4, Err: "HTTP 500"}
			return report, nil
		}))

		require.NoError(t, c.Run(ctx, session.ModeOnline, nil))
		assert.Equal(t, session.StateReady, c.State())
		assert.Equal(t, grimoire.SyncPartial, c.Report().Status().State)

		results, err := c.Query(query.Predicate{})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, grimoire.KindMonster, results[0].Entry.ID.Kind)
	})

	t.Run("a sync that never started returns the error and stays idle", func(t *testing.T) {
		t.Parallel()

		c := session.New(openTestStore(t), syncerFunc(func(context.Context, []grimoire.Kind) (*grimoire.SyncReport, error) {
			return nil, grimoire.Errorf(grimoire.ECONFLICT, "sync already in progress")
		}))

		err := c.Run(context.Background(), session.ModeOnline, nil)
		require.Error(t, err)
		assert.Equal(t, grimoire.ECONFLICT, grimoire.ErrorCode(err))
		assert.Equal(t, session.StateIdle, c.State())
	})

	t.Run("online mode without a syncer is rejected", func(t *testing.T) {
		t.Parallel()

		c := session.New(openTestStore(t), nil)
		err := c.Run(context.Background(), session.ModeOnline, nil)
		require.Error(t, err)
		assert.Equal(t, grimoire.EINVALID, grimoire.ErrorCode(err))
	})

	t.Run("journals the sync when a history service is configured", func(t *testing.T) {
		t.Parallel()

		store := openTestStore(t)
		history := &historyRecorder{}
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		c := session.New(store, syncerFunc(func(context.Context, []grimoire.Kind) (*grimoire.SyncReport, error) {
			report := grimoire.NewSyncReport()
			report.Kinds[grimoire.KindSpell] = grimoire.KindReport{Status: grimoire.KindSuccess, Attempts: 1}
			return report, nil
		}),
			session.WithHistory(history),
			session.WithClock(func() time.Time { return now }),
		)

		require.NoError(t, c.Run(context.Background(), session.ModeOnline, nil))
		require.Len(t, history.recs, 1)
		assert.Equal(t, now, history.recs[0].StartedAt)
		assert.Equal(t, grimoire.SyncSuccess, history.recs[0].Report.Status().State)
	})

	t.Run("a failing journal never fails the run", func(t *testing.T) {
		t.Parallel()

		c := session.New(openTestStore(t), syncerFunc(func(context.Context, []grimoire.Kind) (*grimoire.SyncReport, error) {
			return grimoire.NewSyncReport(), nil
		}), session.WithHistory(&historyRecorder{err: grimoire.Errorf(grimoire.EINTERNAL, "disk full")}))

		require.NoError(t, c.Run(context.Background(), session.ModeOnline, nil))
		assert.Equal(t, session.StateReady, c.State())
	})
}

func TestController_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("picks up homebrew edits made after Run", func(t *testing.T) {
		t.Parallel()

		store := openTestStore(t)
		ctx := context.Background()
		require.NoError(t, store.CommitOfficial(ctx, grimoire.KindSpell, []*grimoire.Entry{
			testEntry(grimoire.KindSpell, "fireball", "Fireball", grimoire.OriginOfficial),
		}))

		c := session.New(store, nil)
		require.NoError(t, c.Run(ctx, session.ModeOffline, nil))

		require.NoError(t, store.PutHomebrew(ctx, testEntry(grimoire.KindSpell, "fireball", "Cold Fireball", grimoire.OriginHomebrew)))

		// Stale until refreshed.
		results, err := c.Query(query.Predicate{})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Fireball", results[0].Entry.Name)

		c.Refresh()

		results, err = c.Query(query.Predicate{})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Cold Fireball", results[0].Entry.Name)
		assert.True(t, results[0].Overridden)
	})
}

func TestController_Query(t *testing.T) {
	t.Parallel()

	t.Run("rejects queries before Run", func(t *testing.T) {
		t.Parallel()

		c := session.New(openTestStore(t), nil)
		_, err := c.Query(query.Predicate{})
		require.Error(t, err)
		assert.Equal(t, grimoire.EINTERNAL, grimoire.ErrorCode(err))
	})
}
