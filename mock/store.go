package mock

import (
	"context"
	"time"

	"github.com/archerdnd/grimoire"
)

var _ grimoire.Store = (*Store)(nil)

// Store is a mock implementation of grimoire.Store.
type Store struct {
	CommitOfficialFn func(ctx context.Context, kind grimoire.Kind, entries []*grimoire.Entry) error
	SetSyncStatusFn  func(ctx context.Context, at time.Time, status grimoire.SyncStatus) error
	PutHomebrewFn    func(ctx context.Context, entry *grimoire.Entry) error
	DeleteHomebrewFn func(ctx context.Context, id grimoire.ContentID) error
	ClearOfficialFn  func(ctx context.Context, kind grimoire.Kind) error
	SnapshotFn       func() *grimoire.Snapshot
}

func (s *Store) CommitOfficial(ctx context.Context, kind grimoire.Kind, entries []*grimoire.Entry) error {
	return s.CommitOfficialFn(ctx, kind, entries)
}

func (s *Store) SetSyncStatus(ctx context.Context, at time.Time, status grimoire.SyncStatus) error {
	if s.SetSyncStatusFn == nil {
		return nil
	}
	return s.SetSyncStatusFn(ctx, at, status)
}

func (s *Store) PutHomebrew(ctx context.Context, entry *grimoire.Entry) error {
	return s.PutHomebrewFn(ctx, entry)
}

func (s *Store) DeleteHomebrew(ctx context.Context, id grimoire.ContentID) error {
	return s.DeleteHomebrewFn(ctx, id)
}

func (s *Store) ClearOfficial(ctx context.Context, kind grimoire.Kind) error {
	return s.ClearOfficialFn(ctx, kind)
}

func (s *Store) Snapshot() *grimoire.Snapshot {
	return s.SnapshotFn()
}
