package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/archerdnd/grimoire"
)

// Ensure Store implements grimoire.Store.
var _ grimoire.Store = (*Store)(nil)

// Store wraps a grimoire.Store with mutation logging. Reads are not
// logged; snapshots are too frequent to be interesting.
type Store struct {
	next   grimoire.Store
	logger *slog.Logger
}

// NewStore creates a new logging Store.
func NewStore(next grimoire.Store, logger *slog.Logger) *Store {
	return &Store{next: next, logger: logger}
}

// CommitOfficial delegates and logs the commit.
func (s *Store) CommitOfficial(ctx context.Context, kind grimoire.Kind, entries []*grimoire.Entry) error {
	begin := time.Now()
	err := s.next.CommitOfficial(ctx, kind, entries)
	if err != nil {
		s.logger.Error("commit official", "kind", kind, "error", err)
		return err
	}
	s.logger.Info("commit official",
		"kind", kind,
		"entries", len(entries),
		"duration", time.Since(begin),
	)
	return nil
}

// SetSyncStatus delegates and logs the recorded status.
func (s *Store) SetSyncStatus(ctx context.Context, at time.Time, status grimoire.SyncStatus) error {
	err := s.next.SetSyncStatus(ctx, at, status)
	if err != nil {
		s.logger.Error("set sync status", "error", err)
		return err
	}
	s.logger.Info("set sync status", "state", status.State, "failedKinds", len(status.FailedKinds))
	return nil
}

// PutHomebrew delegates and logs the write.
func (s *Store) PutHomebrew(ctx context.Context, entry *grimoire.Entry) error {
	err := s.next.PutHomebrew(ctx, entry)
	if err != nil {
		s.logger.Error("put homebrew", "id", entry.ID.String(), "error", err)
		return err
	}
	s.logger.Info("put homebrew", "id", entry.ID.String(), "revision", entry.Revision)
	return nil
}

// DeleteHomebrew delegates and logs the delete.
func (s *Store) DeleteHomebrew(ctx context.Context, id grimoire.ContentID) error {
	err := s.next.DeleteHomebrew(ctx, id)
	if err != nil {
		s.logger.Error("delete homebrew", "id", id.String(), "error", err)
		return err
	}
	s.logger.Info("delete homebrew", "id", id.String())
	return nil
}

// ClearOfficial delegates and logs the reset.
func (s *Store) ClearOfficial(ctx context.Context, kind grimoire.Kind) error {
	err := s.next.ClearOfficial(ctx, kind)
	if err != nil {
		s.logger.Error("clear official", "kind", kind, "error", err)
		return err
	}
	s.logger.Info("clear official", "kind", kind)
	return nil
}

// Snapshot delegates to the wrapped store.
func (s *Store) Snapshot() *grimoire.Snapshot {
	return s.next.Snapshot()
}
