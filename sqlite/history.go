package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/archerdnd/grimoire"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ grimoire.HistoryService = (*HistoryService)(nil)

// HistoryService implements grimoire.HistoryService using SQLite.
type HistoryService struct {
	db *DB
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(db *DB) *HistoryService {
	return &HistoryService{db: db}
}

// RecordSync journals one finished sync.
func (s *HistoryService) RecordSync(ctx context.Context, rec *grimoire.SyncRecord) error {
	if rec.Report == nil {
		return grimoire.Errorf(grimoire.EINVALID, "sync record report required")
	}
	if rec.FinishedAt.Before(rec.StartedAt) {
		return grimoire.Errorf(grimoire.EINVALID, "sync record finished before it started")
	}

	rec.ID = uuid.New().String()
	if rec.State == "" {
		rec.State = rec.Report.Status().State
	}

	detail, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("marshal sync report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO syncs (id, started_at, finished_at, state, detail)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano), string(rec.State), string(detail))

	return err
}

// ListSyncs returns the most recent syncs, newest first.
func (s *HistoryService) ListSyncs(ctx context.Context, limit int) ([]*grimoire.SyncRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, state, detail
		FROM syncs
		ORDER BY finished_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*grimoire.SyncRecord
	for rows.Next() {
		var rec grimoire.SyncRecord
		var startedAt, finishedAt, state, detail string

		if err := rows.Scan(&rec.ID, &startedAt, &finishedAt, &state, &detail); err != nil {
			return nil, err
		}

		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("failed to parse started_at: %w", err)
		}
		if rec.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, fmt.Errorf("failed to parse finished_at: %w", err)
		}
		rec.State = grimoire.SyncState(state)

		var report grimoire.SyncReport
		if err := json.Unmarshal([]byte(detail), &report); err != nil {
			return nil, fmt.Errorf("failed to parse sync detail: %w", err)
		}
		rec.Report = &report

		recs = append(recs, &rec)
	}

	return recs, rows.Err()
}
