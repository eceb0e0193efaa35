package grimoire

import (
	"context"
	"time"
)

// SyncRecord is one journaled sync: when it ran, how it ended, and the
// per-kind detail. The journal exists so staleness is inspectable; the
// engine never reads it back for resolution.
type SyncRecord struct {
	ID         string      `json:"id"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt time.Time   `json:"finishedAt"`
	State      SyncState   `json:"state"`
	Report     *SyncReport `json:"report"`
}

// HistoryService records and lists past syncs.
type HistoryService interface {
	// RecordSync journals one finished sync. Assigns the record ID.
	RecordSync(ctx context.Context, rec *SyncRecord) error

	// ListSyncs returns the most recent syncs, newest first.
	ListSyncs(ctx context.Context, limit int) ([]*SyncRecord, error)
}
