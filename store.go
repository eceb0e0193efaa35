package grimoire

import (
	"context"
	"time"
)

// SyncState summarizes the outcome of the most recent sync.
type SyncState string

// Sync outcome states.
const (
	SyncSuccess SyncState = "success"
	SyncPartial SyncState = "partial"
	SyncFailed  SyncState = "failed"
)

// SyncStatus records how the last sync against the remote source ended.
type SyncStatus struct {
	State SyncState `json:"state"`

	// FailedKinds lists the kinds that did not commit, for partial and
	// failed syncs.
	FailedKinds []Kind `json:"failedKinds,omitempty"`

	// Reason carries the failure description for failed syncs.
	Reason string `json:"reason,omitempty"`
}

// Metadata is store-level bookkeeping persisted alongside the layers.
type Metadata struct {
	LastSyncAt     time.Time  `json:"lastSyncAt,omitzero"`
	LastSyncStatus SyncStatus `json:"lastSyncStatus"`
}

// Snapshot is an immutable view of the store's two layers plus metadata.
// Snapshots are cheap to take and safe to read concurrently; mutations to
// the store after the snapshot was taken are not reflected in it.
type Snapshot struct {
	Official map[ContentID]*Entry
	Homebrew map[ContentID]*Entry
	Meta     Metadata
}

// Store is the durable local cache of official and homebrew content.
//
// The official layer is replaced one whole kind at a time by the syncer;
// the homebrew layer is edited entry by entry by the user. Every write is
// atomic at the file level: readers observe either the previous or the
// new committed state, never a mix.
type Store interface {
	// CommitOfficial atomically replaces all official entries of the
	// given kind and updates the sync metadata. A crash mid-commit
	// leaves the previously committed state intact.
	CommitOfficial(ctx context.Context, kind Kind, entries []*Entry) error

	// SetSyncStatus records the outcome of a sync in the metadata
	// without touching either layer.
	SetSyncStatus(ctx context.Context, at time.Time, status SyncStatus) error

	// PutHomebrew durably writes a homebrew entry, assigning it the next
	// local revision. Returns before the data is visible only on error.
	PutHomebrew(ctx context.Context, entry *Entry) error

	// DeleteHomebrew durably removes a homebrew entry.
	// Returns ENOTFOUND if no homebrew entry has that id.
	DeleteHomebrew(ctx context.Context, id ContentID) error

	// ClearOfficial drops the committed official entries of one kind.
	// Used to reset a kind whose cache file was reported corrupt.
	ClearOfficial(ctx context.Context, kind Kind) error

	// Snapshot returns an immutable view of both layers and metadata.
	Snapshot() *Snapshot
}
