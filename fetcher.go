package grimoire

import (
	"context"
	"sort"
)

// Fetcher retrieves the authoritative list of official entries for one
// content kind from the remote source.
type Fetcher interface {
	// FetchKind returns all official entries of the given kind.
	// The context controls timeout and cancellation. Transient failures
	// are reported as EUNAVAILABLE so callers can retry; remote
	// rejections are EINVALID and must not be retried.
	FetchKind(ctx context.Context, kind Kind) ([]*Entry, error)
}

// KindStatus is the per-kind outcome of a sync.
type KindStatus string

// Per-kind sync outcomes.
const (
	KindSuccess   KindStatus = "success"
	KindFailed    KindStatus = "failed"
	KindCancelled KindStatus = "cancelled"
)

// KindReport describes what happened to one kind during a sync.
type KindReport struct {
	Status   KindStatus `json:"status"`
	Entries  int        `json:"entries"`
	Attempts int        `json:"attempts"`
	Err      string     `json:"err,omitempty"`
}

// SyncReport aggregates per-kind outcomes of one sync call.
type SyncReport struct {
	Kinds map[Kind]KindReport `json:"kinds"`
}

// NewSyncReport returns an empty report.
func NewSyncReport() *SyncReport {
	return &SyncReport{Kinds: make(map[Kind]KindReport)}
}

// Status collapses the per-kind outcomes into a store-level SyncStatus.
// All kinds committed is success; some is partial; none is failed.
func (r *SyncReport) Status() SyncStatus {
	var failed []Kind
	committed := 0
	reason := ""
	for kind, kr := range r.Kinds {
		if kr.Status == KindSuccess {
			committed++
			continue
		}
		failed = append(failed, kind)
		if reason == "" && kr.Err != "" {
			reason = kr.Err
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })

	switch {
	case len(failed) == 0:
		return SyncStatus{State: SyncSuccess}
	case committed > 0:
		return SyncStatus{State: SyncPartial, FailedKinds: failed, Reason: reason}
	default:
		return SyncStatus{State: SyncFailed, FailedKinds: failed, Reason: reason}
	}
}
