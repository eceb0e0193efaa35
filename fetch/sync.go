// Package fetch orchestrates syncs against the remote content source.
// It fetches kinds concurrently under a bounded limit, retries transient
// failures per kind, and commits each kind into the local store
// independently, so one kind's failure never rolls back another's
// commit.
package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/archerdnd/grimoire"
	"golang.org/x/sync/errgroup"
)

// Syncer runs fetch-and-commit cycles. One sync may be in flight per
// Syncer; a second concurrent Sync call fails with ECONFLICT rather
// than queuing, to avoid interleaved partial commits.
type Syncer struct {
	Fetcher grimoire.Fetcher
	Store   grimoire.Store

	// Limiter, when set, is awaited before every request.
	Limiter *Limiter

	// MaxParallel bounds how many kinds are fetched concurrently.
	// Defaults to 4.
	MaxParallel int

	// Backoff is the per-kind retry schedule. Zero value means
	// DefaultBackoff.
	Backoff Backoff

	// Now overrides the time source, for tests.
	Now func() time.Time

	inflight sync.Mutex
}

// Sync fetches and commits the requested kinds. An empty kind set means
// all official kinds. The returned report has one entry per requested
// kind; Sync itself only fails when another sync is already running.
// Per-kind fetch errors degrade to failed entries in the report.
func (s *Syncer) Sync(ctx context.Context, kinds []grimoire.Kind) (*grimoire.SyncReport, error) {
	if !s.inflight.TryLock() {
		return nil, grimoire.Errorf(grimoire.ECONFLICT, "sync already in progress")
	}
	defer s.inflight.Unlock()

	if len(kinds) == 0 {
		kinds = grimoire.Kinds()
	}
	kinds = dedupeKinds(kinds)

	parallel := s.MaxParallel
	if parallel <= 0 {
		parallel = 4
	}
	backoff := s.Backoff
	if backoff.MaxAttempts == 0 {
		backoff = DefaultBackoff()
	}

	report := grimoire.NewSyncReport()
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(parallel)
	for _, kind := range kinds {
		kind := kind
		g.Go(func() error {
			kr := s.syncKind(ctx, kind, backoff)
			mu.Lock()
			report.Kinds[kind] = kr
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	s.recordStatus(ctx, report)
	return report, nil
}

// syncKind fetches one kind with retries and commits it on success.
func (s *Syncer) syncKind(ctx context.Context, kind grimoire.Kind, backoff Backoff) grimoire.KindReport {
	if err := ctx.Err(); err != nil {
		return grimoire.KindReport{Status: grimoire.KindCancelled, Err: err.Error()}
	}

	fn := func(ctx context.Context) ([]*grimoire.Entry, error) {
		if s.Limiter != nil {
			if err := s.Limiter.Wait(ctx); err != nil {
				return nil, grimoire.Errorf(grimoire.ECANCELED, "rate limit wait: %v", err)
			}
		}
		return s.Fetcher.FetchKind(ctx, kind)
	}

	entries, attempts, err := fetchWithRetry(ctx, backoff, fn)
	if err != nil {
		status := grimoire.KindFailed
		if grimoire.ErrorCode(err) == grimoire.ECANCELED {
			status = grimoire.KindCancelled
		}
		return grimoire.KindReport{Status: status, Attempts: attempts, Err: grimoire.ErrorMessage(err)}
	}

	// Commit with cancellation masked: a kind whose fetch finished is
	// committed whole, never torn down mid-write.
	if err := s.Store.CommitOfficial(context.WithoutCancel(ctx), kind, entries); err != nil {
		return grimoire.KindReport{Status: grimoire.KindFailed, Attempts: attempts, Err: grimoire.ErrorMessage(err)}
	}

	return grimoire.KindReport{Status: grimoire.KindSuccess, Entries: len(entries), Attempts: attempts}
}

// recordStatus persists the aggregate outcome in the store metadata.
// A sync that was cancelled before committing anything leaves the store
// exactly as it was, metadata included.
func (s *Syncer) recordStatus(ctx context.Context, report *grimoire.SyncReport) {
	committed := 0
	cancelled := 0
	for _, kr := range report.Kinds {
		switch kr.Status {
		case grimoire.KindSuccess:
			committed++
		case grimoire.KindCancelled:
			cancelled++
		}
	}
	if committed == 0 && cancelled == len(report.Kinds) {
		return
	}

	now := s.Now
	if now == nil {
		now = time.Now
	}
	_ = s.Store.SetSyncStatus(context.WithoutCancel(ctx), now().UTC(), report.Status())
}

func dedupeKinds(kinds []grimoire.Kind) []grimoire.Kind {
	seen := make(map[grimoire.Kind]bool, len(kinds))
	out := kinds[:0:0]
	for _, k := range kinds {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
