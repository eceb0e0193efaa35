// Package session orchestrates the fetch-then-resolve-then-serve
// lifecycle. It is the seam between the engine and the CLI/TUI layer:
// the outer layer decides the mode, owns the context, and issues
// queries; the controller owns the view/index pair and keeps it
// consistent with the store.
package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/archerdnd/grimoire"
	"github.com/archerdnd/grimoire/query"
	"github.com/archerdnd/grimoire/resolve"
)

// Mode selects whether an invocation talks to the network.
type Mode string

// Invocation modes.
const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// State is the controller's lifecycle position. One invocation moves
// Idle → (Syncing) → Resolving → Ready and back to Idle on Close.
type State string

// Lifecycle states.
const (
	StateIdle      State = "idle"
	StateSyncing   State = "syncing"
	StateResolving State = "resolving"
	StateReady     State = "ready"
)

// Syncer runs one fetch-and-commit cycle. Implemented by fetch.Syncer.
type Syncer interface {
	Sync(ctx context.Context, kinds []grimoire.Kind) (*grimoire.SyncReport, error)
}

// Controller drives one invocation of the engine.
type Controller struct {
	store   grimoire.Store
	syncer  Syncer
	history grimoire.HistoryService
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	state  State
	view   *resolve.View
	index  *query.Index
	report *grimoire.SyncReport
}

// Option configures a Controller.
type Option func(*Controller)

// WithHistory journals every sync into the given service.
func WithHistory(h grimoire.HistoryService) Option {
	return func(c *Controller) { c.history = h }
}

// WithLogger sets the controller's logger. Defaults to discard.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a Controller. The syncer may be nil for offline-only use.
func New(store grimoire.Store, syncer Syncer, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		syncer: syncer,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Report returns the sync report of the last Run, or nil in offline
// mode.
func (c *Controller) Report() *grimoire.SyncReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report
}

// Run executes one invocation: sync (online mode only), then resolve
// and index. Per-kind sync failures never abort the run; partial
// content is always served over none, with the failure surfaced in
// Report. Cancellation during the sync proceeds to resolving with
// whatever was already committed.
func (c *Controller) Run(ctx context.Context, mode Mode, kinds []grimoire.Kind) error {
	if mode == ModeOnline {
		if c.syncer == nil {
			return grimoire.Errorf(grimoire.EINVALID, "online mode requires a syncer")
		}
		c.setState(StateSyncing)

		started := c.now().UTC()
		report, err := c.syncer.Sync(ctx, kinds)
		if err != nil {
			c.setState(StateIdle)
			return err
		}
		finished := c.now().UTC()

		c.mu.Lock()
		c.report = report
		c.mu.Unlock()

		c.recordSync(ctx, started, finished, report)
	}

	c.setState(StateResolving)
	c.rebuild()
	c.setState(StateReady)
	return nil
}

// Refresh rebuilds the view and index from the store's current state.
// Call after any direct homebrew edit so queries never run against a
// superseded index.
func (c *Controller) Refresh() {
	c.rebuild()
}

// Query evaluates a predicate against the current index.
func (c *Controller) Query(p query.Predicate) ([]query.Result, error) {
	c.mu.Lock()
	idx := c.index
	state := c.state
	c.mu.Unlock()

	if idx == nil {
		return nil, grimoire.Errorf(grimoire.EINTERNAL, "query before Run (state=%s)", state)
	}
	return query.Run(idx, p), nil
}

// View returns the current resolved view, or nil before Run.
func (c *Controller) View() *resolve.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Close returns the controller to Idle. The view and index stay
// available to readers that already hold them.
func (c *Controller) Close() {
	c.setState(StateIdle)
}

func (c *Controller) rebuild() {
	view := resolve.Resolve(c.store.Snapshot())
	index := query.BuildIndex(view)

	c.mu.Lock()
	c.view = view
	c.index = index
	c.mu.Unlock()
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// recordSync journals the sync. The journal is observability only, so
// a failure here degrades to a log line rather than failing the run.
func (c *Controller) recordSync(ctx context.Context, started, finished time.Time, report *grimoire.SyncReport) {
	if c.history == nil {
		return
	}
	rec := &grimoire.SyncRecord{
		StartedAt:  started,
		FinishedAt: finished,
		Report:     report,
	}
	if err := c.history.RecordSync(context.WithoutCancel(ctx), rec); err != nil {
		c.logger.Warn("record sync history", "error", err)
	}
}
