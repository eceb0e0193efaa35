// Package slog provides logging decorators for the domain interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/archerdnd/grimoire"
)

// Ensure Fetcher implements grimoire.Fetcher.
var _ grimoire.Fetcher = (*Fetcher)(nil)

// Fetcher wraps a grimoire.Fetcher with per-kind timing and outcome logs.
type Fetcher struct {
	next   grimoire.Fetcher
	logger *slog.Logger
}

// NewFetcher creates a new logging Fetcher.
func NewFetcher(next grimoire.Fetcher, logger *slog.Logger) *Fetcher {
	return &Fetcher{next: next, logger: logger}
}

// FetchKind delegates to the wrapped fetcher and logs the outcome.
func (f *Fetcher) FetchKind(ctx context.Context, kind grimoire.Kind) ([]*grimoire.Entry, error) {
	begin := time.Now()
	entries, err := f.next.FetchKind(ctx, kind)
	if err != nil {
		f.logger.Warn("fetch kind",
			"kind", kind,
			"duration", time.Since(begin),
			"error", err,
		)
		return nil, err
	}
	f.logger.Info("fetch kind",
		"kind", kind,
		"entries", len(entries),
		"duration", time.Since(begin),
	)
	return entries, nil
}
