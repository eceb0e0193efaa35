package mock

import (
	"context"

	"github.com/archerdnd/grimoire"
)

var _ grimoire.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of grimoire.Fetcher.
type Fetcher struct {
	FetchKindFn func(ctx context.Context, kind grimoire.Kind) ([]*grimoire.Entry, error)
}

func (f *Fetcher) FetchKind(ctx context.Context, kind grimoire.Kind) ([]*grimoire.Entry, error) {
	return f.FetchKindFn(ctx, kind)
}
