package slog_test

import (
	"bytes"
	"context"
	stdslog "log/slog"
	"testing"

	"github.com/archerdnd/grimoire"
	"github.com/archerdnd/grimoire/mock"
	grimoireslog "github.com/archerdnd/grimoire/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher(t *testing.T) {
	t.Parallel()

	t.Run("logs successful fetches with entry count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := stdslog.New(stdslog.NewTextHandler(&buf, nil))

		f := grimoireslog.NewFetcher(&mock.Fetcher{
			FetchKindFn: func(_ context.Context, kind grimoire.Kind) ([]*grimoire.Entry, error) {
				return []*grimoire.Entry{{
					ID:     grimoire.ContentID{Kind: kind, Slug: "fireball"},
					Name:   "Fireball",
					Origin: grimoire.OriginOfficial,
				}}, nil
			},
		}, logger)

		entries, err := f.FetchKind(context.Background(), grimoire.KindSpell)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.Contains(t, buf.String(), "fetch kind")
		assert.Contains(t, buf.String(), "kind=spell")
		assert.Contains(t, buf.String(), "entries=1")
	})

	t.Run("logs failures at warn level and passes the error through", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := stdslog.New(stdslog.NewTextHandler(&buf, nil))

		f := grimoireslog.NewFetcher(&mock.Fetcher{
			FetchKindFn: func(_ context.Context, _ grimoire.Kind) ([]*grimoire.Entry, error) {
				return nil, grimoire.Errorf(grimoire.EUNAVAILABLE, "HTTP 500")
			},
		}, logger)

		_, err := f.FetchKind(context.Background(), grimoire.KindSpell)
		require.Error(t, err)
		assert.Equal(t, grimoire.EUNAVAILABLE, grimoire.ErrorCode(err))
		assert.Contains(t, buf.String(), "level=WARN")
	})
}
