package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/archerdnd/grimoire"
	grimoirehttp "github.com/archerdnd/grimoire/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchKind(t *testing.T) {
	t.Parallel()

	t.Run("decodes items into official entries", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/spells", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"slug": "Fireball", "name": "Fireball", "version": "3", "tags": ["evocation"], "data": {"level": 3}},
				{"slug": "shield", "version": "1"}
			]`))
		}))
		defer srv.Close()

		client := grimoirehttp.NewClient(srv.URL)
		entries, err := client.FetchKind(context.Background(), grimoire.KindSpell)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.Equal(t, grimoire.ContentID{Kind: grimoire.KindSpell, Slug: "fireball"}, entries[0].ID)
		assert.Equal(t, "Fireball", entries[0].Name)
		assert.Equal(t, grimoire.OriginOfficial, entries[0].Origin)
		assert.Equal(t, "3", entries[0].Version)
		assert.JSONEq(t, `{"level": 3}`, string(entries[0].Payload))
		assert.False(t, entries[0].FetchedAt.IsZero())

		// Name falls back to the slug.
		assert.Equal(t, "shield", entries[1].Name)
	})

	t.Run("classifies 5xx as EUNAVAILABLE", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := grimoirehttp.NewClient(srv.URL).FetchKind(context.Background(), grimoire.KindSpell)
		require.Error(t, err)
		assert.Equal(t, grimoire.EUNAVAILABLE, grimoire.ErrorCode(err))
	})

	t.Run("classifies 4xx as EINVALID", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		_, err := grimoirehttp.NewClient(srv.URL).FetchKind(context.Background(), grimoire.KindSpell)
		require.Error(t, err)
		assert.Equal(t, grimoire.EINVALID, grimoire.ErrorCode(err))
	})

	t.Run("classifies connection failure as EUNAVAILABLE", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // refuse connections

		_, err := grimoirehttp.NewClient(srv.URL).FetchKind(context.Background(), grimoire.KindSpell)
		require.Error(t, err)
		assert.Equal(t, grimoire.EUNAVAILABLE, grimoire.ErrorCode(err))
	})

	t.Run("classifies cancellation as ECANCELED", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := grimoirehttp.NewClient(srv.URL).FetchKind(ctx, grimoire.KindSpell)
		require.Error(t, err)
		assert.Equal(t, grimoire.ECANCELED, grimoire.ErrorCode(err))
	})

	t.Run("rejects items without a slug", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"name": "Nameless"}]`))
		}))
		defer srv.Close()

		_, err := grimoirehttp.NewClient(srv.URL).FetchKind(context.Background(), grimoire.KindSpell)
		require.Error(t, err)
		assert.Equal(t, grimoire.EINVALID, grimoire.ErrorCode(err))
	})

	t.Run("sends bearer token when configured", func(t *testing.T) {
		t.Parallel()

		var sawAuth atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawAuth.Store(r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		client := grimoirehttp.NewClient(srv.URL, grimoirehttp.WithToken("secret"))
		_, err := client.FetchKind(context.Background(), grimoire.KindSpell)
		require.NoError(t, err)
		assert.Equal(t, "Bearer secret", sawAuth.Load())
	})
}

func TestAuthClient(t *testing.T) {
	t.Parallel()

	t.Run("login saves the returned token", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/login", r.URL.Path)
			_, _ = w.Write([]byte(`{"token": "abc123", "id": "user-1"}`))
		}))
		defer srv.Close()

		dir := t.TempDir()
		tokens := grimoirehttp.NewTokenFile(dir)
		auth := grimoirehttp.NewAuthClient(grimoirehttp.NewClient(srv.URL), tokens)

		tok, err := auth.Login(context.Background(), "archer", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, "abc123", tok.Access)
		assert.Equal(t, "user-1", tok.UserID)

		loaded, err := tokens.Load()
		require.NoError(t, err)
		assert.Equal(t, tok, loaded)
	})

	t.Run("login surfaces remote rejection", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
		}))
		defer srv.Close()

		auth := grimoirehttp.NewAuthClient(grimoirehttp.NewClient(srv.URL), grimoirehttp.NewTokenFile(t.TempDir()))
		_, err := auth.Login(context.Background(), "archer", "wrong")
		require.Error(t, err)
		assert.Equal(t, grimoire.EINVALID, grimoire.ErrorCode(err))
	})

	t.Run("register saves the returned token", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/register", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			_, _ = w.Write([]byte(`{"token": "fresh-token", "id": "user-2"}`))
		}))
		defer srv.Close()

		tokens := grimoirehttp.NewTokenFile(t.TempDir())
		auth := grimoirehttp.NewAuthClient(grimoirehttp.NewClient(srv.URL), tokens)

		tok, err := auth.Register(context.Background(), "newcomer", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, "fresh-token", tok.Access)
		assert.Equal(t, "user-2", tok.UserID)

		loaded, err := tokens.Load()
		require.NoError(t, err)
		assert.Equal(t, tok, loaded)
	})

	t.Run("register rejects empty credentials", func(t *testing.T) {
		t.Parallel()

		auth := grimoirehttp.NewAuthClient(grimoirehttp.NewClient("http://localhost:1"), grimoirehttp.NewTokenFile(t.TempDir()))
		_, err := auth.Register(context.Background(), "newcomer", "")
		require.Error(t, err)
		assert.Equal(t, grimoire.EINVALID, grimoire.ErrorCode(err))
	})

	t.Run("logout clears the token even when the remote fails", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		tokens := grimoirehttp.NewTokenFile(t.TempDir())
		require.NoError(t, tokens.Save(&grimoirehttp.Token{Access: "abc", UserID: "u"}))

		auth := grimoirehttp.NewAuthClient(grimoirehttp.NewClient(srv.URL), tokens)
		err := auth.Logout(context.Background())
		require.Error(t, err)

		_, loadErr := tokens.Load()
		assert.Equal(t, grimoire.ENOTFOUND, grimoire.ErrorCode(loadErr))
	})
}

func TestTokenFile(t *testing.T) {
	t.Parallel()

	t.Run("load without a saved token returns ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		_, err := grimoirehttp.NewTokenFile(t.TempDir()).Load()
		require.Error(t, err)
		assert.Equal(t, grimoire.ENOTFOUND, grimoire.ErrorCode(err))
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		t.Parallel()

		tokens := grimoirehttp.NewTokenFile(t.TempDir())
		require.NoError(t, tokens.Clear())
		require.NoError(t, tokens.Save(&grimoirehttp.Token{Access: "abc"}))
		require.NoError(t, tokens.Clear())
		require.NoError(t, tokens.Clear())
	})
}
