package resolution_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soulbound/internal/resolution"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/circuit"
	"soulbound/pkg/platform/httputil"
)

func newPeer(t *testing.T, failing *atomic.Bool) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/accounts/{account}/soul", func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if chi.URLParam(r, "account") != "alice.near" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "account has no soul"))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"soul_id": "7", "account": "alice.near"})
	})
	r.Get("/souls/{soulID}/account", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"soul_id": chi.URLParam(r, "soulID"), "account": "alice.near"})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPResolver(t *testing.T) {
	ctx := context.Background()
	var failing atomic.Bool
	srv := newPeer(t, &failing)

	resolver, err := resolution.NewHTTPResolver(srv.URL+"/",
		resolution.WithBreaker(circuit.New("peer", circuit.WithFailureThreshold(2))),
	)
	require.NoError(t, err)

	t.Run("resolves id", func(t *testing.T) {
		id, err := resolver.ResolveID(ctx, "alice.near")
		require.NoError(t, err)
		assert.Equal(t, domain.NewSoulID(7), id)
	})

	t.Run("resolves account", func(t *testing.T) {
		account, err := resolver.ResolveAccount(ctx, domain.NewSoulID(7))
		require.NoError(t, err)
		assert.Equal(t, domain.AccountID("alice.near"), account)
	})

	t.Run("coded refusal keeps its code and the circuit closed", func(t *testing.T) {
		for range 3 {
			_, err := resolver.ResolveID(ctx, "ghost.near")
			assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		}
		_, err := resolver.ResolveID(ctx, "alice.near")
		assert.NoError(t, err)
	})

	t.Run("server failures open the circuit", func(t *testing.T) {
		failing.Store(true)
		for range 2 {
			_, err := resolver.ResolveID(ctx, "alice.near")
			require.Error(t, err)
			assert.False(t, errors.Is(err, resolution.ErrCircuitOpen))
		}

		failing.Store(false)
		_, err := resolver.ResolveID(ctx, "alice.near")
		assert.ErrorIs(t, err, resolution.ErrCircuitOpen, "open circuit fails fast during cooldown")
	})
}

func TestNewHTTPResolverRejectsBadURL(t *testing.T) {
	_, err := resolution.NewHTTPResolver("not a url")
	assert.Error(t, err)
}
