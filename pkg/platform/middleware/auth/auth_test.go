package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"soulbound/pkg/domain"
	"soulbound/pkg/requestcontext"
)

type stubValidator struct {
	claims *SignerClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*SignerClaims, error) {
	return s.claims, s.err
}

func serve(t *testing.T, v JWTValidator, req *http.Request) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	var seen *http.Request
	h := RequireSigner(v, slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, seen
}

func TestRequireSigner(t *testing.T) {
	ok := stubValidator{claims: &SignerClaims{Account: "alice.near", JTI: "j1"}}

	t.Run("missing header", func(t *testing.T) {
		rr, seen := serve(t, ok, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, seen)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rr, seen := serve(t, stubValidator{err: errors.New("bad")}, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, seen)
	})

	t.Run("malformed subject", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer t")
		rr, _ := serve(t, stubValidator{claims: &SignerClaims{Account: "Not Valid"}}, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("bad deposit header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer t")
		req.Header.Set(HeaderDeposit, "-5")
		rr, _ := serve(t, ok, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("sets signer and deposit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer t")
		req.Header.Set(HeaderDeposit, "150")
		rr, seen := serve(t, ok, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, domain.AccountID("alice.near"), requestcontext.Signer(seen.Context()))
		assert.Equal(t, domain.NewAmount(150), requestcontext.Deposit(seen.Context()))
	})
}
