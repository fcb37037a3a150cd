package testutil

import (
	"context"
	"net/http"

	"soulbound/pkg/domain"
	authmw "soulbound/pkg/platform/middleware/auth"
	"soulbound/pkg/requestcontext"
)

// WithSigner adds a signer account to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithSigner(req *http.Request, account string) *http.Request {
	return req.WithContext(requestcontext.WithSigner(req.Context(), domain.AccountID(account)))
}

// WithDeposit attaches a deposit to the request context.
// Unparseable amounts are silently ignored.
func WithDeposit(req *http.Request, amount string) *http.Request {
	deposit, err := domain.ParseAmount(amount)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithDeposit(req.Context(), deposit))
}

// WithAuth sets both the signer and the attached deposit.
func WithAuth(req *http.Request, account, deposit string) *http.Request {
	req = WithSigner(req, account)
	if deposit != "" {
		req = WithDeposit(req, deposit)
	}
	return req
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}

// StaticValidator accepts any bearer token and treats it as the signer
// account. Handler tests mount RequireSigner with it.
type StaticValidator struct{}

func (StaticValidator) ValidateToken(token string) (*authmw.SignerClaims, error) {
	return &authmw.SignerClaims{Account: token}, nil
}
