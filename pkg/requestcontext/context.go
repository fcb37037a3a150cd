// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the signer and attached deposit of a call; registries read
// them without importing net/http:
//
//	signer := requestcontext.Signer(ctx)
//	deposit := requestcontext.Deposit(ctx)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithSigner(ctx, "alice.near")
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"soulbound/pkg/domain"
)

type (
	signerKey      struct{}
	depositKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue.
var (
	ContextKeySigner      = signerKey{}
	ContextKeyDeposit     = depositKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Signer returns the authenticated caller, or "" when unauthenticated.
func Signer(ctx context.Context) domain.AccountID {
	if signer, ok := ctx.Value(ContextKeySigner).(domain.AccountID); ok {
		return signer
	}
	return ""
}

func WithSigner(ctx context.Context, signer domain.AccountID) context.Context {
	return context.WithValue(ctx, ContextKeySigner, signer)
}

// Deposit returns the value attached to the call, zero when none.
func Deposit(ctx context.Context) domain.Amount {
	if deposit, ok := ctx.Value(ContextKeyDeposit).(domain.Amount); ok {
		return deposit
	}
	return domain.Amount{}
}

func WithDeposit(ctx context.Context, deposit domain.Amount) context.Context {
	return context.WithValue(ctx, ContextKeyDeposit, deposit)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for workers and callbacks that run outside a request.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
