// Package resolution carries identity lookups between the achievement
// registry and the identity registry as request/result messages.
//
// A caller persists its intent, submits one Request and returns. The Result
// arrives later through Handler.HandleResolution in a separate invocation.
// Every submitted request ends in exactly one Result: a resolved value or a
// Fault.
package resolution

import (
	"context"
	"time"

	"github.com/google/uuid"

	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

// Token identifies one logical request.
type Token string

func NewToken() Token { return Token(uuid.NewString()) }

// ParseToken accepts the canonical uuid form.
func ParseToken(s string) (Token, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid request token")
	}
	return Token(id.String()), nil
}

func (t Token) String() string { return string(t) }

// Kind selects the lookup direction.
type Kind string

const (
	// KindIdentifier resolves an account to its soul id.
	KindIdentifier Kind = "identifier"
	// KindAccount resolves a soul id to its account.
	KindAccount Kind = "account"
)

type Request struct {
	Token    Token            `json:"token"`
	Kind     Kind             `json:"kind"`
	Account  domain.AccountID `json:"account,omitempty"`
	SoulID   domain.SoulID    `json:"soul_id"`
	IssuedAt time.Time        `json:"issued_at"`
}

// IdentifierRequest asks for the soul id bound to account.
func IdentifierRequest(token Token, account domain.AccountID, now time.Time) Request {
	return Request{Token: token, Kind: KindIdentifier, Account: account, IssuedAt: now}
}

// AccountRequest asks for the account bound to id.
func AccountRequest(token Token, id domain.SoulID, now time.Time) Request {
	return Request{Token: token, Kind: KindAccount, SoulID: id, IssuedAt: now}
}

// Result is the terminal answer to a Request. A non-empty Fault means the
// lookup did not produce a value.
type Result struct {
	Token   Token            `json:"token"`
	Kind    Kind             `json:"kind"`
	SoulID  domain.SoulID    `json:"soul_id"`
	Account domain.AccountID `json:"account,omitempty"`
	Fault   string           `json:"fault,omitempty"`
}

func (r Result) Failed() bool { return r.Fault != "" }

// FaultResult builds the failed answer for req.
func FaultResult(req Request, reason string) Result {
	if reason == "" {
		reason = "resolution failed"
	}
	return Result{Token: req.Token, Kind: req.Kind, Fault: reason}
}

// Resolver performs the lookups. The identity registry satisfies it directly;
// HTTPResolver reaches a remote one.
type Resolver interface {
	ResolveID(ctx context.Context, account domain.AccountID) (domain.SoulID, error)
	ResolveAccount(ctx context.Context, id domain.SoulID) (domain.AccountID, error)
}

// Handler receives results. It is the continuation of the invocation that
// submitted the request.
type Handler interface {
	HandleResolution(ctx context.Context, result Result) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, result Result) error

func (f HandlerFunc) HandleResolution(ctx context.Context, result Result) error {
	return f(ctx, result)
}

// Transport moves requests toward a Resolver. Enqueue must not block on the
// lookup itself; an error means the request was not accepted.
type Transport interface {
	Enqueue(ctx context.Context, req Request) error
}

// Resolve runs req against resolver and folds any error into a Fault.
func Resolve(ctx context.Context, resolver Resolver, req Request) Result {
	res := Result{Token: req.Token, Kind: req.Kind}
	switch req.Kind {
	case KindIdentifier:
		id, err := resolver.ResolveID(ctx, req.Account)
		if err != nil {
			return FaultResult(req, faultReason(err))
		}
		res.SoulID = id
		res.Account = req.Account
	case KindAccount:
		account, err := resolver.ResolveAccount(ctx, req.SoulID)
		if err != nil {
			return FaultResult(req, faultReason(err))
		}
		res.SoulID = req.SoulID
		res.Account = account
	default:
		return FaultResult(req, "unknown request kind "+string(req.Kind))
	}
	return res
}

func faultReason(err error) string {
	if de, ok := dErrors.As(err); ok {
		return string(de.Code) + ": " + de.Message
	}
	return err.Error()
}
