package resolution_test

//go:generate mockgen -source=resolution.go -destination=mocks/mocks.go -package=mocks Resolver,Handler,Transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"soulbound/internal/resolution"
	"soulbound/internal/resolution/mocks"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

func TestParseToken(t *testing.T) {
	token := resolution.NewToken()
	parsed, err := resolution.ParseToken(token.String())
	require.NoError(t, err)
	assert.Equal(t, token, parsed)

	_, err = resolution.ParseToken("not-a-token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("identifier lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mocks.NewMockResolver(ctrl)
		resolver.EXPECT().ResolveID(gomock.Any(), domain.AccountID("alice.near")).Return(domain.NewSoulID(7), nil)

		req := resolution.IdentifierRequest("tok-1", "alice.near", now)
		res := resolution.Resolve(ctx, resolver, req)

		assert.False(t, res.Failed())
		assert.Equal(t, resolution.Token("tok-1"), res.Token)
		assert.Equal(t, resolution.KindIdentifier, res.Kind)
		assert.Equal(t, domain.NewSoulID(7), res.SoulID)
		assert.Equal(t, domain.AccountID("alice.near"), res.Account)
	})

	t.Run("account lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mocks.NewMockResolver(ctrl)
		resolver.EXPECT().ResolveAccount(gomock.Any(), domain.NewSoulID(3)).Return(domain.AccountID("bob.near"), nil)

		res := resolution.Resolve(ctx, resolver, resolution.AccountRequest("tok-2", domain.NewSoulID(3), now))
		assert.False(t, res.Failed())
		assert.Equal(t, domain.AccountID("bob.near"), res.Account)
	})

	t.Run("resolver error becomes a fault", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mocks.NewMockResolver(ctrl)
		resolver.EXPECT().ResolveID(gomock.Any(), gomock.Any()).
			Return(domain.SoulID{}, dErrors.New(dErrors.CodeNotFound, "account has no soul"))

		res := resolution.Resolve(ctx, resolver, resolution.IdentifierRequest("tok-3", "ghost.near", now))
		assert.True(t, res.Failed())
		assert.Contains(t, res.Fault, "not_found")
		assert.True(t, res.SoulID.IsZero())
	})

	t.Run("uncoded error keeps its text", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mocks.NewMockResolver(ctrl)
		resolver.EXPECT().ResolveAccount(gomock.Any(), gomock.Any()).Return(domain.AccountID(""), errors.New("boom"))

		res := resolution.Resolve(ctx, resolver, resolution.AccountRequest("tok-4", domain.NewSoulID(1), now))
		assert.Equal(t, "boom", res.Fault)
	})

	t.Run("unknown kind", func(t *testing.T) {
		res := resolution.Resolve(ctx, nil, resolution.Request{Token: "tok-5", Kind: "other"})
		assert.True(t, res.Failed())
	})
}

func TestClientDeliversFaultOnRefusal(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	handler := mocks.NewMockHandler(ctrl)

	req := resolution.IdentifierRequest(resolution.NewToken(), "alice.near", time.Now())
	transport.EXPECT().Enqueue(gomock.Any(), req).Return(errors.New("queue full"))
	handler.EXPECT().HandleResolution(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, res resolution.Result) error {
			assert.Equal(t, req.Token, res.Token)
			assert.True(t, res.Failed())
			assert.Contains(t, res.Fault, "queue full")
			return nil
		})

	resolution.NewClient(transport, handler).Submit(context.Background(), req)
}

func TestClientAcceptedRequestDoesNotCallHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	handler := mocks.NewMockHandler(ctrl)

	req := resolution.IdentifierRequest(resolution.NewToken(), "alice.near", time.Now())
	transport.EXPECT().Enqueue(gomock.Any(), req).Return(nil)

	resolution.NewClient(transport, handler).Submit(context.Background(), req)
}
