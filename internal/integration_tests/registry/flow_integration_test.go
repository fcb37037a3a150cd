//go:build integration

package registry

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	achievementmodels "soulbound/internal/achievement/models"
	"soulbound/internal/achievement/outcome"
	achievementservice "soulbound/internal/achievement/service"
	"soulbound/internal/escrow"
	identitymodels "soulbound/internal/identity/models"
	identityservice "soulbound/internal/identity/service"
	"soulbound/internal/platform/postgres"
	"soulbound/internal/resolution"
	"soulbound/internal/statestore"
	"soulbound/pkg/domain"
	"soulbound/pkg/requestcontext"
	"soulbound/pkg/testutil/containers"
)

const operator domain.AccountID = "operator.soulbound"

// FlowSuite runs a full mint, accept, verify round against a real backend and
// reopens the state from storage afterwards.
type FlowSuite struct {
	suite.Suite
	openBlob func(t *testing.T) statestore.Blob
	outcomes func(t *testing.T) achievementservice.OutcomeStore

	blob         statestore.Blob
	identity     *identityservice.Service
	achievements *achievementservice.Service
	dispatcher   *resolution.Dispatcher
	ledger       *escrow.Ledger
	done         chan error
}

func TestRedisFlowSuite(t *testing.T) {
	client := containers.StartRedis(t)
	suite.Run(t, &FlowSuite{
		openBlob: func(t *testing.T) statestore.Blob {
			require.NoError(t, client.FlushAll(context.Background()).Err())
			return statestore.NewRedisBlob(client)
		},
		outcomes: func(*testing.T) achievementservice.OutcomeStore {
			return outcome.NewRedisStore(client, time.Hour)
		},
	})
}

func TestPostgresFlowSuite(t *testing.T) {
	dsn := containers.StartPostgres(t)
	suite.Run(t, &FlowSuite{
		openBlob: func(t *testing.T) statestore.Blob {
			ctx := context.Background()
			pool, err := postgres.NewPool(ctx, dsn)
			require.NoError(t, err)
			t.Cleanup(pool.Close)
			blob := statestore.NewPostgresBlob(pool)
			require.NoError(t, blob.Migrate(ctx))
			_, err = pool.Exec(ctx, "TRUNCATE state_blobs")
			require.NoError(t, err)
			return blob
		},
		outcomes: func(*testing.T) achievementservice.OutcomeStore {
			return outcome.NewInMemoryStore(time.Hour)
		},
	})
}

func (s *FlowSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.blob = s.openBlob(s.T())

	s.identity = identityservice.New(
		statestore.NewRunner[identitymodels.State](s.blob, "identity", identitymodels.Codec{}),
		operator,
		identityservice.WithLogger(log),
	)
	s.dispatcher = resolution.NewDispatcher(s.identity, resolution.WithLogger(log))
	s.ledger = escrow.NewLedger()
	s.achievements = achievementservice.New(
		statestore.NewRunner[achievementmodels.State](s.blob, "achievements", achievementmodels.Codec{}),
		s.dispatcher, s.ledger,
		achievementservice.WithLogger(log),
		achievementservice.WithOutcomeStore(s.outcomes(s.T())),
	)
	s.done = make(chan error, 1)
	go func() { s.done <- s.dispatcher.Run(context.Background(), s.achievements) }()
}

func (s *FlowSuite) TearDownTest() {
	s.dispatcher.Close()
	s.Require().NoError(<-s.done)
}

func (s *FlowSuite) as(account domain.AccountID) context.Context {
	return requestcontext.WithSigner(context.Background(), account)
}

func (s *FlowSuite) paying(account domain.AccountID, deposit uint64) context.Context {
	return requestcontext.WithDeposit(s.as(account), domain.NewAmount(deposit))
}

func (s *FlowSuite) holdSoul(account domain.AccountID, id uint64) {
	s.Require().NoError(s.identity.Mint(s.as(operator), domain.NewSoulID(id), account))
	_, err := s.identity.Claim(s.as(account),
		identityservice.HashProof("a-"+string(account)),
		identityservice.HashProof("b-"+string(account)),
	)
	s.Require().NoError(err)
}

func (s *FlowSuite) await(token resolution.Token) achievementmodels.Outcome {
	var out achievementmodels.Outcome
	s.Require().Eventually(func() bool {
		o, err := s.achievements.RequestOutcome(context.Background(), token)
		if err != nil {
			return false
		}
		out = o
		return o.Status != achievementmodels.StatusPending
	}, 5*time.Second, 20*time.Millisecond)
	return out
}

func (s *FlowSuite) TestMintAcceptVerify() {
	s.holdSoul("alice.near", 1)
	s.holdSoul("bob.near", 2)
	s.holdSoul("carol.near", 3)
	id := domain.NewAchievementID(10)

	token, err := s.achievements.Mint(s.paying("alice.near", 150), achievementmodels.Achievement{
		ID:          id,
		Issuer:      domain.NewSoulID(1),
		Owner:       domain.NewSoulID(2),
		Verifier:    domain.NewSoulID(3),
		DataPointer: "ipfs://diploma",
		Balance:     domain.NewAmount(100),
	})
	s.Require().NoError(err)
	s.Require().Equal(achievementmodels.StatusCommitted, s.await(token).Status)
	s.Equal("50", s.ledger.Balance("alice.near").String())

	token, err = s.achievements.AcceptAchievement(s.as("bob.near"), id)
	s.Require().NoError(err)
	s.Require().Equal(achievementmodels.StatusCommitted, s.await(token).Status)

	token, err = s.achievements.VerifyAchievement(s.as("carol.near"), id)
	s.Require().NoError(err)
	s.Require().Equal(achievementmodels.StatusCommitted, s.await(token).Status)
	s.Equal("100", s.ledger.Balance("carol.near").String())

	reopened := statestore.NewRunner[achievementmodels.State](s.blob, "achievements", achievementmodels.Codec{})
	err = reopened.View(context.Background(), func(_ context.Context, st *achievementmodels.State) error {
		a, err := st.Get(id)
		s.Require().NoError(err)
		s.True(a.IsAccepted)
		s.True(a.IsVerified)
		s.True(a.Balance.IsZero())
		s.Empty(st.Pending)
		return nil
	})
	s.Require().NoError(err)
}

func (s *FlowSuite) TestAbortLeavesStorageUntouched() {
	s.holdSoul("alice.near", 1)
	s.holdSoul("mallory.near", 9)

	token, err := s.achievements.Mint(s.paying("mallory.near", 100), achievementmodels.Achievement{
		ID:          domain.NewAchievementID(11),
		Issuer:      domain.NewSoulID(1),
		DataPointer: "ipfs://forged",
		Balance:     domain.NewAmount(100),
	})
	s.Require().NoError(err)
	out := s.await(token)
	s.Equal(achievementmodels.StatusAborted, out.Status)
	s.Equal("identity_mismatch", out.Code)
	s.Equal("100", s.ledger.Balance("mallory.near").String())

	_, err = s.achievements.GetAchievement(context.Background(), domain.NewAchievementID(11))
	s.Require().Error(err)
}
