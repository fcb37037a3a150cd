package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"soulbound/internal/achievement/handler/mocks"
	"soulbound/internal/achievement/models"
	"soulbound/internal/resolution"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	authmw "soulbound/pkg/platform/middleware/auth"
	request "soulbound/pkg/platform/middleware/request"
	"soulbound/pkg/requestcontext"
	"soulbound/pkg/testutil"
)

const token = resolution.Token("0b6f0d58-7f44-4a51-9d0e-2f5c7f0c9a11")

type AchievementHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestAchievementHandlerSuite(t *testing.T) {
	suite.Run(t, new(AchievementHandlerSuite))
}

func (s *AchievementHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	s.router.Use(request.RequestID)
	New(s.service, testutil.StaticValidator{}, logger).Register(s.router)
}

func (s *AchievementHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AchievementHandlerSuite) signed(req *http.Request, account string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+account)
	return req
}

func (s *AchievementHandlerSuite) TestMint() {
	s.Run("accepted with token and deposit in context", func() {
		s.service.EXPECT().Mint(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, a models.Achievement) (resolution.Token, error) {
				s.Equal(domain.NewAchievementID(7), a.ID)
				s.Equal(domain.NewSoulID(1), a.Issuer)
				s.Equal(domain.NewAmount(100), a.Balance)
				s.Equal(domain.NewAmount(150), requestcontext.Deposit(ctx))
				s.Equal(domain.AccountID("issuer.near"), requestcontext.Signer(ctx))
				return token, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/achievements", map[string]string{
			"id":           "7",
			"type":         "4",
			"issuer":       "1",
			"verifier":     "3",
			"data_pointer": "ipfs://diploma",
			"balance":      "100",
		})
		req.Header.Set(authmw.HeaderDeposit, "150")
		rr := testutil.DoRequest(s.router, s.signed(req, "issuer.near"))

		testutil.AssertAccepted(s.T(), rr, string(token))
	})

	s.Run("missing issuer", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/achievements", map[string]string{
			"id":           "7",
			"data_pointer": "ipfs://diploma",
		})
		rr := testutil.DoRequest(s.router, s.signed(req, "issuer.near"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("oversized id", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/achievements", map[string]string{
			"id":           "340282366920938463463374607431768211456",
			"issuer":       "1",
			"data_pointer": "ipfs://diploma",
		})
		rr := testutil.DoRequest(s.router, s.signed(req, "issuer.near"))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("insufficient deposit", func() {
		s.service.EXPECT().Mint(gomock.Any(), gomock.Any()).
			Return(resolution.Token(""), dErrors.New(dErrors.CodeInsufficientDeposit, "attached deposit is below the achievement balance"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/achievements", map[string]string{
			"id":           "7",
			"issuer":       "1",
			"data_pointer": "ipfs://diploma",
			"balance":      "100",
		})
		rr := testutil.DoRequest(s.router, s.signed(req, "issuer.near"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "insufficient_deposit")
	})

	s.Run("unauthenticated", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/achievements", map[string]string{"id": "7"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})
}

func (s *AchievementHandlerSuite) TestTwoPhaseMutations() {
	id := domain.NewAchievementID(7)

	s.Run("burn", func() {
		s.service.EXPECT().Burn(gomock.Any(), id).Return(token, nil)
		rr := testutil.DoRequest(s.router, s.signed(testutil.NewRequest(s.T(), http.MethodDelete, "/achievements/7"), "issuer.near"))
		testutil.AssertAccepted(s.T(), rr, string(token))
	})

	s.Run("burn with escrow held", func() {
		s.service.EXPECT().Burn(gomock.Any(), id).
			Return(resolution.Token(""), dErrors.New(dErrors.CodeEscrowHeld, "achievement still holds escrow"))
		rr := testutil.DoRequest(s.router, s.signed(testutil.NewRequest(s.T(), http.MethodDelete, "/achievements/7"), "issuer.near"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "escrow_held")
	})

	s.Run("update owner", func() {
		s.service.EXPECT().UpdateOwner(gomock.Any(), id, domain.AccountID("owner.near")).Return(token, nil)
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/achievements/7/owner", map[string]string{"account": "owner.near"})
		rr := testutil.DoRequest(s.router, s.signed(req, "issuer.near"))
		testutil.AssertAccepted(s.T(), rr, string(token))
	})

	s.Run("owner already set", func() {
		s.service.EXPECT().UpdateOwner(gomock.Any(), id, domain.AccountID("owner.near")).
			Return(resolution.Token(""), dErrors.New(dErrors.CodeOwnerAlreadySet, "achievement owner is already set"))
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/achievements/7/owner", map[string]string{"account": "owner.near"})
		rr := testutil.DoRequest(s.router, s.signed(req, "issuer.near"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "owner_already_set")
	})

	s.Run("accept", func() {
		s.service.EXPECT().AcceptAchievement(gomock.Any(), id).Return(token, nil)
		rr := testutil.DoRequest(s.router, s.signed(testutil.NewRequest(s.T(), http.MethodPost, "/achievements/7/accept"), "owner.near"))
		testutil.AssertAccepted(s.T(), rr, string(token))
	})

	s.Run("verify", func() {
		s.service.EXPECT().VerifyAchievement(gomock.Any(), id).Return(token, nil)
		rr := testutil.DoRequest(s.router, s.signed(testutil.NewRequest(s.T(), http.MethodPost, "/achievements/7/verify"), "verifier.near"))
		testutil.AssertAccepted(s.T(), rr, string(token))
	})

	s.Run("bad id", func() {
		rr := testutil.DoRequest(s.router, s.signed(testutil.NewRequest(s.T(), http.MethodPost, "/achievements/seven/verify"), "verifier.near"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *AchievementHandlerSuite) TestReplenish() {
	s.service.EXPECT().ReplenishBalance(gomock.Any(), domain.NewAchievementID(7)).Return(domain.NewAmount(125), nil)

	req := testutil.NewRequest(s.T(), http.MethodPost, "/achievements/7/balance")
	req.Header.Set(authmw.HeaderDeposit, "25")
	rr := testutil.DoRequest(s.router, s.signed(req, "anyone.near"))

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "balance", "125")
}

func (s *AchievementHandlerSuite) TestReads() {
	a := models.Achievement{
		ID:          domain.NewAchievementID(7),
		Issuer:      domain.NewSoulID(1),
		DataPointer: "ipfs://diploma",
		Balance:     domain.NewAmount(100),
	}

	s.Run("get", func() {
		s.service.EXPECT().GetAchievement(gomock.Any(), a.ID).Return(a, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/achievements/7"))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "data_pointer", "ipfs://diploma")
		testutil.AssertJSONContains(s.T(), rr, "balance", "100")
	})

	s.Run("get missing", func() {
		s.service.EXPECT().GetAchievement(gomock.Any(), domain.NewAchievementID(8)).
			Return(models.Achievement{}, dErrors.New(dErrors.CodeNotFound, "achievement not found"))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/achievements/8"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("by issuer", func() {
		s.service.EXPECT().ListByIssuer(gomock.Any(), domain.NewSoulID(1)).Return([]models.Achievement{a}, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/issuers/1/achievements"))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[ListResponse](s.T(), rr)
		s.Require().Len(resp.Achievements, 1)
		s.Equal(a.ID, resp.Achievements[0].ID)
	})

	s.Run("by owner returns an empty list", func() {
		s.service.EXPECT().ListByOwner(gomock.Any(), domain.NewSoulID(2)).Return(nil, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/owners/2/achievements"))
		testutil.AssertStatusOK(s.T(), rr)
		s.JSONEq(`{"achievements":[]}`, rr.Body.String())
	})

	s.Run("request outcome", func() {
		s.service.EXPECT().RequestOutcome(gomock.Any(), token).Return(models.Outcome{
			Token:  token,
			Op:     models.OpVerify,
			Status: models.StatusAborted,
			Code:   string(dErrors.CodeIdentityMismatch),
		}, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/requests/"+string(token)))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "status", "aborted")
		testutil.AssertJSONContains(s.T(), rr, "code", "identity_mismatch")
	})

	s.Run("malformed token", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/requests/not-a-token"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}
