package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"soulbound/pkg/platform/audit"
	"soulbound/pkg/platform/audit/publisher"
	"soulbound/pkg/platform/audit/store/memory"
	adminmw "soulbound/pkg/platform/middleware/admin"
	"soulbound/pkg/testutil"
)

const adminToken = "let-me-in"

type AdminHandlerSuite struct {
	suite.Suite
	publisher *publisher.Publisher
	healthy   error
	router    chi.Router
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}

func (s *AdminHandlerSuite) SetupTest() {
	s.publisher = publisher.NewPublisher(memory.NewInMemoryStore())
	s.healthy = nil
	checks := map[string]HealthCheck{
		"redis": func(context.Context) error { return s.healthy },
	}
	s.router = chi.NewRouter()
	New(s.publisher, checks, adminToken, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *AdminHandlerSuite) admin(req *http.Request) *http.Request {
	req.Header.Set(adminmw.HeaderAdminToken, adminToken)
	return req
}

func (s *AdminHandlerSuite) TestAuditTrail() {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.Require().NoError(s.publisher.Emit(ctx, audit.Event{
		Subject: "alice.near", Action: string(audit.EventSoulClaimed), Resource: "7", Timestamp: base.Add(time.Minute),
		ClientIP: "203.0.113.7", UserAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	}))
	s.Require().NoError(s.publisher.Emit(ctx, audit.Event{
		Subject: "alice.near", Action: string(audit.EventRequestAborted), Reason: "mint: identity_mismatch", Timestamp: base,
	}))

	s.Run("events are ordered by time", func() {
		rr := testutil.DoRequest(s.router, s.admin(testutil.NewRequest(s.T(), http.MethodGet, "/admin/audit/alice.near")))
		testutil.AssertStatusOK(s.T(), rr)

		resp := testutil.UnmarshalResponse[AuditTrailResponse](s.T(), rr)
		s.Equal(2, resp.Total)
		s.Equal(string(audit.EventRequestAborted), resp.Events[0].Action)
		s.Equal(string(audit.CategorySecurity), resp.Events[0].Category)
		s.Equal(string(audit.EventSoulClaimed), resp.Events[1].Action)

		s.Empty(resp.Events[0].Device, "no user agent recorded")
		s.Equal("203.0.113.7", resp.Events[1].ClientIP)
		s.Contains(resp.Events[1].Device, "Firefox")
	})

	s.Run("missing token", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/admin/audit/alice.near"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("invalid account", func() {
		rr := testutil.DoRequest(s.router, s.admin(testutil.NewRequest(s.T(), http.MethodGet, "/admin/audit/A")))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *AdminHandlerSuite) TestHealth() {
	rr := testutil.DoRequest(s.router, s.admin(testutil.NewRequest(s.T(), http.MethodGet, "/admin/health")))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "status", "ok")

	s.healthy = errors.New("dial tcp: connection refused")
	rr = testutil.DoRequest(s.router, s.admin(testutil.NewRequest(s.T(), http.MethodGet, "/admin/health")))
	testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
	testutil.AssertJSONContains(s.T(), rr, "status", "degraded")
}
