package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	achievementmodels "soulbound/internal/achievement/models"
	achievementservice "soulbound/internal/achievement/service"
	"soulbound/internal/escrow"
	httpapi "soulbound/internal/http"
	identitymodels "soulbound/internal/identity/models"
	identityservice "soulbound/internal/identity/service"
	jwttoken "soulbound/internal/jwt_token"
	ratelimit "soulbound/internal/ratelimit/middleware"
	ratelimitmodels "soulbound/internal/ratelimit/models"
	"soulbound/internal/ratelimit/store/bucket"
	"soulbound/internal/resolution"
	"soulbound/internal/statestore"
	"soulbound/pkg/domain"
	auditpublisher "soulbound/pkg/platform/audit/publisher"
	auditmemory "soulbound/pkg/platform/audit/store/memory"
	adminmw "soulbound/pkg/platform/middleware/admin"
	authmw "soulbound/pkg/platform/middleware/auth"
)

const (
	// Operator is the account allowed to mint souls.
	Operator   = "operator.soulbound"
	AdminToken = "e2e-admin-token"

	signingKey  = "e2e-signing-key"
	readBudget  = 1000
	tokenExpiry = time.Hour
)

// TestContext runs the whole registry in process behind an httptest server
// and remembers the last response for assertions.
type TestContext struct {
	server     *httptest.Server
	dispatcher *resolution.Dispatcher
	runDone    chan error
	jwt        *jwttoken.JWTService
	ledger     *escrow.Ledger
	client     *http.Client

	lastStatus int
	lastBody   []byte
	lastHeader http.Header
}

func NewTestContext() *TestContext {
	return &TestContext{client: &http.Client{Timeout: 5 * time.Second}}
}

// Start boots a fresh registry. A writeBudget of zero disables rate limiting.
func (tc *TestContext) Start(writeBudget int) error {
	tc.Stop()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()

	blob := statestore.NewMemoryBlob()
	identityState := statestore.NewRunner[identitymodels.State](blob, "identity", identitymodels.Codec{})
	achievementState := statestore.NewRunner[achievementmodels.State](blob, "achievements", achievementmodels.Codec{})
	auditTrail := auditpublisher.NewPublisher(auditmemory.NewInMemoryStore())

	identity := identityservice.New(identityState, domain.AccountID(Operator),
		identityservice.WithLogger(log),
		identityservice.WithAuditor(auditTrail),
	)
	tc.dispatcher = resolution.NewDispatcher(identity, resolution.WithLogger(log))
	tc.ledger = escrow.NewLedger()
	achievements := achievementservice.New(achievementState, tc.dispatcher, tc.ledger,
		achievementservice.WithLogger(log),
		achievementservice.WithAuditor(auditTrail),
	)
	tc.runDone = make(chan error, 1)
	go func() { tc.runDone <- tc.dispatcher.Run(context.Background(), achievements) }()

	limits := map[ratelimitmodels.Class]ratelimitmodels.Limit{
		ratelimitmodels.ClassRead:  {RequestsPerWindow: readBudget, Window: time.Minute},
		ratelimitmodels.ClassWrite: {RequestsPerWindow: writeBudget, Window: time.Minute},
	}
	limiter := ratelimit.New(bucket.New(), limits, log, ratelimit.WithDisabled(writeBudget == 0))

	tc.jwt = jwttoken.NewJWTService(signingKey, "soulbound", "soulbound")
	tc.server = httptest.NewServer(httpapi.NewRouter(httpapi.Config{
		Logger:       log,
		Registry:     reg,
		Validator:    jwttoken.NewJWTServiceAdapter(tc.jwt),
		Identity:     identity,
		Achievements: achievements,
		AuditTrail:   auditTrail,
		AdminToken:   AdminToken,
		RateLimiter:  limiter,
	}))
	return nil
}

// Stop shuts the server down and drains the dispatcher.
func (tc *TestContext) Stop() {
	if tc.server == nil {
		return
	}
	tc.server.Close()
	tc.dispatcher.Close()
	<-tc.runDone
	tc.server = nil
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastHeader = nil
}

// Do sends a request. A non-empty signer is sent as a bearer token; deposit
// is attached when non-empty.
func (tc *TestContext) Do(method, path, signer, deposit string, body any) error {
	if tc.server == nil {
		return fmt.Errorf("registry not started")
	}
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.server.URL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if signer != "" {
		token, err := tc.jwt.GenerateSignerToken(signer, tokenExpiry)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if deposit != "" {
		req.Header.Set(authmw.HeaderDeposit, deposit)
	}
	return tc.send(req)
}

// DoAdmin sends an operator request with the given admin token.
func (tc *TestContext) DoAdmin(path, token string) error {
	req, err := http.NewRequest(http.MethodGet, tc.server.URL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set(adminmw.HeaderAdminToken, token)
	return tc.send(req)
}

func (tc *TestContext) send(req *http.Request) error {
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.lastStatus = resp.StatusCode
	tc.lastBody = body
	tc.lastHeader = resp.Header
	return nil
}

func (tc *TestContext) LastStatus() int { return tc.lastStatus }

func (tc *TestContext) LastBody() []byte { return tc.lastBody }

func (tc *TestContext) LastHeader(name string) string { return tc.lastHeader.Get(name) }

// ResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) ResponseField(field string) (any, error) {
	var doc map[string]any
	if err := json.Unmarshal(tc.lastBody, &doc); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	v, ok := doc[field]
	if !ok {
		return nil, fmt.Errorf("field %q missing from %s", field, tc.lastBody)
	}
	return v, nil
}

// Credited returns the total paid out to account.
func (tc *TestContext) Credited(account string) string {
	return tc.ledger.Balance(domain.AccountID(account)).String()
}
