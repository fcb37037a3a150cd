package achievement

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path, signer, deposit string, body any) error
	LastStatus() int
	LastBody() []byte
	ResponseField(field string) (any, error)
	Credited(account string) string
}

const (
	pollInterval = 10 * time.Millisecond
	pollDeadline = 3 * time.Second
)

// RegisterSteps registers achievement lifecycle steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &achievementSteps{tc: tc}

	ctx.Step(`^"([^"]*)" mints achievement "([^"]*)" for owner "([^"]*)" verified by "([^"]*)" with balance (\d+) and deposit (\d+)$`, steps.mint)
	ctx.Step(`^"([^"]*)" mints achievement "([^"]*)" as soul "([^"]*)" for owner "([^"]*)" with balance (\d+) and deposit (\d+)$`, steps.mintAs)
	ctx.Step(`^"([^"]*)" has minted achievement "([^"]*)" for owner "([^"]*)" verified by "([^"]*)" with balance (\d+)$`, steps.hasMinted)
	ctx.Step(`^"([^"]*)" accepts achievement "([^"]*)"$`, steps.accept)
	ctx.Step(`^"([^"]*)" verifies achievement "([^"]*)"$`, steps.verify)
	ctx.Step(`^"([^"]*)" burns achievement "([^"]*)"$`, steps.burn)
	ctx.Step(`^"([^"]*)" replenishes achievement "([^"]*)" with (\d+)$`, steps.replenish)
	ctx.Step(`^I fetch achievement "([^"]*)"$`, steps.fetch)

	ctx.Step(`^the request should commit$`, steps.shouldCommit)
	ctx.Step(`^the request should abort with "([^"]*)"$`, steps.shouldAbortWith)
	ctx.Step(`^"([^"]*)" should have been credited (\d+)$`, steps.shouldHaveBeenCredited)
}

type achievementSteps struct {
	tc    TestContext
	token string
}

func (s *achievementSteps) mint(ctx context.Context, issuerAccount, id, owner, verifier string, balance, deposit int) error {
	issuer, err := s.soulOf(issuerAccount)
	if err != nil {
		return err
	}
	return s.submitMint(issuerAccount, id, issuer, owner, verifier, balance, deposit)
}

func (s *achievementSteps) mintAs(ctx context.Context, account, id, issuer, owner string, balance, deposit int) error {
	return s.submitMint(account, id, issuer, owner, "0", balance, deposit)
}

func (s *achievementSteps) submitMint(signer, id, issuer, owner, verifier string, balance, deposit int) error {
	return s.submit(http.MethodPost, "/achievements", signer, strconv.Itoa(deposit), map[string]string{
		"id":           id,
		"issuer":       issuer,
		"owner":        owner,
		"verifier":     verifier,
		"data_pointer": "ipfs://achievement-" + id,
		"balance":      strconv.Itoa(balance),
	})
}

func (s *achievementSteps) hasMinted(ctx context.Context, issuerAccount, id, owner, verifier string, balance int) error {
	if err := s.mint(ctx, issuerAccount, id, owner, verifier, balance, balance); err != nil {
		return err
	}
	return s.shouldCommit(ctx)
}

func (s *achievementSteps) accept(ctx context.Context, account, id string) error {
	return s.submit(http.MethodPost, "/achievements/"+id+"/accept", account, "", nil)
}

func (s *achievementSteps) verify(ctx context.Context, account, id string) error {
	return s.submit(http.MethodPost, "/achievements/"+id+"/verify", account, "", nil)
}

func (s *achievementSteps) burn(ctx context.Context, account, id string) error {
	return s.submit(http.MethodDelete, "/achievements/"+id, account, "", nil)
}

func (s *achievementSteps) replenish(ctx context.Context, account, id string, amount int) error {
	return s.tc.Do(http.MethodPost, "/achievements/"+id+"/balance", account, strconv.Itoa(amount), nil)
}

func (s *achievementSteps) fetch(ctx context.Context, id string) error {
	return s.tc.Do(http.MethodGet, "/achievements/"+id, "", "", nil)
}

func (s *achievementSteps) shouldCommit(ctx context.Context) error {
	outcome, err := s.await()
	if err != nil {
		return err
	}
	if outcome.Status != "committed" {
		return fmt.Errorf("expected request to commit, got %s (%s: %s)", outcome.Status, outcome.Code, outcome.Message)
	}
	return nil
}

func (s *achievementSteps) shouldAbortWith(ctx context.Context, code string) error {
	outcome, err := s.await()
	if err != nil {
		return err
	}
	if outcome.Status != "aborted" || outcome.Code != code {
		return fmt.Errorf("expected abort with %s, got %s (%s)", code, outcome.Status, outcome.Code)
	}
	return nil
}

func (s *achievementSteps) shouldHaveBeenCredited(ctx context.Context, account string, amount int) error {
	if got := s.tc.Credited(account); got != strconv.Itoa(amount) {
		return fmt.Errorf("expected %s to be credited %d, got %s", account, amount, got)
	}
	return nil
}

// submit sends a two-phase call and remembers the returned token.
func (s *achievementSteps) submit(method, path, signer, deposit string, body any) error {
	s.token = ""
	if err := s.tc.Do(method, path, signer, deposit, body); err != nil {
		return err
	}
	if s.tc.LastStatus() != http.StatusAccepted {
		return nil
	}
	token, err := s.tc.ResponseField("token")
	if err != nil {
		return err
	}
	s.token = fmt.Sprint(token)
	return nil
}

type outcome struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// await polls the request outcome until it leaves pending.
func (s *achievementSteps) await() (outcome, error) {
	if s.token == "" {
		return outcome{}, fmt.Errorf("no request was accepted: %d %s", s.tc.LastStatus(), s.tc.LastBody())
	}
	deadline := time.Now().Add(pollDeadline)
	for {
		if err := s.tc.Do(http.MethodGet, "/requests/"+s.token, "", "", nil); err != nil {
			return outcome{}, err
		}
		if s.tc.LastStatus() != http.StatusOK {
			return outcome{}, fmt.Errorf("outcome lookup failed with %d: %s", s.tc.LastStatus(), s.tc.LastBody())
		}
		var o outcome
		if err := json.Unmarshal(s.tc.LastBody(), &o); err != nil {
			return outcome{}, err
		}
		if o.Status != "pending" {
			return o, nil
		}
		if time.Now().After(deadline) {
			return outcome{}, fmt.Errorf("request %s still pending after %s", s.token, pollDeadline)
		}
		time.Sleep(pollInterval)
	}
}

// soulOf resolves the soul id bound to account, or "0" when it has none.
func (s *achievementSteps) soulOf(account string) (string, error) {
	if err := s.tc.Do(http.MethodGet, "/accounts/"+account+"/soul", "", "", nil); err != nil {
		return "", err
	}
	if s.tc.LastStatus() != http.StatusOK {
		return "0", nil
	}
	id, err := s.tc.ResponseField("soul_id")
	if err != nil {
		return "", err
	}
	return fmt.Sprint(id), nil
}
