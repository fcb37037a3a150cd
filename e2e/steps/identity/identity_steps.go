package identity

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path, signer, deposit string, body any) error
	LastStatus() int
	LastBody() []byte
}

// Operator must match the operator account the registry was started with.
var Operator = "operator.soulbound"

// RegisterSteps registers soul lifecycle steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &identitySteps{tc: tc}

	ctx.Step(`^the operator mints soul "([^"]*)" for "([^"]*)"$`, steps.operatorMints)
	ctx.Step(`^"([^"]*)" mints soul "([^"]*)" for "([^"]*)"$`, steps.accountMints)
	ctx.Step(`^"([^"]*)" claims a soul with proofs "([^"]*)" and "([^"]*)"$`, steps.claim)
	ctx.Step(`^"([^"]*)" holds soul "([^"]*)"$`, steps.holdsSoul)
	ctx.Step(`^"([^"]*)" burns their soul$`, steps.burn)
	ctx.Step(`^I look up the soul of "([^"]*)"$`, steps.lookUpSoul)
	ctx.Step(`^I look up the account of soul "([^"]*)"$`, steps.lookUpAccount)
	ctx.Step(`^I check whether "([^"]*)" has a soul$`, steps.hasSoul)
}

type identitySteps struct {
	tc TestContext
}

func (s *identitySteps) operatorMints(ctx context.Context, soulID, account string) error {
	return s.accountMints(ctx, Operator, soulID, account)
}

func (s *identitySteps) accountMints(ctx context.Context, signer, soulID, account string) error {
	return s.tc.Do(http.MethodPost, "/souls", signer, "", map[string]string{
		"soul_id": soulID,
		"account": account,
	})
}

func (s *identitySteps) claim(ctx context.Context, account, proofA, proofB string) error {
	return s.tc.Do(http.MethodPost, "/souls/claim", account, "", map[string]string{
		"proof_a": proofA,
		"proof_b": proofB,
	})
}

func (s *identitySteps) holdsSoul(ctx context.Context, account, soulID string) error {
	if err := s.operatorMints(ctx, soulID, account); err != nil {
		return err
	}
	if err := s.expect(http.StatusCreated); err != nil {
		return err
	}
	if err := s.claim(ctx, account, "proof-a-"+account, "proof-b-"+account); err != nil {
		return err
	}
	return s.expect(http.StatusOK)
}

func (s *identitySteps) burn(ctx context.Context, account string) error {
	return s.tc.Do(http.MethodDelete, "/souls/me", account, "", nil)
}

func (s *identitySteps) lookUpSoul(ctx context.Context, account string) error {
	return s.tc.Do(http.MethodGet, "/accounts/"+account+"/soul", "", "", nil)
}

func (s *identitySteps) lookUpAccount(ctx context.Context, soulID string) error {
	return s.tc.Do(http.MethodGet, "/souls/"+soulID+"/account", "", "", nil)
}

func (s *identitySteps) hasSoul(ctx context.Context, account string) error {
	return s.tc.Do(http.MethodGet, "/accounts/"+account+"/has-soul", "", "", nil)
}

func (s *identitySteps) expect(status int) error {
	if got := s.tc.LastStatus(); got != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, got, s.tc.LastBody())
	}
	return nil
}
