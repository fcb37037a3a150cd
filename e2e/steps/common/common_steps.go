package common

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Start(writeBudget int) error
	DoAdmin(path, token string) error
	LastStatus() int
	LastBody() []byte
	ResponseField(field string) (any, error)
}

// AdminToken must match the token the registry was started with.
var AdminToken = "e2e-admin-token"

// RegisterSteps registers background, admin and generic assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the registry is running$`, steps.registryIsRunning)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response status should not be (\d+)$`, steps.statusShouldNotBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be (true|false)$`, steps.fieldShouldBeBool)
	ctx.Step(`^the error code should be "([^"]*)"$`, steps.errorCodeShouldBe)

	ctx.Step(`^the admin requests the audit trail of "([^"]*)"$`, steps.adminRequestsAuditTrail)
	ctx.Step(`^the audit trail of "([^"]*)" is requested with token "([^"]*)"$`, steps.auditTrailWithToken)
	ctx.Step(`^the audit trail should contain "([^"]*)"$`, steps.auditTrailShouldContain)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) registryIsRunning(ctx context.Context) error {
	return s.tc.Start(0)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, expected int) error {
	if got := s.tc.LastStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, got, s.tc.LastBody())
	}
	return nil
}

func (s *commonSteps) statusShouldNotBe(ctx context.Context, unexpected int) error {
	if got := s.tc.LastStatus(); got == unexpected {
		return fmt.Errorf("unexpected status %d: %s", got, s.tc.LastBody())
	}
	return nil
}

func (s *commonSteps) fieldShouldBe(ctx context.Context, field, expected string) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != expected {
		return fmt.Errorf("expected %s=%q, got %q", field, expected, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldBeBool(ctx context.Context, field, expected string) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	want, _ := strconv.ParseBool(expected)
	got, ok := v.(bool)
	if !ok || got != want {
		return fmt.Errorf("expected %s=%s, got %v", field, expected, v)
	}
	return nil
}

func (s *commonSteps) errorCodeShouldBe(ctx context.Context, code string) error {
	return s.fieldShouldBe(ctx, "error", code)
}

func (s *commonSteps) adminRequestsAuditTrail(ctx context.Context, account string) error {
	return s.tc.DoAdmin("/admin/audit/"+account, AdminToken)
}

func (s *commonSteps) auditTrailWithToken(ctx context.Context, account, token string) error {
	return s.tc.DoAdmin("/admin/audit/"+account, token)
}

func (s *commonSteps) auditTrailShouldContain(ctx context.Context, action string) error {
	if s.tc.LastStatus() != http.StatusOK {
		return fmt.Errorf("audit trail request failed with %d: %s", s.tc.LastStatus(), s.tc.LastBody())
	}
	var trail struct {
		Events []struct {
			Action string `json:"action"`
		} `json:"events"`
	}
	if err := json.Unmarshal(s.tc.LastBody(), &trail); err != nil {
		return err
	}
	for _, e := range trail.Events {
		if e.Action == action {
			return nil
		}
	}
	return fmt.Errorf("audit trail has no %q event: %s", action, s.tc.LastBody())
}
