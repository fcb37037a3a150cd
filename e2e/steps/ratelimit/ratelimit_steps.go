package ratelimit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Start(writeBudget int) error
	Do(method, path, signer, deposit string, body any) error
	LastHeader(name string) string
}

// RegisterSteps registers rate-limiting step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^the registry is running with a write budget of (\d+) requests per minute$`, steps.runningWithWriteBudget)
	ctx.Step(`^"([^"]*)" burns their soul (\d+) times$`, steps.burnRepeatedly)
	ctx.Step(`^the response header "([^"]*)" should be present$`, steps.headerShouldBePresent)
}

type ratelimitSteps struct {
	tc TestContext
}

func (s *ratelimitSteps) runningWithWriteBudget(ctx context.Context, budget int) error {
	return s.tc.Start(budget)
}

func (s *ratelimitSteps) burnRepeatedly(ctx context.Context, account string, times int) error {
	for range times {
		if err := s.tc.Do(http.MethodDelete, "/souls/me", account, "", nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *ratelimitSteps) headerShouldBePresent(ctx context.Context, name string) error {
	if s.tc.LastHeader(name) == "" {
		return fmt.Errorf("response has no %s header", name)
	}
	return nil
}
