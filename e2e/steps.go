package e2e

import (
	"github.com/cucumber/godog"

	"soulbound/e2e/steps/achievement"
	"soulbound/e2e/steps/common"
	"soulbound/e2e/steps/identity"
	"soulbound/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	identity.RegisterSteps(ctx, tc)
	achievement.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
