package e2e

import (
	"github.com/cucumber/godog"

	"unitgate/e2e/steps/common"
	"unitgate/e2e/steps/conflict"
	"unitgate/e2e/steps/invitation"
	"unitgate/e2e/steps/membership"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	membership.RegisterSteps(ctx, tc)
	invitation.RegisterSteps(ctx, tc)
	conflict.RegisterSteps(ctx, tc)
}
