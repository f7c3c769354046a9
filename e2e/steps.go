package e2e

import (
	"github.com/cucumber/godog"

	"alyra/e2e/steps/common"
	"alyra/e2e/steps/voting"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (callers, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register ballot workflow steps
	voting.RegisterSteps(ctx, tc)
}
