package conflict

import (
	"context"

	"github.com/cucumber/godog"

	"unitgate/e2e/steps/common"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	Expand(s string) string
}

// RegisterSteps registers conflict report step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &conflictSteps{tc: tc}

	ctx.Step(`^I report a conflict on unit "([^"]*)" in building "([^"]*)" because "([^"]*)"$`, steps.report)
	ctx.Step(`^I (resolve|reject) conflict "([^"]*)" with note "([^"]*)"$`, steps.close)
	ctx.Step(`^I list conflicts for building "([^"]*)"$`, steps.list)
}

type conflictSteps struct {
	tc TestContext
}

func (s *conflictSteps) report(ctx context.Context, unit, building, reason string) error {
	buildingID, err := common.BuildingID(building)
	if err != nil {
		return err
	}
	return s.tc.POST("/conflicts/", map[string]any{
		"building_id": buildingID,
		"unit_number": s.tc.Expand(unit),
		"reason":      reason,
	})
}

func (s *conflictSteps) close(ctx context.Context, action, reportID, note string) error {
	return s.tc.POST("/conflicts/"+reportID+"/resolve", map[string]any{
		"action": action,
		"note":   note,
	})
}

func (s *conflictSteps) list(ctx context.Context, building string) error {
	buildingID, err := common.BuildingID(building)
	if err != nil {
		return err
	}
	return s.tc.GET("/conflicts/?building_id=" + buildingID)
}
