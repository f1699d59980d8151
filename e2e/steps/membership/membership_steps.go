package membership

import (
	"context"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	Expand(s string) string
}

// RegisterSteps registers membership lifecycle step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &membershipSteps{tc: tc}

	ctx.Step(`^I claim unit "([^"]*)" in building "([^"]*)" as owner of type "([^"]*)"$`, steps.claimAsOwner)
	ctx.Step(`^I claim unit "([^"]*)" in building "([^"]*)" as tenant with owner "([^"]*)"$`, steps.claimAsTenant)
	ctx.Step(`^I approve request "([^"]*)" as owner$`, steps.approveAsOwner)
	ctx.Step(`^I approve request "([^"]*)" as manager$`, steps.approveAsManager)
	ctx.Step(`^I reject request "([^"]*)" because "([^"]*)"$`, steps.reject)
	ctx.Step(`^I withdraw request "([^"]*)"$`, steps.withdraw)
}

type membershipSteps struct {
	tc TestContext
}

func (s *membershipSteps) claimAsOwner(ctx context.Context, unit, building, ownerType string) error {
	return s.tc.POST("/membership/create", map[string]any{
		"building_code":  building,
		"unit_number":    s.tc.Expand(unit),
		"role":           "owner",
		"owner_type":     ownerType,
		"resident_count": 2,
	})
}

func (s *membershipSteps) claimAsTenant(ctx context.Context, unit, building, ownerPhone string) error {
	return s.tc.POST("/membership/create", map[string]any{
		"building_code":      building,
		"unit_number":        s.tc.Expand(unit),
		"role":               "tenant",
		"owner_full_name":    "Owner Of Record",
		"owner_phone_number": s.tc.Expand(ownerPhone),
		"resident_count":     1,
	})
}

func (s *membershipSteps) approveAsOwner(ctx context.Context, requestID string) error {
	return s.tc.POST("/membership/"+requestID+"/approve-by-owner", nil)
}

func (s *membershipSteps) approveAsManager(ctx context.Context, requestID string) error {
	return s.tc.POST("/membership/"+requestID+"/approve-by-manager", nil)
}

func (s *membershipSteps) reject(ctx context.Context, requestID, reason string) error {
	return s.tc.POST("/membership/"+requestID+"/reject", map[string]any{
		"rejection_reason": reason,
	})
}

func (s *membershipSteps) withdraw(ctx context.Context, requestID string) error {
	return s.tc.POST("/membership/"+requestID+"/withdraw", nil)
}
