package invitation

import (
	"context"

	"github.com/cucumber/godog"

	"unitgate/e2e/steps/common"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	GETAnonymous(path string) error
	Expand(s string) string
}

// RegisterSteps registers invite link, family invitation and join step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &invitationSteps{tc: tc}

	ctx.Step(`^I create an? (owner|resident) invite link for unit "([^"]*)" in building "([^"]*)"$`, steps.createLink)
	ctx.Step(`^I validate invite link "([^"]*)"$`, steps.validateLink)
	ctx.Step(`^I use invite link "([^"]*)"$`, steps.useLink)
	ctx.Step(`^I list invite links for building "([^"]*)"$`, steps.listLinks)

	ctx.Step(`^I invite family member "([^"]*)" to unit "([^"]*)" in building "([^"]*)"$`, steps.inviteFamily)
	ctx.Step(`^I accept family code "([^"]*)"$`, steps.acceptFamily)

	ctx.Step(`^I look up manager phone "([^"]*)"$`, steps.lookupManager)
	ctx.Step(`^I complete selection "([^"]*)" with building "([^"]*)" claiming unit "([^"]*)" as owner of type "([^"]*)"$`, steps.completeSelection)
}

type invitationSteps struct {
	tc TestContext
}

func (s *invitationSteps) createLink(ctx context.Context, role, unit, building string) error {
	buildingID, err := common.BuildingID(building)
	if err != nil {
		return err
	}
	return s.tc.POST("/invite-links/", map[string]any{
		"building_id": buildingID,
		"unit_number": s.tc.Expand(unit),
		"role":        role,
	})
}

func (s *invitationSteps) validateLink(ctx context.Context, token string) error {
	return s.tc.GETAnonymous("/invite-links/" + token)
}

func (s *invitationSteps) useLink(ctx context.Context, token string) error {
	return s.tc.POST("/invite-links/"+token+"/use", nil)
}

func (s *invitationSteps) listLinks(ctx context.Context, building string) error {
	buildingID, err := common.BuildingID(building)
	if err != nil {
		return err
	}
	return s.tc.GET("/invite-links/?building_id=" + buildingID)
}

func (s *invitationSteps) inviteFamily(ctx context.Context, phone, unit, building string) error {
	buildingID, err := common.BuildingID(building)
	if err != nil {
		return err
	}
	return s.tc.POST("/family-invitations/", map[string]any{
		"building_id":   buildingID,
		"unit_number":   s.tc.Expand(unit),
		"invited_phone": s.tc.Expand(phone),
		"invited_name":  "Family Member",
	})
}

func (s *invitationSteps) acceptFamily(ctx context.Context, code string) error {
	return s.tc.POST("/family-invitations/accept", map[string]any{
		"code": s.tc.Expand(code),
	})
}

func (s *invitationSteps) lookupManager(ctx context.Context, phone string) error {
	return s.tc.POST("/join/manager-phone/", map[string]any{
		"manager_phone": s.tc.Expand(phone),
	})
}

func (s *invitationSteps) completeSelection(ctx context.Context, selectionID, building, unit, ownerType string) error {
	buildingID, err := common.BuildingID(building)
	if err != nil {
		return err
	}
	return s.tc.POST("/join/manager-phone/"+selectionID+"/complete", map[string]any{
		"building_id":    buildingID,
		"unit_number":    s.tc.Expand(unit),
		"role":           "owner",
		"owner_type":     ownerType,
		"resident_count": 1,
	})
}
