package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"unitgate/internal/seeder"
	id "unitgate/pkg/domain"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	GETAnonymous(path string) error
	GetResponseField(field string) (any, error)
	ResponseContains(field string) bool
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Authenticate(actor id.Actor) error
	ClearAuth()
	Expand(s string) string
	Set(name, value string)
	FreshPhone() string
	FreshUnit() string
}

// demoOccupants mirror the seeded Maple Court occupants.
var demoOccupants = map[string]id.Actor{
	"owner":    {Phone: "09121111111", FullName: "Ali Owner"},
	"tenant":   {Phone: "09122222222", FullName: "Reza Tenant"},
	"resident": {Phone: "09123333333", FullName: "Mina Resident"},
}

// RegisterSteps registers common step definitions used across features
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	// Background steps
	ctx.Step(`^the unitgate service is running$`, steps.serviceIsRunning)
	ctx.Step(`^a fresh phone number "([^"]*)"$`, steps.freshPhone)
	ctx.Step(`^a fresh unit number "([^"]*)"$`, steps.freshUnit)

	// Actor steps
	ctx.Step(`^I am authenticated as the demo manager$`, steps.authenticateAsManager)
	ctx.Step(`^I am authenticated as the demo (owner|tenant|resident)$`, steps.authenticateAsOccupant)
	ctx.Step(`^I am authenticated as "([^"]*)"$`, steps.authenticateAsPhone)
	ctx.Step(`^I am not authenticated$`, steps.notAuthenticated)

	// Generic request steps
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^I GET "([^"]*)" without authorization$`, steps.getWithoutAuth)

	// Response assertion steps
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.responseShouldContain)
	ctx.Step(`^the response should not contain "([^"]*)"$`, steps.responseShouldNotContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^I save the response field "([^"]*)" as "([^"]*)"$`, steps.saveResponseField)
	ctx.Step(`^log "([^"]*)"$`, steps.logMessage)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsRunning(ctx context.Context) error {
	if err := s.tc.GETAnonymous("/health/live"); err != nil {
		return err
	}
	return s.responseStatusShouldBe(ctx, 200)
}

func (s *commonSteps) freshPhone(ctx context.Context, name string) error {
	s.tc.Set(name, s.tc.FreshPhone())
	return nil
}

func (s *commonSteps) freshUnit(ctx context.Context, name string) error {
	s.tc.Set(name, s.tc.FreshUnit())
	return nil
}

func (s *commonSteps) authenticateAsManager(ctx context.Context) error {
	managed := make([]id.BuildingID, 0, 2)
	for _, b := range seeder.Buildings() {
		managed = append(managed, b.ID)
	}
	return s.tc.Authenticate(id.Actor{
		Phone:            seeder.DemoManagerPhone,
		FullName:         seeder.DemoManagerName,
		ManagedBuildings: managed,
	})
}

func (s *commonSteps) authenticateAsOccupant(ctx context.Context, role string) error {
	actor, ok := demoOccupants[role]
	if !ok {
		return fmt.Errorf("unknown demo occupant %s", role)
	}
	return s.tc.Authenticate(actor)
}

func (s *commonSteps) authenticateAsPhone(ctx context.Context, phone string) error {
	phone = s.tc.Expand(phone)
	return s.tc.Authenticate(id.Actor{Phone: phone, FullName: "Applicant " + phone})
}

func (s *commonSteps) notAuthenticated(ctx context.Context) error {
	s.tc.ClearAuth()
	return nil
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) getWithoutAuth(ctx context.Context, path string) error {
	return s.tc.GETAnonymous(path)
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	actualStatus := s.tc.GetLastResponseStatus()
	if actualStatus != expectedStatus {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s", expectedStatus, actualStatus, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *commonSteps) responseShouldContain(ctx context.Context, text string) error {
	if !s.tc.ResponseContains(s.tc.Expand(text)) {
		return fmt.Errorf("response does not contain: %s\nResponse: %s", text, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *commonSteps) responseShouldNotContain(ctx context.Context, text string) error {
	if s.tc.ResponseContains(s.tc.Expand(text)) {
		return fmt.Errorf("response unexpectedly contains: %s", text)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(ctx context.Context, field, expectedValue string) error {
	var data map[string]any
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &data); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	actualValue, ok := data[field]
	if !ok {
		return fmt.Errorf("field %s not found in response", field)
	}

	if fmt.Sprint(actualValue) != s.tc.Expand(expectedValue) {
		return fmt.Errorf("field %s: expected %s but got %v", field, expectedValue, actualValue)
	}
	return nil
}

func (s *commonSteps) saveResponseField(ctx context.Context, field, name string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	str := strings.TrimSpace(fmt.Sprint(value))
	if str == "" {
		return fmt.Errorf("field %s is empty", field)
	}
	s.tc.Set(name, str)
	return nil
}

func (s *commonSteps) logMessage(ctx context.Context, message string) error {
	fmt.Println(s.tc.Expand(message))
	return nil
}

// BuildingID resolves a seeded building code to its id.
func BuildingID(code string) (string, error) {
	for _, b := range seeder.Buildings() {
		if strings.EqualFold(b.Code, code) {
			return b.ID.String(), nil
		}
	}
	return "", fmt.Errorf("unknown demo building %s", code)
}
