// Package matcher reconciles membership claims against the Unit Directory.
// It only reads: the verdicts it returns inform the lifecycle, they never
// change it.
package matcher

import (
	"context"
	"strconv"
	"strings"

	"unitgate/internal/directory"
	"unitgate/internal/membership/models"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
)

// Guard reports whether an applicant is already onboarded in a building.
// Any guard answering true suppresses matching for that building.
type Guard interface {
	OnboardedIn(ctx context.Context, applicantPhone string, building directory.BuildingRef) (bool, error)
}

// GuardFunc adapts a function to Guard.
type GuardFunc func(ctx context.Context, applicantPhone string, building directory.BuildingRef) (bool, error)

func (f GuardFunc) OnboardedIn(ctx context.Context, applicantPhone string, building directory.BuildingRef) (bool, error) {
	return f(ctx, applicantPhone, building)
}

// Verdict is the outcome of reconciling one claim.
type Verdict struct {
	Matched       bool
	HasBeenEdited bool
	// Role is the applicant's role on the matched record, or the claimed role
	// when nothing matched.
	Role       models.RoleProfile
	Suppressed bool
	Candidate  *directory.OccupantRecord
}

// Fresh reports a claim with no canonical record behind it.
func (v Verdict) Fresh() bool {
	return !v.Matched && !v.Suppressed
}

// Unchanged reports a claim that reproduces its canonical record exactly.
func (v Verdict) Unchanged() bool {
	return v.Matched && !v.HasBeenEdited && !v.Suppressed
}

type Matcher struct {
	directory directory.Reader
	guards    []Guard
}

func New(dir directory.Reader, guards ...Guard) *Matcher {
	return &Matcher{directory: dir, guards: guards}
}

// Match returns the canonical records naming phone as owner or tenant,
// oldest first.
func (m *Matcher) Match(ctx context.Context, phone string) ([]*directory.OccupantRecord, error) {
	p := id.NormalizePhone(phone)
	if p == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "phone_number is required")
	}
	return m.directory.LookupByPhone(ctx, p)
}

// Suppressed runs the onboarding guards for the applicant and building.
func (m *Matcher) Suppressed(ctx context.Context, applicantPhone string, building directory.BuildingRef) (bool, error) {
	for _, g := range m.guards {
		onboarded, err := g.OnboardedIn(ctx, applicantPhone, building)
		if err != nil {
			return false, err
		}
		if onboarded {
			return true, nil
		}
	}
	return false, nil
}

// Classify matches the claim against the applicant's oldest record for the
// same unit and diffs it. claim.BuildingID must already be resolved.
func (m *Matcher) Classify(ctx context.Context, applicantPhone string, claim models.Claim) (Verdict, error) {
	suppressed, err := m.Suppressed(ctx, applicantPhone, directory.BuildingRef{ID: claim.BuildingID, Code: claim.BuildingCode})
	if err != nil {
		return Verdict{}, err
	}
	if suppressed {
		return Verdict{Suppressed: true, Role: claim.Role}, nil
	}

	candidates, err := m.Match(ctx, applicantPhone)
	if err != nil {
		return Verdict{}, err
	}
	unit := claim.Unit()
	for _, c := range candidates {
		if sameUnit(c.Unit, unit) {
			return m.Diff(claim, c, applicantPhone), nil
		}
	}
	return Verdict{Role: claim.Role}, nil
}

// Diff compares a claim with a canonical record over the field set of the
// claimed role. The role on record is the applicant's, never the one implied
// by the typed phone. A claim whose role differs from the record's, or whose
// claimed identity is not the applicant's, is edited.
func (m *Matcher) Diff(claim models.Claim, candidate *directory.OccupantRecord, applicantPhone string) Verdict {
	applicant := id.NormalizePhone(applicantPhone)
	recorded := RoleOnRecord(candidate, applicant)
	v := Verdict{Matched: true, Role: recorded, Candidate: candidate}
	if !candidate.HasOccupant(applicant) || claim.Role.Kind() != recorded.Kind() {
		v.HasBeenEdited = true
		return v
	}
	if claim.Role.Requirements().IdentityRequired && claim.PhoneNumber != applicant {
		v.HasBeenEdited = true
		return v
	}

	canonical := models.ClaimFromRecord(candidate, claim.Role)
	for _, f := range claim.Role.ComparedFields() {
		if !fieldEqual(f, claim.Field(f), canonical.Field(f)) {
			v.HasBeenEdited = true
			break
		}
	}
	return v
}

// Prefill returns the applicant's oldest canonical record in building
// projected onto a claim, or nil when matching is suppressed or nothing is
// on record. A zero building ref accepts any building.
func (m *Matcher) Prefill(ctx context.Context, applicantPhone string, building directory.BuildingRef) (*models.Claim, error) {
	candidates, err := m.Match(ctx, applicantPhone)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		if !inBuilding(c, building) {
			continue
		}
		suppressed, err := m.Suppressed(ctx, applicantPhone, directory.BuildingRef{ID: c.Unit.BuildingID, Code: c.BuildingCode})
		if err != nil {
			return nil, err
		}
		if suppressed {
			return nil, nil
		}
		claim := models.ClaimFromRecord(c, RoleOnRecord(c, applicantPhone))
		return &claim, nil
	}
	return nil, nil
}

// RoleOnRecord derives the role phone holds on a record: tenant when it is
// the tenant of record, otherwise owner of the recorded owner type.
func RoleOnRecord(r *directory.OccupantRecord, phone string) models.RoleProfile {
	if r.IsTenant(phone) {
		return models.Tenant()
	}
	return models.Owner(models.OwnerType(r.OwnerType))
}

func sameUnit(a, b directory.UnitRef) bool {
	return a.BuildingID == b.BuildingID && strings.TrimSpace(a.UnitNumber) == strings.TrimSpace(b.UnitNumber)
}

func inBuilding(r *directory.OccupantRecord, ref directory.BuildingRef) bool {
	if ref.ID.IsNil() && ref.Code == "" {
		return true
	}
	if !ref.ID.IsNil() && r.Unit.BuildingID == ref.ID {
		return true
	}
	return ref.Code != "" && strings.EqualFold(r.BuildingCode, strings.TrimSpace(ref.Code))
}

func fieldEqual(f models.Field, a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if !f.IsNumeric() {
		return a == b
	}
	x, errA := number(a)
	y, errB := number(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return x == y
}

// number parses a numeric field; blank counts as 0.
func number(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
