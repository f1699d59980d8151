// Package models holds the alternate entry points into a unit: one-shot
// invite links, family invitations and the manager-phone building selection.
package models

import (
	"slices"
	"strings"
	"time"

	"unitgate/internal/directory"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
)

// LinkRole is the occupancy an invite link grants.
type LinkRole string

const (
	RoleOwner    LinkRole = "owner"
	RoleResident LinkRole = "resident"
)

func ParseLinkRole(raw string) (LinkRole, error) {
	switch r := LinkRole(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleOwner, RoleResident:
		return r, nil
	case "tenant":
		return RoleResident, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "role must be owner or resident")
}

// InviteLink is a one-shot signed link a manager hands to a new occupant.
type InviteLink struct {
	ID           id.InviteLinkID
	Token        string
	Unit         directory.UnitRef
	BuildingCode string
	Role         LinkRole
	ExpiresAt    time.Time
	CreatedBy    id.UserID
	IsUsed       bool
	UsedBy       id.UserID
	UsedByPhone  string
	UsedAt       *time.Time
	CreatedAt    time.Time
}

func NewInviteLink(linkID id.InviteLinkID, unit directory.UnitRef, role LinkRole, createdBy id.UserID, expiresAt, now time.Time) (*InviteLink, error) {
	if unit.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "building_id and unit_number are required")
	}
	if !expiresAt.After(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "expires_at must be in the future")
	}
	return &InviteLink{
		ID:        linkID,
		Unit:      unit,
		Role:      role,
		ExpiresAt: expiresAt,
		CreatedBy: createdBy,
		CreatedAt: now,
	}, nil
}

func (l *InviteLink) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// CheckUsable reports why the link cannot be used at now, if it cannot.
func (l *InviteLink) CheckUsable(now time.Time) error {
	if l.IsUsed {
		return dErrors.New(dErrors.CodeAlreadyUsed, "invite link has already been used")
	}
	if l.IsExpired(now) {
		return dErrors.New(dErrors.CodeExpired, "invite link has expired")
	}
	return nil
}

func (l *InviteLink) MarkUsed(by id.Actor, now time.Time) error {
	if err := l.CheckUsable(now); err != nil {
		return err
	}
	l.IsUsed = true
	l.UsedBy = by.UserID
	l.UsedByPhone = id.NormalizePhone(by.Phone)
	l.UsedAt = &now
	return nil
}

func (l *InviteLink) Clone() *InviteLink {
	cp := *l
	if l.UsedAt != nil {
		t := *l.UsedAt
		cp.UsedAt = &t
	}
	return &cp
}

// Occupancy lays the link's role over the unit's current record: an owner
// link makes the holder the owner, a resident link the tenant.
func (l *InviteLink) Occupancy(current *directory.OccupantRecord, holder id.Actor) directory.OccupantData {
	var data directory.OccupantData
	if current != nil {
		data = current.Clone().OccupantData
	}
	if data.BuildingCode == "" {
		data.BuildingCode = l.BuildingCode
	}
	person := directory.Person{FullName: strings.TrimSpace(holder.FullName), Phone: id.NormalizePhone(holder.Phone)}
	switch l.Role {
	case RoleOwner:
		data.Owner = person
		if data.OwnerType == "" || data.OwnerType == directory.OwnerTypeEmpty {
			data.OwnerType = directory.OwnerTypeResident
		}
	default:
		data.Tenant = &person
		if data.OwnerType == "" || data.OwnerType == directory.OwnerTypeResident {
			data.OwnerType = directory.OwnerTypeLandlord
		}
	}
	if data.ResidentCount == 0 {
		data.ResidentCount = 1
	}
	return data
}

type FamilyStatus string

const (
	FamilyPending  FamilyStatus = "pending"
	FamilyAccepted FamilyStatus = "accepted"
	// FamilyExpired is never stored; it is how a pending invitation past its
	// expiry is shown.
	FamilyExpired FamilyStatus = "expired"
)

// FamilyInvitation lets an occupant add a household member to their unit.
// Only a keyed hash of the code is kept.
type FamilyInvitation struct {
	ID           id.FamilyInvitationID
	CodeHash     string
	Unit         directory.UnitRef
	InvitedPhone string
	InvitedName  string
	InvitedBy    id.UserID
	ExpiresAt    time.Time
	Status       FamilyStatus
	AcceptedBy   id.UserID
	AcceptedAt   *time.Time
	CreatedAt    time.Time
	Version      int
}

func NewFamilyInvitation(invID id.FamilyInvitationID, codeHash string, unit directory.UnitRef, phone, name string, invitedBy id.UserID, expiresAt, now time.Time) (*FamilyInvitation, error) {
	phone = id.NormalizePhone(phone)
	if phone == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "invited_phone is required")
	}
	if unit.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "building_id and unit_number are required")
	}
	if !expiresAt.After(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "expires_at must be in the future")
	}
	return &FamilyInvitation{
		ID:           invID,
		CodeHash:     codeHash,
		Unit:         unit,
		InvitedPhone: phone,
		InvitedName:  strings.TrimSpace(name),
		InvitedBy:    invitedBy,
		ExpiresAt:    expiresAt,
		Status:       FamilyPending,
		CreatedAt:    now,
	}, nil
}

// DisplayStatus is the status with expiry applied.
func (f *FamilyInvitation) DisplayStatus(now time.Time) FamilyStatus {
	if f.Status == FamilyPending && !now.Before(f.ExpiresAt) {
		return FamilyExpired
	}
	return f.Status
}

// Accept records that the invited person took the invitation.
func (f *FamilyInvitation) Accept(actor id.Actor, now time.Time) error {
	if f.Status != FamilyPending {
		return dErrors.New(dErrors.CodeAlreadyUsed, "family invitation has already been accepted")
	}
	if !now.Before(f.ExpiresAt) {
		return dErrors.New(dErrors.CodeExpired, "family invitation has expired")
	}
	if !actor.HasPhone(f.InvitedPhone) {
		return dErrors.New(dErrors.CodeForbidden, "invitation was issued to another phone number")
	}
	f.Status = FamilyAccepted
	f.AcceptedBy = actor.UserID
	f.AcceptedAt = &now
	return nil
}

// Member is the family link the accepted invitation adds to the unit.
func (f *FamilyInvitation) Member(actor id.Actor) directory.FamilyMember {
	name := strings.TrimSpace(actor.FullName)
	if name == "" {
		name = f.InvitedName
	}
	return directory.FamilyMember{FullName: name, Phone: f.InvitedPhone, AddedAt: *f.AcceptedAt}
}

func (f *FamilyInvitation) Clone() *FamilyInvitation {
	cp := *f
	if f.AcceptedAt != nil {
		t := *f.AcceptedAt
		cp.AcceptedAt = &t
	}
	return &cp
}

// Selection is the saga state between resolving a manager phone that manages
// several buildings and the applicant picking one.
type Selection struct {
	ID             id.SelectionID       `json:"id"`
	ApplicantPhone string               `json:"applicant_phone"`
	ManagerPhone   string               `json:"manager_phone"`
	Buildings      []directory.Building `json:"buildings"`
	ExpiresAt      time.Time            `json:"expires_at"`
}

func (s *Selection) Offers(building id.BuildingID) bool {
	return slices.ContainsFunc(s.Buildings, func(b directory.Building) bool {
		return b.ID == building
	})
}

func (s *Selection) BelongsTo(actor id.Actor) bool {
	return actor.HasPhone(s.ApplicantPhone)
}

// JoinResult is either a single building or a pending selection.
type JoinResult struct {
	Building  *directory.Building
	Selection *Selection
}

func (r JoinResult) RequiresSelection() bool {
	return r.Selection != nil
}
