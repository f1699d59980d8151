package models

import (
	"strings"

	dErrors "unitgate/pkg/domain-errors"
)

type RoleKind string

const (
	RoleOwner  RoleKind = "owner"
	RoleTenant RoleKind = "tenant"
)

type OwnerType string

const (
	OwnerEmpty    OwnerType = "empty"
	OwnerResident OwnerType = "resident"
	OwnerLandlord OwnerType = "landlord"
)

// RoleProfile is the tagged variant Owner{Empty|Resident|Landlord} | Tenant.
// The zero value is invalid.
type RoleProfile struct {
	kind      RoleKind
	ownerType OwnerType
}

func Owner(t OwnerType) RoleProfile {
	return RoleProfile{kind: RoleOwner, ownerType: t}
}

func Tenant() RoleProfile {
	return RoleProfile{kind: RoleTenant}
}

// ParseRoleProfile reads the wire pair (role, owner_type). "resident" as a
// role is the legacy name for a tenant.
func ParseRoleProfile(role, ownerType string) (RoleProfile, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleTenant), "resident":
		return Tenant(), nil
	case string(RoleOwner):
		t := OwnerType(strings.ToLower(strings.TrimSpace(ownerType)))
		switch t {
		case OwnerEmpty, OwnerResident, OwnerLandlord:
			return Owner(t), nil
		case "":
			return RoleProfile{}, dErrors.New(dErrors.CodeValidation, "owner_type is required for owners")
		}
		return RoleProfile{}, dErrors.New(dErrors.CodeValidation, "unknown owner_type: "+ownerType)
	}
	return RoleProfile{}, dErrors.New(dErrors.CodeValidation, "role must be owner or tenant")
}

func (r RoleProfile) Kind() RoleKind       { return r.kind }
func (r RoleProfile) OwnerType() OwnerType { return r.ownerType }
func (r RoleProfile) IsTenant() bool       { return r.kind == RoleTenant }
func (r RoleProfile) IsOwner() bool        { return r.kind == RoleOwner }
func (r RoleProfile) IsZero() bool         { return r.kind == "" }

func (r RoleProfile) String() string {
	if r.kind == RoleOwner {
		return string(RoleOwner) + ":" + string(r.ownerType)
	}
	return string(r.kind)
}

// Requirements is the field contract a role imposes on a claim.
type Requirements struct {
	// IdentityRequired demands full_name and phone_number.
	IdentityRequired bool
	// IdentityCleared forces full_name, phone_number and resident_count to zero.
	IdentityCleared bool
	// OwnerCounterpartRequired demands owner_full_name and owner_phone_number.
	OwnerCounterpartRequired bool
	// TenantPairAllowed permits tenant_full_name and tenant_phone_number, both or neither.
	TenantPairAllowed bool
}

// Requirements is the single switch over the variant. Validation and
// reconciliation both derive from it.
func (r RoleProfile) Requirements() Requirements {
	switch r.kind {
	case RoleTenant:
		return Requirements{IdentityRequired: true, OwnerCounterpartRequired: true}
	case RoleOwner:
		switch r.ownerType {
		case OwnerEmpty:
			return Requirements{IdentityCleared: true}
		case OwnerResident:
			return Requirements{IdentityRequired: true}
		case OwnerLandlord:
			return Requirements{IdentityRequired: true, TenantPairAllowed: true}
		}
	}
	return Requirements{}
}

// Field names a claim attribute compared during reconciliation.
type Field string

const (
	FieldUnitNumber        Field = "unit_number"
	FieldFloor             Field = "floor"
	FieldArea              Field = "area"
	FieldFullName          Field = "full_name"
	FieldPhoneNumber       Field = "phone_number"
	FieldOwnerType         Field = "owner_type"
	FieldOwnerFullName     Field = "owner_full_name"
	FieldOwnerPhoneNumber  Field = "owner_phone_number"
	FieldTenantFullName    Field = "tenant_full_name"
	FieldTenantPhoneNumber Field = "tenant_phone_number"
)

// IsNumeric reports whether the field compares by numeric value.
func (f Field) IsNumeric() bool {
	return f == FieldFloor || f == FieldArea
}

var coreFields = []Field{FieldUnitNumber, FieldFloor, FieldArea, FieldFullName, FieldPhoneNumber}

// ComparedFields is the field set a claim of this role is diffed on.
func (r RoleProfile) ComparedFields() []Field {
	fields := append([]Field(nil), coreFields...)
	req := r.Requirements()
	if req.OwnerCounterpartRequired {
		fields = append(fields, FieldOwnerFullName, FieldOwnerPhoneNumber)
	}
	if r.IsOwner() {
		fields = append(fields, FieldOwnerType)
	}
	if req.TenantPairAllowed {
		fields = append(fields, FieldTenantFullName, FieldTenantPhoneNumber)
	}
	return fields
}
