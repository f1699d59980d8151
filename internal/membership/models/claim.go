package models

import (
	"strconv"
	"strings"

	"unitgate/internal/directory"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
)

// Claim is what an applicant asserts about a unit and their role on it.
type Claim struct {
	BuildingID        id.BuildingID
	BuildingCode      string
	UnitNumber        string
	Floor             string
	Area              string
	ResidentCount     int
	Role              RoleProfile
	FullName          string
	PhoneNumber       string
	OwnerFullName     string
	OwnerPhoneNumber  string
	TenantFullName    string
	TenantPhoneNumber string
	HasParking        bool
	ParkingCount      int
}

// Normalize trims input, canonicalizes phones and clears every field the
// role forbids. Owner{Empty} loses its claimed identity and resident count.
func (c *Claim) Normalize() {
	c.BuildingCode = strings.TrimSpace(c.BuildingCode)
	c.UnitNumber = strings.TrimSpace(c.UnitNumber)
	c.Floor = strings.TrimSpace(c.Floor)
	c.Area = strings.TrimSpace(c.Area)
	c.FullName = strings.TrimSpace(c.FullName)
	c.PhoneNumber = id.NormalizePhone(c.PhoneNumber)
	c.OwnerFullName = strings.TrimSpace(c.OwnerFullName)
	c.OwnerPhoneNumber = id.NormalizePhone(c.OwnerPhoneNumber)
	c.TenantFullName = strings.TrimSpace(c.TenantFullName)
	c.TenantPhoneNumber = id.NormalizePhone(c.TenantPhoneNumber)

	req := c.Role.Requirements()
	if req.IdentityCleared {
		c.FullName = ""
		c.PhoneNumber = ""
		c.ResidentCount = 0
	}
	if !req.OwnerCounterpartRequired {
		c.OwnerFullName = ""
		c.OwnerPhoneNumber = ""
	}
	if !req.TenantPairAllowed {
		c.TenantFullName = ""
		c.TenantPhoneNumber = ""
	}
	if !c.HasParking {
		c.ParkingCount = 0
	}
}

// Validate checks the claim against its role contract. Call Normalize first.
func (c *Claim) Validate() error {
	if c.Role.IsZero() {
		return validation("role is required")
	}
	if c.BuildingID.IsNil() && c.BuildingCode == "" {
		return validation("building_id or building_code is required")
	}
	if c.UnitNumber == "" {
		return validation("unit_number is required")
	}
	if !isNumber(c.Floor) {
		return validation("floor must be a number")
	}
	if !isNumber(c.Area) {
		return validation("area must be a number")
	}
	if c.HasParking && c.ParkingCount < 1 {
		return validation("parking_count must be at least 1 when has_parking is set")
	}

	req := c.Role.Requirements()
	if req.IdentityRequired {
		if c.FullName == "" || c.PhoneNumber == "" {
			return validation("full_name and phone_number are required")
		}
		if c.ResidentCount < 1 {
			return validation("resident_count must be at least 1")
		}
	}
	if req.IdentityCleared && (c.FullName != "" || c.PhoneNumber != "" || c.ResidentCount != 0) {
		return validation("an empty unit cannot carry resident identity")
	}
	if req.OwnerCounterpartRequired && (c.OwnerFullName == "" || c.OwnerPhoneNumber == "") {
		return validation("owner info required")
	}
	if req.TenantPairAllowed && (c.TenantFullName == "") != (c.TenantPhoneNumber == "") {
		return validation("tenant_full_name and tenant_phone_number must be given together")
	}
	return nil
}

// Field returns the claim's value for a compared field.
func (c *Claim) Field(f Field) string {
	switch f {
	case FieldUnitNumber:
		return c.UnitNumber
	case FieldFloor:
		return c.Floor
	case FieldArea:
		return c.Area
	case FieldFullName:
		return c.FullName
	case FieldPhoneNumber:
		return c.PhoneNumber
	case FieldOwnerType:
		return string(c.Role.OwnerType())
	case FieldOwnerFullName:
		return c.OwnerFullName
	case FieldOwnerPhoneNumber:
		return c.OwnerPhoneNumber
	case FieldTenantFullName:
		return c.TenantFullName
	case FieldTenantPhoneNumber:
		return c.TenantPhoneNumber
	}
	return ""
}

// Unit is the directory address the claim targets. BuildingID must be resolved.
func (c *Claim) Unit() directory.UnitRef {
	return directory.NewUnitRef(c.BuildingID, c.UnitNumber)
}

// OccupantData projects the claim onto a directory record. applicantPhone is
// the owner of an Owner{Empty} unit, whose claimed identity is cleared.
func (c *Claim) OccupantData(applicantPhone, applicantName string) directory.OccupantData {
	data := directory.OccupantData{
		BuildingCode:  c.BuildingCode,
		Floor:         c.Floor,
		Area:          c.Area,
		ResidentCount: c.ResidentCount,
		HasParking:    c.HasParking,
		ParkingCount:  c.ParkingCount,
	}
	if c.Role.IsTenant() {
		data.OwnerType = directory.OwnerTypeLandlord
		data.Owner = directory.Person{FullName: c.OwnerFullName, Phone: c.OwnerPhoneNumber}
		data.Tenant = &directory.Person{FullName: c.FullName, Phone: c.PhoneNumber}
		return data
	}

	data.OwnerType = string(c.Role.OwnerType())
	data.Owner = directory.Person{FullName: c.FullName, Phone: c.PhoneNumber}
	if c.Role.Requirements().IdentityCleared {
		data.Owner = directory.Person{FullName: applicantName, Phone: id.NormalizePhone(applicantPhone)}
	}
	if c.TenantPhoneNumber != "" {
		data.Tenant = &directory.Person{FullName: c.TenantFullName, Phone: c.TenantPhoneNumber}
	}
	return data
}

// ClaimFromRecord projects a directory record onto the claim shape of role so
// the two can be diffed field by field.
func ClaimFromRecord(r *directory.OccupantRecord, role RoleProfile) Claim {
	c := Claim{
		BuildingID:    r.Unit.BuildingID,
		BuildingCode:  r.BuildingCode,
		UnitNumber:    r.Unit.UnitNumber,
		Floor:         r.Floor,
		Area:          r.Area,
		ResidentCount: r.ResidentCount,
		HasParking:    r.HasParking,
		ParkingCount:  r.ParkingCount,
	}
	if role.IsTenant() {
		c.Role = Tenant()
		if r.Tenant != nil {
			c.FullName = r.Tenant.FullName
			c.PhoneNumber = r.Tenant.Phone
		}
		c.OwnerFullName = r.Owner.FullName
		c.OwnerPhoneNumber = r.Owner.Phone
		c.Normalize()
		return c
	}

	c.Role = Owner(OwnerType(r.OwnerType))
	c.FullName = r.Owner.FullName
	c.PhoneNumber = r.Owner.Phone
	if r.Tenant != nil {
		c.TenantFullName = r.Tenant.FullName
		c.TenantPhoneNumber = r.Tenant.Phone
	}
	c.Normalize()
	return c
}

func isNumber(s string) bool {
	if s == "" {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func validation(msg string) error {
	return dErrors.New(dErrors.CodeValidation, msg)
}
