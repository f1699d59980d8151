package models

import (
	"strconv"
	"strings"

	"unitgate/internal/directory"
	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/validation"
)

// Correction overrides parts of a unit's directory record. Nil fields keep
// the recorded value; RemoveTenant clears the tenant.
type Correction struct {
	OwnerType     *string           `json:"owner_type,omitempty"`
	Owner         *directory.Person `json:"owner,omitempty"`
	Tenant        *directory.Person `json:"tenant,omitempty"`
	RemoveTenant  bool              `json:"remove_tenant,omitempty"`
	Floor         *string           `json:"floor,omitempty"`
	Area          *string           `json:"area,omitempty"`
	ResidentCount *int              `json:"resident_count,omitempty"`
}

func (c *Correction) fields() int {
	n := 0
	for _, set := range []bool{
		c.OwnerType != nil, c.Owner != nil, c.Tenant != nil, c.RemoveTenant,
		c.Floor != nil, c.Area != nil, c.ResidentCount != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

func (c *Correction) IsEmpty() bool {
	return c == nil || c.fields() == 0
}

func (c *Correction) Validate() error {
	if err := validation.CheckSliceCount("correction fields", c.fields(), validation.MaxCorrectionFields); err != nil {
		return err
	}
	if c.Tenant != nil && c.RemoveTenant {
		return dErrors.New(dErrors.CodeValidation, "tenant and remove_tenant are exclusive")
	}
	if c.OwnerType != nil {
		switch *c.OwnerType {
		case directory.OwnerTypeEmpty, directory.OwnerTypeResident, directory.OwnerTypeLandlord:
		default:
			return dErrors.New(dErrors.CodeValidation, "unknown owner_type: "+*c.OwnerType)
		}
	}
	for _, p := range []*directory.Person{c.Owner, c.Tenant} {
		if p != nil && id.NormalizePhone(p.Phone) == "" {
			return dErrors.New(dErrors.CodeValidation, "corrected persons need a phone")
		}
	}
	for name, v := range map[string]*string{"floor": c.Floor, "area": c.Area} {
		if v == nil || strings.TrimSpace(*v) == "" {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(*v), 64); err != nil {
			return dErrors.New(dErrors.CodeValidation, name+" must be a number")
		}
	}
	if c.ResidentCount != nil && (*c.ResidentCount < 0 || *c.ResidentCount > validation.MaxResidentCount) {
		return dErrors.New(dErrors.CodeValidation, "resident_count is out of range")
	}
	return nil
}

// Apply returns the record data with the correction laid over it.
func (c *Correction) Apply(current directory.OccupantData) directory.OccupantData {
	out := current
	if current.Tenant != nil {
		t := *current.Tenant
		out.Tenant = &t
	}
	if c.RemoveTenant {
		out.Tenant = nil
	}
	if c.OwnerType != nil {
		out.OwnerType = *c.OwnerType
	}
	if c.Owner != nil {
		out.Owner = normalized(*c.Owner)
	}
	if c.Tenant != nil {
		t := normalized(*c.Tenant)
		out.Tenant = &t
	}
	if c.Floor != nil {
		out.Floor = strings.TrimSpace(*c.Floor)
	}
	if c.Area != nil {
		out.Area = strings.TrimSpace(*c.Area)
	}
	if c.ResidentCount != nil {
		out.ResidentCount = *c.ResidentCount
	}
	return out
}

func (c Correction) clone() Correction {
	cp := c
	if c.OwnerType != nil {
		v := *c.OwnerType
		cp.OwnerType = &v
	}
	if c.Owner != nil {
		v := *c.Owner
		cp.Owner = &v
	}
	if c.Tenant != nil {
		v := *c.Tenant
		cp.Tenant = &v
	}
	if c.Floor != nil {
		v := *c.Floor
		cp.Floor = &v
	}
	if c.Area != nil {
		v := *c.Area
		cp.Area = &v
	}
	if c.ResidentCount != nil {
		v := *c.ResidentCount
		cp.ResidentCount = &v
	}
	return cp
}

func normalized(p directory.Person) directory.Person {
	return directory.Person{FullName: strings.TrimSpace(p.FullName), Phone: id.NormalizePhone(p.Phone)}
}
