package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "unitgate/pkg/domain-errors"
)

type claimInput struct {
	FullName       string `validate:"required,notblank"`
	ApplicantPhone string `validate:"required,phone"`
	Role           string `validate:"oneof=owner tenant"`
	ResidentCount  int    `validate:"gte=0"`
}

type ValidationSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationSuite))
}

func (s *ValidationSuite) TestValidate() {
	valid := claimInput{FullName: "Reza", ApplicantPhone: "0912 111 2222", Role: "owner"}

	s.Run("accepts valid input", func() {
		s.NoError(Validate(valid))
	})

	s.Run("blank name", func() {
		in := valid
		in.FullName = "   "
		err := Validate(in)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("full_name must not be blank", err.Error())
	})

	s.Run("bad phone", func() {
		in := valid
		in.ApplicantPhone = "12ab"
		err := Validate(in)
		s.Equal("applicant_phone must be a valid phone number", err.Error())
	})

	s.Run("unknown role", func() {
		in := valid
		in.Role = "guest"
		s.Equal("role must be one of [owner tenant]", Validate(in).Error())
	})

	s.Run("negative resident count", func() {
		in := valid
		in.ResidentCount = -1
		s.Equal("resident_count must be greater than or equal to 0", Validate(in).Error())
	})
}

func (s *ValidationSuite) TestIsPhone() {
	s.True(IsPhone("+98 912 345 6789"))
	s.True(IsPhone("۰۹۱۲۳۴۵۶۷۸۹"))
	s.False(IsPhone("0912"))
	s.False(IsPhone(""))
}

func (s *ValidationSuite) TestLimits() {
	s.Run("length at max passes", func() {
		s.NoError(CheckStringLength("reason", strings.Repeat("a", MaxReasonLength), MaxReasonLength))
	})
	s.Run("length above max fails", func() {
		err := CheckStringLength("reason", strings.Repeat("a", MaxReasonLength+1), MaxReasonLength)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
	s.Run("counts runes not bytes", func() {
		s.NoError(CheckStringLength("name", strings.Repeat("ن", 10), 10))
	})
	s.Run("slice count", func() {
		s.NoError(CheckSliceCount("fields", MaxCorrectionFields, MaxCorrectionFields))
		s.Error(CheckSliceCount("fields", MaxCorrectionFields+1, MaxCorrectionFields))
	})
}

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"ApplicantPhone": "applicant_phone",
		"BuildingID":     "building_id",
		"unit":           "unit",
	}
	for in, want := range cases {
		require.Equal(t, want, ToSnakeCase(in))
	}
	assert.Equal(t, "", ToSnakeCase(""))
}
