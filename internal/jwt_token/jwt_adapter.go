package jwttoken

import (
	"unitgate/pkg/platform/middleware/auth"
)

// ValidatorAdapter exposes JWTService as the auth middleware's TokenValidator.
type ValidatorAdapter struct {
	service *JWTService
}

func NewValidatorAdapter(service *JWTService) *ValidatorAdapter {
	return &ValidatorAdapter{service: service}
}

func (a *ValidatorAdapter) ValidateToken(tokenString string) (*auth.ActorClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.ActorClaims{
		UserID:           claims.Subject,
		Phone:            claims.Phone,
		FullName:         claims.FullName,
		ManagedBuildings: claims.ManagedBuildings,
	}, nil
}

var _ auth.TokenValidator = (*ValidatorAdapter)(nil)
