package jwttoken

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/requestcontext"
)

const (
	accessAudience = "unitgate-api"
	inviteAudience = "unitgate-invite"
)

// AccessTokenClaims is the payload of an actor access token. The subject is the user id.
type AccessTokenClaims struct {
	Phone            string   `json:"phone"`
	FullName         string   `json:"name,omitempty"`
	ManagedBuildings []string `json:"managed_buildings,omitempty"`
	jwt.RegisteredClaims
}

// InviteClaims is the payload of a one-shot invite link token. The JWT id is the link id.
type InviteClaims struct {
	BuildingID string `json:"building_id"`
	UnitNumber string `json:"unit_number"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService signs and validates HS256 access and invite tokens. The two
// kinds use different audiences so one can never be replayed as the other.
type JWTService struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

func NewJWTService(signingKey, issuer string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

func (s *JWTService) GenerateAccessToken(ctx context.Context, actor id.Actor) (string, error) {
	if actor.UserID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}
	if id.NormalizePhone(actor.Phone) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "phone is required")
	}

	managed := make([]string, 0, len(actor.ManagedBuildings))
	for _, b := range actor.ManagedBuildings {
		managed = append(managed, b.String())
	}

	now := requestcontext.Now(ctx)
	return s.sign(AccessTokenClaims{
		Phone:            id.NormalizePhone(actor.Phone),
		FullName:         actor.FullName,
		ManagedBuildings: managed,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{accessAudience},
			ID:        uuid.NewString(),
		},
	})
}

func (s *JWTService) ValidateToken(tokenString string) (*AccessTokenClaims, error) {
	claims := new(AccessTokenClaims)
	if err := s.parse(tokenString, claims, accessAudience, time.Time{}); err != nil {
		if dErrors.HasCode(err, dErrors.CodeExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, err
	}
	return claims, nil
}

// InvitePayload describes the link a token is minted for.
type InvitePayload struct {
	LinkID     id.InviteLinkID
	BuildingID id.BuildingID
	UnitNumber string
	Role       string
	ExpiresAt  time.Time
}

func (s *JWTService) SignInvite(ctx context.Context, p InvitePayload) (string, error) {
	return s.sign(InviteClaims{
		BuildingID: p.BuildingID.String(),
		UnitNumber: p.UnitNumber,
		Role:       p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        p.LinkID.String(),
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(requestcontext.Now(ctx)),
			Issuer:    s.issuer,
			Audience:  []string{inviteAudience},
		},
	})
}

// ParseInvite verifies the signature and audience and checks expiry against
// now. An expired token yields CodeExpired; any other defect CodeNotFound,
// since a forged token names no link.
func (s *JWTService) ParseInvite(tokenString string, now time.Time) (*InviteClaims, error) {
	claims := new(InviteClaims)
	if err := s.parse(tokenString, claims, inviteAudience, now); err != nil {
		if dErrors.HasCode(err, dErrors.CodeExpired) {
			return nil, err
		}
		return nil, &dErrors.Error{Code: dErrors.CodeNotFound, Message: "invite link not found", Err: err}
	}
	return claims, nil
}

func (s *JWTService) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign token")
	}
	return signed, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims, audience string, now time.Time) error {
	if tokenString == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "empty token")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	}
	if !now.IsZero() {
		opts = append(opts, jwt.WithTimeFunc(func() time.Time { return now }))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return dErrors.Wrap(err, dErrors.CodeExpired, "token expired")
		}
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid token")
	}
	if !parsed.Valid {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid token")
	}
	return nil
}
