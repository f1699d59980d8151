package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "unitgate/pkg/domain"
	"unitgate/pkg/requestcontext"
)

// TokenValidator validates bearer access tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*ActorClaims, error)
}

// ActorClaims is the validated payload of an access token.
type ActorClaims struct {
	UserID           string
	Phone            string
	FullName         string
	ManagedBuildings []string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// toActor parses the string claims into a typed Actor. A token without a
// phone cannot be matched against any claim and is rejected.
func toActor(claims *ActorClaims) (id.Actor, error) {
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return id.Actor{}, fmt.Errorf("invalid user_id: %w", err)
	}
	phone := id.NormalizePhone(claims.Phone)
	if phone == "" {
		return id.Actor{}, fmt.Errorf("missing phone claim")
	}
	managed := make([]id.BuildingID, 0, len(claims.ManagedBuildings))
	for _, raw := range claims.ManagedBuildings {
		b, err := id.ParseBuildingID(raw)
		if err != nil {
			return id.Actor{}, fmt.Errorf("invalid managed building: %w", err)
		}
		managed = append(managed, b)
	}
	return id.Actor{
		UserID:           userID,
		Phone:            phone,
		FullName:         claims.FullName,
		ManagedBuildings: managed,
	}, nil
}

// RequireAuth validates the bearer token and stores the Actor in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			actor, err := toActor(claims)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed token claims",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}

// OptionalAuth attaches the Actor when a bearer token is present and lets
// anonymous requests through. A present but invalid token is still rejected;
// handlers decide per route whether an Actor is required.
func OptionalAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	required := RequireAuth(validator, logger)
	return func(next http.Handler) http.Handler {
		authed := required(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			authed.ServeHTTP(w, r)
		})
	}
}
