package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/requestcontext"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encode failure cannot change the status.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError translates a domain error into an HTTP status and JSON body.
// Errors without a domain code become 500 without leaking their message.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		response := map[string]string{
			"error": DomainCodeToHTTPCode(domainErr.Code),
		}
		if domainErr.Message != "" && domainErr.Code != dErrors.CodeInternal {
			response["error_description"] = domainErr.Message
		}
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), response)
		return
	}

	WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeConflict, dErrors.CodeInvariantViolation, dErrors.CodeAlreadyUsed, dErrors.CodeOrdering:
		return http.StatusConflict
	case dErrors.CodeExpired:
		return http.StatusGone
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodePolicyViolation:
		return http.StatusPreconditionFailed
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the JSON "error" field.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation:
		return "validation_error"
	case dErrors.CodeConflict, dErrors.CodeInvariantViolation:
		return "conflict"
	case dErrors.CodeAlreadyUsed:
		return "already_used"
	case dErrors.CodeOrdering:
		return "ordering_violation"
	case dErrors.CodeExpired:
		return "expired"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodePolicyViolation:
		return "policy_violation"
	case dErrors.CodeTimeout:
		return "timeout"
	case dErrors.CodeUnavailable:
		return "service_unavailable"
	default:
		return "internal_error"
	}
}

// RequireActor extracts the authenticated actor placed by the auth middleware.
func RequireActor(ctx context.Context, logger *slog.Logger, requestID string) (id.Actor, error) {
	actor, ok := requestcontext.Actor(ctx)
	if !ok || actor.UserID.IsNil() {
		if logger != nil {
			logger.ErrorContext(ctx, "actor missing from context despite auth middleware",
				"request_id", requestID)
		}
		return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return actor, nil
}
