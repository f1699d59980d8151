package service

import (
	"errors"

	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/platform/sentinel"
)

// translate maps store and directory errors to domain errors. Domain errors
// pass through, except invariant violations which surface as conflicts.
func translate(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrInvalidState):
		return &dErrors.Error{Code: dErrors.CodeConflict, Message: "request changed concurrently, reload and retry", Err: err}
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return &dErrors.Error{Code: dErrors.CodeConflict, Message: "an active request already exists for this unit", Err: err}
	case errors.Is(err, sentinel.ErrUnavailable):
		return &dErrors.Error{Code: dErrors.CodeUnavailable, Message: "unit directory unavailable", Err: err}
	case errors.Is(err, sentinel.ErrNotFound):
		return &dErrors.Error{Code: dErrors.CodeNotFound, Message: "not found", Err: err}
	case dErrors.HasCode(err, dErrors.CodeInvariantViolation):
		return &dErrors.Error{Code: dErrors.CodeConflict, Message: err.Error(), Err: err}
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
}

func requestNotFound(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "membership request not found")
	}
	return translate(err, "load membership request")
}

func forbidden(msg string) error {
	return dErrors.New(dErrors.CodeForbidden, msg)
}
