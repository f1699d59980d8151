package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "unitgate/pkg/domain"
	dErrors "unitgate/pkg/domain-errors"
	"unitgate/pkg/requestcontext"
)

type rejectInput struct {
	Reason string `json:"reason"`
	steps  []string
}

func (r *rejectInput) Sanitize() {
	r.steps = append(r.steps, "sanitize")
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *rejectInput) Normalize() {
	r.steps = append(r.steps, "normalize")
}

func (r *rejectInput) Validate() error {
	r.steps = append(r.steps, "validate")
	if r.Reason == "" {
		return errors.New("reason is required")
	}
	return nil
}

type unitInput struct {
	Unit string `json:"unit"`
}

func (r *unitInput) Validate() error {
	if r.Unit == "" {
		return dErrors.New(dErrors.CodeBadRequest, "unit is required")
	}
	return nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()
	post := func(body string) *http.Request {
		return httptest.NewRequest(http.MethodPost, "/membership/x/reject", strings.NewReader(body))
	}

	t.Run("runs preparation steps in order", func(t *testing.T) {
		w := httptest.NewRecorder()
		got, ok := DecodeAndPrepare[rejectInput](w, post(`{"reason":"  wrong unit "}`), logger, ctx, "rid")
		require.True(t, ok)
		assert.Equal(t, "wrong unit", got.Reason)
		assert.Equal(t, []string{"sanitize", "normalize", "validate"}, got.steps)
	})

	t.Run("plain validation error becomes validation_error", func(t *testing.T) {
		w := httptest.NewRecorder()
		got, ok := DecodeAndPrepare[rejectInput](w, post(`{"reason":"   "}`), logger, ctx, "rid")
		assert.False(t, ok)
		assert.Nil(t, got)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "validation_error", body["error"])
		assert.Equal(t, "reason is required", body["error_description"])
	})

	t.Run("domain error keeps its code", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[unitInput](w, post(`{}`), logger, ctx, "rid")
		assert.False(t, ok)
		assert.Equal(t, "bad_request", decodeError(t, w)["error"])
	})

	t.Run("malformed json", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeJSON[unitInput](w, post(`{unit:`), logger, ctx, "rid")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("oversized body", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := post(`{"unit":"` + strings.Repeat("9", 100) + `"}`)
		req.Body = http.MaxBytesReader(w, req.Body, 10)
		_, ok := DecodeJSON[unitInput](w, req, logger, ctx, "rid")
		assert.False(t, ok)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		code   dErrors.Code
		status int
		name   string
	}{
		{dErrors.CodeValidation, http.StatusBadRequest, "validation_error"},
		{dErrors.CodeConflict, http.StatusConflict, "conflict"},
		{dErrors.CodeAlreadyUsed, http.StatusConflict, "already_used"},
		{dErrors.CodeOrdering, http.StatusConflict, "ordering_violation"},
		{dErrors.CodeExpired, http.StatusGone, "expired"},
		{dErrors.CodeForbidden, http.StatusForbidden, "forbidden"},
		{dErrors.CodeNotFound, http.StatusNotFound, "not_found"},
		{dErrors.CodeUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.Wrap(errors.New("cause"), tc.code, "boom"))
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.name, decodeError(t, w)["error"])
		})
	}

	t.Run("internal error hides message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "pq: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "pq:")
	})

	t.Run("non-domain error", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("raw"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal_error", decodeError(t, w)["error"])
	})
}

func TestRequireActor(t *testing.T) {
	_, err := RequireActor(context.Background(), nil, "rid")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	actor := id.Actor{UserID: id.UserID(uuid.New()), Phone: "09120000000"}
	got, err := RequireActor(requestcontext.WithActor(context.Background(), actor), nil, "rid")
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, got.UserID)
}
