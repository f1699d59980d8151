package request

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unitgate/pkg/requestcontext"
)

func TestRequestID(t *testing.T) {
	capture := func(out *string) http.Handler {
		return RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*out = requestcontext.RequestID(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
	}

	t.Run("generates UUID when header missing", func(t *testing.T) {
		var got string
		w := httptest.NewRecorder()
		capture(&got).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/membership/list", nil))

		assert.Len(t, got, 36)
		assert.Equal(t, got, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps valid client id", func(t *testing.T) {
		var got string
		req := httptest.NewRequest(http.MethodGet, "/membership/list", nil)
		req.Header.Set("X-Request-ID", "onboard.req_42")
		w := httptest.NewRecorder()
		capture(&got).ServeHTTP(w, req)

		assert.Equal(t, "onboard.req_42", got)
		assert.Equal(t, "onboard.req_42", w.Header().Get("X-Request-ID"))
	})

	for name, bad := range map[string]string{
		"too long":        strings.Repeat("a", MaxRequestIDLength+1),
		"log injection":   "abc\nlevel=ERROR",
		"spaces":          "abc def",
		"html characters": "<script>",
	} {
		t.Run("replaces "+name, func(t *testing.T) {
			var got string
			req := httptest.NewRequest(http.MethodGet, "/membership/list", nil)
			req.Header.Set("X-Request-ID", bad)
			capture(&got).ServeHTTP(httptest.NewRecorder(), req)

			assert.NotEqual(t, bad, got)
			assert.Len(t, got, 36)
		})
	}
}

func TestClientInfo(t *testing.T) {
	var info requestcontext.ClientInfo
	handler := ClientInfo(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info = requestcontext.Client(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/membership/list", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.7", info.IP)
	assert.Equal(t, "Safari", info.Browser)
	assert.True(t, info.Mobile)
}

func TestClientInfo_FallsBackToRemoteAddr(t *testing.T) {
	var info requestcontext.ClientInfo
	handler := ClientInfo(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info = requestcontext.Client(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/membership/list", nil)
	req.RemoteAddr = "192.0.2.10:5511"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.10", info.IP)
	assert.Empty(t, info.Browser)
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("directory exploded")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/membership/create", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "directory exploded")
}

func TestLogger_SkipsHealthyProbes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ok := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Empty(t, buf.String())

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/membership/list", nil))
	assert.Contains(t, buf.String(), "path=/membership/list")
	assert.Contains(t, buf.String(), "status=200")
}

func TestContentTypeJSON(t *testing.T) {
	handler := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"json post", http.MethodPost, "application/json", http.StatusNoContent},
		{"json with charset", http.MethodPost, "application/json; charset=utf-8", http.StatusNoContent},
		{"form post", http.MethodPost, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"get ignores header", http.MethodGet, "text/plain", http.StatusNoContent},
		{"missing header", http.MethodPost, "", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/membership/create", strings.NewReader("{}"))
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	t.Run("body within limit is readable", func(t *testing.T) {
		handler := BodyLimit(64)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Len(t, data, 64)
		}))
		handler.ServeHTTP(httptest.NewRecorder(),
			httptest.NewRequest(http.MethodPost, "/membership/create", strings.NewReader(strings.Repeat("x", 64))))
	})

	t.Run("oversized body fails on read", func(t *testing.T) {
		handler := BodyLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := io.ReadAll(r.Body)
			var maxErr *http.MaxBytesError
			require.ErrorAs(t, err, &maxErr)
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w,
			httptest.NewRequest(http.MethodPost, "/membership/create", strings.NewReader(strings.Repeat("x", 32))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
