// Package requesttime pins a single "now" per HTTP request so that every
// timestamp written while handling it (status transitions, audit events,
// expiry checks) agrees.
package requesttime

import (
	"net/http"
	"time"

	"unitgate/pkg/requestcontext"
)

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
