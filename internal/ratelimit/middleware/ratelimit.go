package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"unitgate/internal/platform/privacy"
	"unitgate/internal/ratelimit/metrics"
	"unitgate/internal/ratelimit/models"
	"unitgate/pkg/platform/httputil"
	"unitgate/pkg/requestcontext"
)

type BucketStore interface {
	AllowN(ctx context.Context, key string, cost, limit int, window time.Duration) (*models.RateLimitResult, error)
}

type Middleware struct {
	store   BucketStore
	limits  map[models.EndpointClass]models.Limit
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Middleware)

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

// New builds the middleware. Classes without a limit are not throttled.
func New(store BucketStore, limits map[models.EndpointClass]models.Limit, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limits: limits,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RateLimit throttles by client IP. Store failures let the request through.
func (m *Middleware) RateLimit(class models.EndpointClass) func(http.Handler) http.Handler {
	limit, ok := m.limits[class]
	return func(next http.Handler) http.Handler {
		if !ok || limit.Requests <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.Client(ctx).IP

			result, err := m.store.AllowN(ctx, models.Key(class, ip), 1, limit.Requests, limit.Window)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"class", string(class),
					"ip_prefix", privacy.AnonymizeIP(ip),
				)
				if m.metrics != nil {
					m.metrics.IncrementStoreErrors()
				}
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)

			if !result.Allowed {
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", string(class),
					"ip_prefix", privacy.AnonymizeIP(ip),
					"request_id", requestcontext.RequestID(ctx),
				)
				if m.metrics != nil {
					m.metrics.IncrementRejected(string(class))
				}
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many requests from this address. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}
