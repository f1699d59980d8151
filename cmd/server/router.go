package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	conflicthandler "unitgate/internal/conflict/handler"
	invitationhandler "unitgate/internal/invitation/handler"
	jwttoken "unitgate/internal/jwt_token"
	membershiphandler "unitgate/internal/membership/handler"
	"unitgate/internal/platform/config"
	"unitgate/internal/platform/health"
	ratelimitmw "unitgate/internal/ratelimit/middleware"
	"unitgate/internal/ratelimit/models"
	"unitgate/pkg/platform/middleware/auth"
	"unitgate/pkg/platform/middleware/request"
	"unitgate/pkg/platform/middleware/requesttime"
)

const maxBodyBytes = 1 << 20

func newRouter(cfg config.Config, log *slog.Logger, svcs *services, limiter *ratelimitmw.Middleware, checks *health.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(request.ClientInfo)
	r.Use(request.Logger(log))
	r.Use(request.Latency(request.NewMetrics()))

	checks.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	validator := jwttoken.NewValidatorAdapter(svcs.tokens)

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(cfg.Server.RequestTimeout))
		r.Use(request.BodyLimit(maxBodyBytes))
		r.Use(request.ContentTypeJSON)
		r.Use(requesttime.Middleware)
		// Handlers require an actor per route; GET /invite-links/{token} is public.
		r.Use(auth.OptionalAuth(validator, log))

		membershiphandler.New(svcs.membership, log).Register(r)
		conflicthandler.New(svcs.conflict, log).Register(r)
		invitationhandler.New(svcs.invitation, log,
			invitationhandler.WithGuards(
				limiter.RateLimit(models.ClassTokenLookup),
				limiter.RateLimit(models.ClassCodeRedeem),
			),
		).Register(r)
	})

	return r
}
