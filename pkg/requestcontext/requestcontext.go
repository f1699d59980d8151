// Package requestcontext carries request-scoped values (request id, request
// time, authenticated actor, client info) through context.Context.
package requestcontext

import (
	"context"
	"time"

	id "unitgate/pkg/domain"
)

type (
	requestIDKey   struct{}
	requestTimeKey struct{}
	actorKey       struct{}
	clientKey      struct{}
)

// ClientInfo describes the calling user agent for request logs.
type ClientInfo struct {
	IP      string
	Browser string
	OS      string
	Mobile  bool
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request id or "" outside an HTTP request.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithTime pins "now" for everything downstream of ctx.
// Used by the request time middleware, workers and tests.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the request-scoped time, falling back to time.Now().
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithActor(ctx context.Context, actor id.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Actor returns the authenticated actor and whether one is present.
func Actor(ctx context.Context) (id.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(id.Actor)
	return a, ok
}

func WithClient(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientKey{}, info)
}

func Client(ctx context.Context) ClientInfo {
	v, _ := ctx.Value(clientKey{}).(ClientInfo)
	return v
}
