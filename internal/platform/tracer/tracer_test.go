package tracer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"unitgate/internal/platform/tracer"
)

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	newCtx, span := tracer.NewNoop().Start(ctx, tracer.SpanSubmit, tracer.String(tracer.AttrBuildingID, "b"))
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)
	span.SetAttributes(tracer.Bool(tracer.AttrFastPath, true))
	span.AddEvent("audit.emitted")
	span.End(errors.New("ignored"))
}

func TestOTelTracer_WithProvider(t *testing.T) {
	tr := tracer.NewOTel(noop.NewTracerProvider().Tracer("test"))
	ctx, span := tr.Start(context.Background(), tracer.SpanManagerApprove,
		tracer.String(tracer.AttrRequestID, "r-1"),
		tracer.Int64("attempt", 1),
	)
	require.NotNil(t, ctx)
	span.SetAttributes(tracer.Bool(tracer.AttrCompensated, false))
	span.End(nil)
}

func TestHashPhone(t *testing.T) {
	a := tracer.HashPhone("+98 912 000 1111")
	b := tracer.HashPhone("09120001111")
	assert.Equal(t, a, b, "hash is taken over the normalized number")
	assert.Len(t, a, 16)
	assert.Empty(t, tracer.HashPhone(""))
}
