package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracerWithoutProvider(t *testing.T) {
	ctx, span := Tracer("test").Start(context.Background(), "noop")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
}
