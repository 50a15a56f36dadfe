package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "adminhub-test", Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTraceLayer_EndSpanRecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	layer := NewTraceLayer(tp.Tracer("test"))

	_, span := layer.TraceService(context.Background(), "EventService", "Approve")
	EndSpan(span, errors.New("boom"))

	_, ok := layer.TraceRepositoryMethod(context.Background(), "List", "event_posts")
	EndSpan(ok, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "EventService.Approve", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "repository.List", ended[1].Name())
	assert.Equal(t, codes.Unset, ended[1].Status().Code)
}
