package trace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sr),
		sdktrace.WithResource(resource.Empty()),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestInitTracing_Disabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	shutdown, err := InitTracing(context.Background(), &Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, prev, otel.GetTracerProvider())
}

func TestInitTracing_Protocols(t *testing.T) {
	origRes, origHTTP, origGRPC := newResource, newOTLPTraceHTTP, newOTLPTraceGRPC
	prev := otel.GetTracerProvider()
	t.Cleanup(func() {
		newResource, newOTLPTraceHTTP, newOTLPTraceGRPC = origRes, origHTTP, origGRPC
		otel.SetTracerProvider(prev)
	})

	var used string
	newResource = func(ctx context.Context, opts ...resource.Option) (*resource.Resource, error) {
		return resource.Empty(), nil
	}
	newOTLPTraceHTTP = func(ctx context.Context, opts ...otlptracehttp.Option) (*otlptrace.Exporter, error) {
		used = "http"
		return nil, nil
	}
	newOTLPTraceGRPC = func(ctx context.Context, opts ...otlptracegrpc.Option) (*otlptrace.Exporter, error) {
		used = "grpc"
		return nil, nil
	}

	for _, proto := range []string{"http", "grpc", ""} {
		cfg := &Config{
			Enabled:     true,
			ServiceName: "catalog-test",
			Protocol:    proto,
			Insecure:    true,
			SamplerRate: 2.5,
			Headers:     map[string]string{"x-test": "1"},
		}
		shutdown, err := InitTracing(context.Background(), cfg, zap.NewNop())
		require.NoError(t, err)
		want := proto
		if want == "" {
			want = "grpc"
		}
		assert.Equal(t, want, used)
		assert.NoError(t, shutdown(context.Background()))
	}
}

func TestInitTracing_Errors(t *testing.T) {
	origRes, origGRPC := newResource, newOTLPTraceGRPC
	t.Cleanup(func() { newResource, newOTLPTraceGRPC = origRes, origGRPC })

	newResource = func(ctx context.Context, opts ...resource.Option) (*resource.Resource, error) {
		return nil, errors.New("boom")
	}
	_, err := InitTracing(context.Background(), &Config{Enabled: true}, zap.NewNop())
	assert.ErrorContains(t, err, "create resource")

	newResource = func(ctx context.Context, opts ...resource.Option) (*resource.Resource, error) {
		return resource.Empty(), nil
	}
	newOTLPTraceGRPC = func(ctx context.Context, opts ...otlptracegrpc.Option) (*otlptrace.Exporter, error) {
		return nil, errors.New("dial")
	}
	_, err = InitTracing(context.Background(), &Config{Enabled: true}, zap.NewNop())
	assert.ErrorContains(t, err, "create exporter")
}

func TestBuilder_StartWithAttrsEnd(t *testing.T) {
	sr := useRecorder(t)

	scope := Tracer("trace-test").Start(context.Background(), "op")
	require.NotNil(t, scope)
	scope.WithAttrs(attribute.String("k", "v")).End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "op", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("k", "v"))
}

func TestSpanScope_Fail(t *testing.T) {
	sr := useRecorder(t)

	scope := Tracer("trace-test").Start(context.Background(), "failing")
	scope.Fail(nil)
	scope.Fail(errors.New("denied"))
	scope.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "denied", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1)

	// nil scope is safe
	var nilScope *SpanScope
	nilScope.Fail(errors.New("x"))
	nilScope.End()
}
