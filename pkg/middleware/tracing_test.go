package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// installTracer swaps the global provider for one exporting into memory.
func installTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return exporter
}

func tracedRouter(status int) *chi.Mux {
	r := chi.NewRouter()
	r.Use(Tracing("storefront-test"))
	r.Get("/api/v1/catalog/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
	})
	return r
}

func attrs(span tracetest.SpanStub) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(span.Attributes))
	for _, kv := range span.Attributes {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracing_NamesSpanAfterRoute(t *testing.T) {
	exporter := installTracer(t)

	rec := httptest.NewRecorder()
	tracedRouter(http.StatusOK).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/3", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/v1/catalog/{id}", spans[0].Name)

	a := attrs(spans[0])
	assert.Equal(t, "/api/v1/catalog/{id}", a["http.route"].AsString())
	assert.EqualValues(t, 200, a["http.status_code"].AsInt64())
	assert.EqualValues(t, 2, a["http.response_size"].AsInt64())
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
}

func TestTracing_StatusHandling(t *testing.T) {
	tests := []struct {
		status int
		want   codes.Code
	}{
		{http.StatusNotFound, codes.Unset},
		{http.StatusServiceUnavailable, codes.Error},
	}
	for _, tt := range tests {
		exporter := installTracer(t)
		tracedRouter(tt.status).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/catalog/3", nil))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, tt.want, spans[0].Status.Code, "status %d", tt.status)
		assert.EqualValues(t, tt.status, attrs(spans[0])["http.status_code"].AsInt64())
	}
}

func TestTracing_ContinuesInboundTrace(t *testing.T) {
	exporter := installTracer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/3", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	tracedRouter(http.StatusOK).ServeHTTP(rec, req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent.SpanID().String())

	assert.Contains(t, rec.Header().Get("traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")
}

func TestTracing_UnmatchedRouteKeepsPath(t *testing.T) {
	exporter := installTracer(t)

	handler := Tracing("storefront-test")(statusHandler(http.StatusOK))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/raw/path", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /raw/path", spans[0].Name)
	assert.NotContains(t, attrs(spans[0]), attribute.Key("http.route"))
}

func TestRequestScheme(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "http", requestScheme(req))

	req.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https", requestScheme(req))
}
