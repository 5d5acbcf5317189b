package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/commutewise/commutewise/internal/api/middleware"
)

func logOneRequest(t *testing.T, req *http.Request, handler http.HandlerFunc) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	log := zerolog.New(&buf)

	w := httptest.NewRecorder()
	middleware.Logger(log)(handler).ServeHTTP(w, req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_LogsRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles", http.NoBody)
	req.Header.Set("User-Agent", "commutewise-web/1.4")

	entry := logOneRequest(t, req, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	assert.Equal(t, "request completed", entry["message"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/v1/vehicles", entry["path"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, float64(12), entry["bytes"])
	assert.Equal(t, "commutewise-web/1.4", entry["user_agent"])
	assert.NotEmpty(t, entry["duration"])
}

func TestLogger_LogsErrorStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/calculations:compute", http.NoBody)

	entry := logOneRequest(t, req, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, float64(500), entry["status"])
}

func TestLogger_DefaultStatusCode(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)

	entry := logOneRequest(t, req, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	assert.Equal(t, float64(200), entry["status"])
}

func TestLogger_IncludesSessionID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/calculations:compute", http.NoBody)
	req.Header.Set(middleware.SessionHeader, "ses_9f2c")

	entry := logOneRequest(t, req, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	assert.Equal(t, "ses_9f2c", entry["session_id"])
}

func TestLogger_OmitsSessionIDWithoutHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles", http.NoBody)

	entry := logOneRequest(t, req, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	assert.NotContains(t, entry, "session_id")
}

func TestLogger_IncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	handler := middleware.RequestID(
		middleware.Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})),
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles", http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	requestID, ok := entry["request_id"].(string)
	assert.True(t, ok)
	assert.Contains(t, requestID, "req_")
}

func TestLogger_IncludesTraceID(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var buf bytes.Buffer
	log := zerolog.New(&buf)

	handler := middleware.Tracing("commutewise-api")(
		middleware.Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})),
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles", http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	traceID, ok := entry["trace_id"].(string)
	assert.True(t, ok)
	assert.Len(t, traceID, 32)

	spanID, ok := entry["span_id"].(string)
	assert.True(t, ok)
	assert.Len(t, spanID, 16)
}
