package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	NewWithProvider(provider, "test")

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		setGlobal(nil)
	})
	return recorder
}

func TestInit_Disabled(t *testing.T) {
	tel, err := Init(context.Background(), &Config{Enabled: false, ServiceName: "svc"})
	require.NoError(t, err)
	assert.NotNil(t, tel.Tracer())
	assert.NoError(t, Shutdown(context.Background()))

	tel, err = Init(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, tel.Tracer())
}

func TestStartSpan_Records(t *testing.T) {
	recorder := setupRecorder(t)

	ctx, span := StartSpan(context.Background(), "service.match.find")
	assert.NotEmpty(t, GetTraceID(ctx))
	RecordError(span, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "service.match.find", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestGetTraceID_Empty(t *testing.T) {
	assert.Equal(t, "", GetTraceID(context.Background()))
}

func TestTracingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := setupRecorder(t)

	router := gin.New()
	router.Use(TracingMiddleware("test"))
	router.GET("/vendors/:id", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/vendors/42", nil))

	assert.NotEmpty(t, w.Header().Get(TraceIDHeader))
	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "GET /vendors/:id", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestTracingMiddleware_SkipsHealthChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := setupRecorder(t)

	router := gin.New()
	router.Use(TracingMiddleware("test"))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/events/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/7", nil))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "GET /events/:id", ended[0].Name())
	assert.NotEqual(t, codes.Error, ended[0].Status().Code)
}
