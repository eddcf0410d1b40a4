package tracer

import (
	"context"
	"testing"

	"edushelf-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestInitTracerDisabled(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")

	shutdown := InitTracer(context.Background(), logger.NewNopLogger())
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracerEnabled(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "127.0.0.1:1")

	shutdown := InitTracer(context.Background(), logger.NewNopLogger())
	assert.NotNil(t, shutdown)
}
