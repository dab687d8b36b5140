package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracer_RequiresEndpoint(t *testing.T) {
	_, err := InitTracer(context.Background(), TracingConfig{ServiceName: "stroked"})
	assert.Error(t, err)
}

func TestInitTracer_InstallsGlobalProvider(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	shutdown, err := InitTracer(context.Background(), TracingConfig{
		ServiceName: "stroked",
		Endpoint:    "127.0.0.1:4317",
		Insecure:    true,
		SampleRatio: 0.5,
	})
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = shutdown(ctx)
}
