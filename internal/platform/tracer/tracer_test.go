package tracer

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestInit_LocalOnly(t *testing.T) {
	p := Init(Config{ServiceName: "classifieds-test"}, logger.NewNop())
	require.NotNil(t, p)
	assert.Nil(t, p.conn)

	_, span := p.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestConfig_Sampler(t *testing.T) {
	root := sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       trace.TraceID{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		Name:          "op",
	}
	for _, ratio := range []float64{0, -1, 1, 2} {
		got := Config{SampleRatio: ratio}.sampler().ShouldSample(root)
		assert.Equal(t, sdktrace.RecordAndSample, got.Decision, "ratio %v", ratio)
	}

	got := Config{SampleRatio: 0.0001}.sampler().ShouldSample(root)
	assert.Equal(t, sdktrace.Drop, got.Decision)
}
