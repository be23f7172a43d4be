package nats

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestNewMessage_InjectsTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "parent")
	defer span.End()

	at := time.Date(2026, 3, 14, 15, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	msg, err := NewMessage(ctx, "ad.created", map[string]int64{"id": 7}, at)
	require.NoError(t, err)

	assert.Equal(t, "ad.created", msg.Subject)
	var event Event
	require.NoError(t, json.Unmarshal(msg.Data, &event))
	assert.Equal(t, "ad.created", event.Subject)
	assert.True(t, event.OccurredAt.Equal(at))
	assert.Equal(t, time.UTC, event.OccurredAt.Location())
	assert.JSONEq(t, `{"id":7}`, string(event.Data))

	assert.Equal(t, event.ID, msg.Header.Get(nats.MsgIdHdr))
	assert.Equal(t, "application/json", msg.Header.Get("Content-Type"))

	traceparent := msg.Header.Get("traceparent")
	require.NotEmpty(t, traceparent)
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())

	extracted := propagation.TraceContext{}.Extract(context.Background(), HeaderCarrier(msg.Header))
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(extracted).TraceID())
}

func TestNewMessage_UnencodableData(t *testing.T) {
	_, err := NewMessage(context.Background(), "ad.created", make(chan int), time.Now())
	assert.Error(t, err)
}

func TestHeaderCarrier_Keys(t *testing.T) {
	c := HeaderCarrier{}
	c.Set("a", "1")
	c.Set("b", "2")
	assert.ElementsMatch(t, []string{"a", "b"}, c.Keys())
	assert.Equal(t, "1", c.Get("a"))
}

func TestNewMessage_UniqueIDs(t *testing.T) {
	a, err := NewMessage(context.Background(), "ad.deleted", 1, time.Now())
	require.NoError(t, err)
	b, err := NewMessage(context.Background(), "ad.deleted", 1, time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, a.Header.Get(nats.MsgIdHdr), b.Header.Get(nats.MsgIdHdr))
}
