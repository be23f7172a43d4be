// Package nats publishes advertisement lifecycle events.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

var tracer = otel.Tracer("classifieds/nats-publisher")

// Event is the envelope every message body is wrapped in.
type Event struct {
	ID         string          `json:"id"`
	Subject    string          `json:"subject"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// Publisher implements domain.EventPublisher on a core NATS connection.
type Publisher struct {
	conn *nats.Conn
	log  *logger.Logger
	now  func() time.Time
}

func connectOptions(clientName string, log *logger.Logger) []nats.Option {
	return []nats.Option{
		nats.Name(clientName),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			fields := []zap.Field{zap.Error(err)}
			if sub != nil {
				fields = append(fields, zap.String("subject", sub.Subject))
			}
			log.Error("NATS async error", fields...)
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}
}

// NewPublisher connects to the server at url.
func NewPublisher(url string, log *logger.Logger, serviceName string) (*Publisher, error) {
	log = log.Named("nats")
	conn, err := nats.Connect(url, connectOptions(serviceName+" events", log)...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	log.Info("Connected to NATS", zap.String("url", conn.ConnectedUrl()))
	return &Publisher{conn: conn, log: log, now: time.Now}, nil
}

// NewMessage wraps data in an Event and injects the trace context of ctx.
// The event id doubles as the JetStream de-duplication id.
func NewMessage(ctx context.Context, subject string, data interface{}, at time.Time) (*nats.Msg, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", subject, err)
	}
	event := Event{ID: uuid.NewString(), Subject: subject, OccurredAt: at.UTC(), Data: raw}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", subject, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = body
	msg.Header.Set(nats.MsgIdHdr, event.ID)
	msg.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, HeaderCarrier(msg.Header))
	return msg, nil
}

func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	ctx, span := tracer.Start(ctx, "NATS.Publish "+subject)
	defer span.End()

	msg, err := NewMessage(ctx, subject, data, p.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode")
		return err
	}
	span.SetAttributes(
		attribute.String("messaging.destination.name", subject),
		attribute.String("messaging.message.id", msg.Header.Get(nats.MsgIdHdr)),
	)
	if err := p.conn.PublishMsg(msg); err != nil {
		p.log.Error("Event not published", zap.String("subject", subject), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish")
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.log.Debug("Event published", zap.String("subject", subject), zap.Int("bytes", len(msg.Data)))
	return nil
}

// HeaderCarrier adapts NATS headers to the OpenTelemetry propagation API.
type HeaderCarrier nats.Header

func (c HeaderCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c HeaderCarrier) Set(key string, value string) {
	nats.Header(c).Set(key, value)
}

func (c HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// Close drains pending messages before closing the connection.
func (p *Publisher) Close() {
	if p.conn == nil || p.conn.IsClosed() {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.log.Error("NATS drain failed", zap.Error(err))
		p.conn.Close()
	}
}
