// Package tracer installs the process-wide OpenTelemetry tracer provider.
package tracer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const dialTimeout = 10 * time.Second

// Config selects where spans go. An empty Endpoint keeps tracing local.
type Config struct {
	ServiceName string
	Endpoint    string
	// SampleRatio applies to root spans; values outside (0, 1] sample everything.
	SampleRatio float64
}

// Provider is the installed tracer provider together with the collector
// connection it exports through.
type Provider struct {
	*sdktrace.TracerProvider
	conn *grpc.ClientConn
}

// Shutdown flushes pending spans and closes the collector connection.
func (p *Provider) Shutdown(ctx context.Context) error {
	err := p.TracerProvider.Shutdown(ctx)
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}

func (c Config) sampler() sdktrace.Sampler {
	if c.SampleRatio <= 0 || c.SampleRatio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRatio))
}

// Init installs the W3C propagators and a global provider. Exporter failures
// are logged and leave a provider that records spans without exporting them.
func Init(cfg Config, log *logger.Logger) *Provider {
	log = log.Named("tracer")
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	opts := []sdktrace.TracerProviderOption{sdktrace.WithSampler(cfg.sampler())}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.ServiceName)),
	)
	if err != nil {
		log.Warn("Falling back to the default trace resource", zap.Error(err))
	} else {
		opts = append(opts, sdktrace.WithResource(res))
	}

	p := &Provider{}
	if cfg.Endpoint == "" {
		log.Info("Span export disabled, OTEL_EXPORTER_OTLP_ENDPOINT is empty")
	} else {
		exporter, conn, err := dialCollector(cfg.Endpoint)
		if err != nil {
			log.Error("Span export disabled", zap.String("endpoint", cfg.Endpoint), zap.Error(err))
		} else {
			p.conn = conn
			opts = append(opts, sdktrace.WithBatcher(exporter))
			log.Info("Exporting spans", zap.String("endpoint", cfg.Endpoint), zap.Float64("sample_ratio", cfg.SampleRatio))
		}
	}

	p.TracerProvider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(p.TracerProvider)
	return p
}

func dialCollector(endpoint string) (*otlptrace.Exporter, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("otlp client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("otlp exporter: %w", err)
	}
	return exporter, conn, nil
}
