package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
	Prefix           string
}

// Metrics exposes document-level instruments.
type Metrics struct {
	documentsCreated  metric.Int64Counter
	conversions       metric.Int64Counter
	numberCollisions  metric.Int64Counter
	statusTransitions metric.Int64Counter
	documentTotal     metric.Int64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the document instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "invoicer"
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "invoicer"
	}
	meter := provider.Meter(name)

	documentsCreated, err := meter.Int64Counter(prefix + "_documents_created_total")
	if err != nil {
		return nil, err
	}
	conversions, err := meter.Int64Counter(prefix + "_estimate_conversions_total")
	if err != nil {
		return nil, err
	}
	numberCollisions, err := meter.Int64Counter(prefix + "_number_collisions_total")
	if err != nil {
		return nil, err
	}
	statusTransitions, err := meter.Int64Counter(prefix + "_status_transitions_total")
	if err != nil {
		return nil, err
	}
	documentTotal, err := meter.Int64Histogram(prefix+"_document_total_minor",
		metric.WithDescription("Grand total of saved documents in minor currency units"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		documentsCreated:  documentsCreated,
		conversions:       conversions,
		numberCollisions:  numberCollisions,
		statusTransitions: statusTransitions,
		documentTotal:     documentTotal,
	}, nil
}

// RecordDocumentCreated counts a newly numbered invoice or estimate and
// observes its grand total.
func (m *Metrics) RecordDocumentCreated(ctx context.Context, documentType, currency string, total int64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("document_type", strings.TrimSpace(documentType)),
		attribute.String("currency", strings.TrimSpace(currency)),
	)
	m.documentsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.documentTotal.Record(ctx, total, metric.WithAttributes(attrs...))
}

// RecordConversion counts estimate to invoice conversions.
func (m *Metrics) RecordConversion(ctx context.Context) {
	if m == nil {
		return
	}
	m.conversions.Add(ctx, 1)
}

// RecordNumberCollision counts unique-number conflicts hit while saving.
func (m *Metrics) RecordNumberCollision(ctx context.Context, documentType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("document_type", strings.TrimSpace(documentType)))
	m.numberCollisions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordStatusTransition counts draft/sent/paid/void moves.
func (m *Metrics) RecordStatusTransition(ctx context.Context, documentType, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("document_type", strings.TrimSpace(documentType)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.statusTransitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"document_type": {},
	"status":        {},
	"currency":      {},
	"method":        {},
	"route":         {},
	"status_code":   {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
