// api/metrics/otel.go
package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelSink exports the cache counters through OpenTelemetry. Initialize once
// at startup and reuse for the process lifetime.
type OTelSink struct {
	l1Hits            metric.Int64Counter
	l1Misses          metric.Int64Counter
	l2Hits            metric.Int64Counter
	l2Misses          metric.Int64Counter
	l2Fallbacks       metric.Int64Counter
	singleflightMerge metric.Int64Counter
	bloomRejects      metric.Int64Counter
}

func NewOTelSink() (*OTelSink, error) {
	meter := otel.Meter("authz/cache")

	l1Hits, err := meter.Int64Counter(
		"cache.l1.hit.count",
		metric.WithDescription("L1 in-process cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	l1Misses, err := meter.Int64Counter(
		"cache.l1.miss.count",
		metric.WithDescription("L1 in-process cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	l2Hits, err := meter.Int64Counter(
		"cache.l2.hit.count",
		metric.WithDescription("L2 distributed cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	l2Misses, err := meter.Int64Counter(
		"cache.l2.miss.count",
		metric.WithDescription("L2 distributed cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	l2Fallbacks, err := meter.Int64Counter(
		"cache.l2.fallback.count",
		metric.WithDescription("Degradations to L1-only after an L2 failure"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	singleflightMerge, err := meter.Int64Counter(
		"cache.singleflight.merge.count",
		metric.WithDescription("Concurrent loads merged into one backing call"),
		metric.WithUnit("{merge}"),
	)
	if err != nil {
		return nil, err
	}

	bloomRejects, err := meter.Int64Counter(
		"cache.bloom.reject.count",
		metric.WithDescription("Lookups rejected by the existence filter"),
		metric.WithUnit("{reject}"),
	)
	if err != nil {
		return nil, err
	}

	return &OTelSink{
		l1Hits:            l1Hits,
		l1Misses:          l1Misses,
		l2Hits:            l2Hits,
		l2Misses:          l2Misses,
		l2Fallbacks:       l2Fallbacks,
		singleflightMerge: singleflightMerge,
		bloomRejects:      bloomRejects,
	}, nil
}

func tenantAttr(tenantID string) metric.AddOption {
	return metric.WithAttributes(attribute.String("tenant_id", tenantID))
}

func (s *OTelSink) IncrL1Hit(ctx context.Context, tenantID string) {
	s.l1Hits.Add(ctx, 1, tenantAttr(tenantID))
}

func (s *OTelSink) IncrL1Miss(ctx context.Context, tenantID string) {
	s.l1Misses.Add(ctx, 1, tenantAttr(tenantID))
}

func (s *OTelSink) IncrL2Hit(ctx context.Context, tenantID string) {
	s.l2Hits.Add(ctx, 1, tenantAttr(tenantID))
}

func (s *OTelSink) IncrL2Miss(ctx context.Context, tenantID string) {
	s.l2Misses.Add(ctx, 1, tenantAttr(tenantID))
}

func (s *OTelSink) IncrL2Fallback(ctx context.Context, tenantID string) {
	s.l2Fallbacks.Add(ctx, 1, tenantAttr(tenantID))
}

func (s *OTelSink) IncrSingleflightMerge(ctx context.Context, tenantID string) {
	s.singleflightMerge.Add(ctx, 1, tenantAttr(tenantID))
}

func (s *OTelSink) IncrBloomReject(ctx context.Context, tenantID string) {
	s.bloomRejects.Add(ctx, 1, tenantAttr(tenantID))
}

var _ Sink = (*OTelSink)(nil)
