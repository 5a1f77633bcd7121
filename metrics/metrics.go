// api/metrics/metrics.go
package metrics

import "context"

// Sink receives cache and engine counters. Implementations must be safe for
// concurrent use; the request path calls these on every check.
type Sink interface {
	IncrL1Hit(ctx context.Context, tenantID string)
	IncrL1Miss(ctx context.Context, tenantID string)
	IncrL2Hit(ctx context.Context, tenantID string)
	IncrL2Miss(ctx context.Context, tenantID string)
	IncrL2Fallback(ctx context.Context, tenantID string)
	IncrSingleflightMerge(ctx context.Context, tenantID string)
	IncrBloomReject(ctx context.Context, tenantID string)
}

// Noop discards every counter. Useful default when telemetry is not wired.
type Noop struct{}

func (Noop) IncrL1Hit(context.Context, string)             {}
func (Noop) IncrL1Miss(context.Context, string)            {}
func (Noop) IncrL2Hit(context.Context, string)             {}
func (Noop) IncrL2Miss(context.Context, string)            {}
func (Noop) IncrL2Fallback(context.Context, string)        {}
func (Noop) IncrSingleflightMerge(context.Context, string) {}
func (Noop) IncrBloomReject(context.Context, string)       {}

var _ Sink = Noop{}
