// api/metrics/memory.go
package metrics

import (
	"context"
	"sync/atomic"
)

// Memory counts events with atomics. Used by unit tests and as a cheap
// process-local sink when no exporter is configured.
type Memory struct {
	l1Hits             atomic.Int64
	l1Misses           atomic.Int64
	l2Hits             atomic.Int64
	l2Misses           atomic.Int64
	l2Fallbacks        atomic.Int64
	singleflightMerges atomic.Int64
	bloomRejects       atomic.Int64
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) IncrL1Hit(context.Context, string)  { m.l1Hits.Add(1) }
func (m *Memory) IncrL1Miss(context.Context, string) { m.l1Misses.Add(1) }
func (m *Memory) IncrL2Hit(context.Context, string)  { m.l2Hits.Add(1) }
func (m *Memory) IncrL2Miss(context.Context, string) { m.l2Misses.Add(1) }
func (m *Memory) IncrL2Fallback(context.Context, string) {
	m.l2Fallbacks.Add(1)
}
func (m *Memory) IncrSingleflightMerge(context.Context, string) {
	m.singleflightMerges.Add(1)
}
func (m *Memory) IncrBloomReject(context.Context, string) {
	m.bloomRejects.Add(1)
}

func (m *Memory) L1Hits() int64             { return m.l1Hits.Load() }
func (m *Memory) L1Misses() int64           { return m.l1Misses.Load() }
func (m *Memory) L2Hits() int64             { return m.l2Hits.Load() }
func (m *Memory) L2Misses() int64           { return m.l2Misses.Load() }
func (m *Memory) L2Fallbacks() int64        { return m.l2Fallbacks.Load() }
func (m *Memory) SingleflightMerges() int64 { return m.singleflightMerges.Load() }
func (m *Memory) BloomRejects() int64       { return m.bloomRejects.Load() }

var _ Sink = (*Memory)(nil)
