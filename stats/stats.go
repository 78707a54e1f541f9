package stats

import (
	"sort"
	"sync"
	"time"
)

// 计数的操作名
const (
	OpScalarMult = "scalar_mult"
	OpOrder      = "order"
	OpEnumerate  = "enumerate"
	OpCacheHit   = "cache_hit"
)

// Recorder receives operation counts and timings. A nil *Stats is a valid
// Recorder that drops everything.
type Recorder interface {
	RecordOp(op string, n int)
	Observe(name string, d time.Duration)
}

// Stats 内存计数，可选同步到 prometheus
type Stats struct {
	mu       sync.RWMutex
	opCounts map[string]uint64
	latency  *LatencyRecorder
	metrics  *Metrics
}

var _ Recorder = (*Stats)(nil)

func NewStats() *Stats {
	return &Stats{
		opCounts: make(map[string]uint64),
		latency:  NewLatencyRecorder(4096),
	}
}

// WithMetrics 记录的同时转发给 m
func (s *Stats) WithMetrics(m *Metrics) *Stats {
	s.metrics = m
	return s
}

func (s *Stats) RecordOp(op string, n int) {
	if s == nil || n <= 0 {
		return
	}
	s.mu.Lock()
	s.opCounts[op] += uint64(n)
	s.mu.Unlock()
	s.metrics.addOp(op, n)
}

func (s *Stats) Observe(name string, d time.Duration) {
	if s == nil {
		return
	}
	s.latency.Record(name, d)
	s.metrics.observe(name, d)
}

// OpCounts 计数器的拷贝
func (s *Stats) OpCounts() map[string]uint64 {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]uint64, len(s.opCounts))
	for op, n := range s.opCounts {
		counts[op] = n
	}
	return counts
}

func (s *Stats) Ops() []string {
	counts := s.OpCounts()
	names := make([]string, 0, len(counts))
	for op := range counts {
		names = append(names, op)
	}
	sort.Strings(names)
	return names
}

// LatencyNames 已有耗时样本的名字，排好序
func (s *Stats) LatencyNames() []string {
	if s == nil {
		return nil
	}
	return s.latency.Names()
}

// Latencies returns the latency summaries; reset starts a new interval.
func (s *Stats) Latencies(reset bool) map[string]LatencySummary {
	if s == nil {
		return nil
	}
	return s.latency.Snapshot(reset)
}
