package stats

import (
	"sort"
	"sync"
	"time"
)

// LatencySummary 某一类计算（枚举、求阶）的耗时统计
type LatencySummary struct {
	Count uint64        `json:"count" yaml:"count"`
	Mean  time.Duration `json:"mean" yaml:"mean"`
	Min   time.Duration `json:"min" yaml:"min"`
	P50   time.Duration `json:"p50" yaml:"p50"`
	P95   time.Duration `json:"p95" yaml:"p95"`
	Max   time.Duration `json:"max" yaml:"max"`
}

// window 固定容量的环形窗口；count/total/min/max 覆盖全部样本，分位数只看窗口内
type window struct {
	buf   []time.Duration
	next  int
	full  bool
	count uint64
	total time.Duration
	min   time.Duration
	max   time.Duration
}

func (w *window) add(d time.Duration) {
	w.buf[w.next] = d
	w.next++
	if w.next == len(w.buf) {
		w.next, w.full = 0, true
	}
	if w.count == 0 || d < w.min {
		w.min = d
	}
	if d > w.max {
		w.max = d
	}
	w.count++
	w.total += d
}

func (w *window) summary() (LatencySummary, bool) {
	n := w.next
	if w.full {
		n = len(w.buf)
	}
	if n == 0 {
		return LatencySummary{}, false
	}
	sorted := append([]time.Duration(nil), w.buf[:n]...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return LatencySummary{
		Count: w.count,
		Mean:  w.total / time.Duration(w.count),
		Min:   w.min,
		P50:   sorted[(n-1)/2],
		P95:   sorted[(n-1)*95/100],
		Max:   w.max,
	}, true
}

// LatencyRecorder 按名字记录耗时，每个名字保留最近 capacity 个样本
type LatencyRecorder struct {
	mu       sync.Mutex
	capacity int
	windows  map[string]*window
}

func NewLatencyRecorder(capacity int) *LatencyRecorder {
	if capacity <= 0 {
		capacity = 2048
	}
	return &LatencyRecorder{
		capacity: capacity,
		windows:  make(map[string]*window),
	}
}

func (r *LatencyRecorder) Record(name string, d time.Duration) {
	if r == nil || name == "" {
		return
	}
	if d < 0 {
		d = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[name]
	if !ok {
		w = &window{buf: make([]time.Duration, r.capacity)}
		r.windows[name] = w
	}
	w.add(d)
}

// Names 已记录的名字，排好序
func (r *LatencyRecorder) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.windows))
	for name := range r.windows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot 返回当前统计；reset 为 true 时清空，开始新的统计区间
func (r *LatencyRecorder) Snapshot(reset bool) map[string]LatencySummary {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]LatencySummary, len(r.windows))
	for name, w := range r.windows {
		if s, ok := w.summary(); ok {
			out[name] = s
		}
	}
	if reset {
		r.windows = make(map[string]*window)
	}
	return out
}
