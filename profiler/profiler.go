// Package profiler samples runtime resource usage while evaluation workloads
// run and tracks latencies for named operations.
package profiler

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"
)

// Options configures a Profiler.
type Options struct {
	// SampleInterval is how often resource samples are taken (default: 50ms).
	SampleInterval time.Duration
	// MaxSamples bounds the retained resource samples (default: 1200).
	MaxSamples int
}

// Profiler periodically samples heap usage and goroutine counts in a
// background goroutine and aggregates them into a Summary. It also times
// named operations via StartOperation.
//
// A profiler runs once: after Stop it cannot be restarted.
type Profiler struct {
	sampleInterval time.Duration
	maxSamples     int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.RWMutex
	running    bool
	startTime  time.Time
	stopTime   time.Time
	samples    []sample
	baseGC     uint32
	operations map[string]*TimeTracker
}

type sample struct {
	heapAlloc  uint64
	goroutines int
}

// New creates a profiler with the given options, filling in defaults for
// zero values.
func New(opts Options) *Profiler {
	if opts.SampleInterval == 0 {
		opts.SampleInterval = 50 * time.Millisecond
	}
	if opts.MaxSamples == 0 {
		opts.MaxSamples = 1200
	}

	ctx, cancel := context.WithCancel(context.Background())

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return &Profiler{
		sampleInterval: opts.SampleInterval,
		maxSamples:     opts.MaxSamples,
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
		baseGC:         ms.NumGC,
		samples:        make([]sample, 0, opts.MaxSamples),
		operations:     make(map[string]*TimeTracker),
	}
}

// Start launches the sampling goroutine. Calling Start on a running profiler
// is a no-op.
func (p *Profiler) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.running = true
	p.startTime = time.Now()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	p.baseGC = ms.NumGC

	p.wg.Add(1)
	go p.sampleLoop()
}

// Stop halts sampling, takes one final sample so even sub-interval runs have
// data, and returns the run's summary.
func (p *Profiler) Stop() Summary {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return p.Summary()
	}
	p.running = false
	p.stopTime = time.Now()
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	p.takeSample()
	return p.Summary()
}

func (p *Profiler) sampleLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.takeSample()
		}
	}
}

func (p *Profiler) takeSample() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	goroutines := runtime.NumGoroutine()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.samples = append(p.samples, sample{heapAlloc: ms.HeapAlloc, goroutines: goroutines})
	if len(p.samples) > p.maxSamples {
		p.samples = p.samples[1:]
	}
}

// Summary condenses one profiling window.
type Summary struct {
	Duration       time.Duration `json:"duration" yaml:"duration"`
	Samples        int           `json:"samples" yaml:"samples"`
	PeakHeapMB     float64       `json:"peak_heap_mb" yaml:"peak_heap_mb"`
	AvgHeapMB      float64       `json:"avg_heap_mb" yaml:"avg_heap_mb"`
	PeakGoroutines int           `json:"peak_goroutines" yaml:"peak_goroutines"`
	GCCycles       uint32        `json:"gc_cycles" yaml:"gc_cycles"`
}

// Summary reports the profiling window so far. Stop gives the final word.
func (p *Profiler) Summary() Summary {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	p.mu.RLock()
	defer p.mu.RUnlock()

	end := p.stopTime
	if end.IsZero() {
		end = time.Now()
	}
	s := Summary{
		Duration: end.Sub(p.startTime),
		Samples:  len(p.samples),
		GCCycles: ms.NumGC - p.baseGC,
	}
	if len(p.samples) == 0 {
		return s
	}

	var totalHeap float64
	for _, smp := range p.samples {
		heap := float64(smp.heapAlloc) / (1 << 20)
		totalHeap += heap
		if heap > s.PeakHeapMB {
			s.PeakHeapMB = heap
		}
		if smp.goroutines > s.PeakGoroutines {
			s.PeakGoroutines = smp.goroutines
		}
	}
	s.AvgHeapMB = totalHeap / float64(len(p.samples))
	return s
}

// StartOperation begins timing one operation occurrence.
//
// Arguments:
// - name: The operation to attribute the duration to.
//
// Returns:
// - A function to call when the operation completes.
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.Tracker(name).Record(time.Since(start))
	}
}

// Tracker returns the timing tracker for name, creating it on first use.
func (p *Profiler) Tracker(name string) *TimeTracker {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.operations[name]
	if !ok {
		t = &TimeTracker{}
		p.operations[name] = t
	}
	return t
}

// TimeTracker records durations for one operation. It retains every recorded
// duration so percentiles stay exact. Safe for concurrent use.
type TimeTracker struct {
	mu        sync.Mutex
	durations []time.Duration
	total     time.Duration
	min       time.Duration
	max       time.Duration
}

// Record adds one duration.
func (t *TimeTracker) Record(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.durations) == 0 || d < t.min {
		t.min = d
	}
	if d > t.max {
		t.max = d
	}
	t.durations = append(t.durations, d)
	t.total += d
}

// Count returns how many durations have been recorded.
func (t *TimeTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.durations)
}

// Total returns the sum of all recorded durations.
func (t *TimeTracker) Total() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Min returns the shortest recorded duration, 0 when empty.
func (t *TimeTracker) Min() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.min
}

// Max returns the longest recorded duration, 0 when empty.
func (t *TimeTracker) Max() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.max
}

// Average returns the mean recorded duration, 0 when empty.
func (t *TimeTracker) Average() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.durations) == 0 {
		return 0
	}
	return t.total / time.Duration(len(t.durations))
}

// Percentile returns the nearest-rank percentile for q in (0, 1], so
// Percentile(0.5) is the median and Percentile(1) the maximum. q outside the
// interval is clamped. Returns 0 when empty.
func (t *TimeTracker) Percentile(q float64) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.durations)
	if n == 0 {
		return 0
	}

	sorted := append([]time.Duration(nil), t.durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(math.Ceil(q*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}
