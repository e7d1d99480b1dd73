package profiler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiler_StartStop(t *testing.T) {
	p := New(Options{SampleInterval: 10 * time.Millisecond})
	p.Start()

	// Some allocation churn to give the sampler something to see.
	var junk [][]byte
	for i := 0; i < 100; i++ {
		junk = append(junk, make([]byte, 64*1024))
	}
	time.Sleep(50 * time.Millisecond)
	_ = junk

	summary := p.Stop()

	assert.Greater(t, summary.Samples, 0)
	assert.Greater(t, summary.PeakHeapMB, 0.0)
	assert.GreaterOrEqual(t, summary.PeakHeapMB, summary.AvgHeapMB)
	assert.Greater(t, summary.PeakGoroutines, 0)
	assert.Greater(t, summary.Duration, time.Duration(0))
}

func TestProfiler_StartIsIdempotent(t *testing.T) {
	p := New(Options{SampleInterval: 5 * time.Millisecond})
	p.Start()
	p.Start()

	time.Sleep(20 * time.Millisecond)
	summary := p.Stop()
	assert.Greater(t, summary.Samples, 0)
}

func TestProfiler_StopWithoutStart(t *testing.T) {
	p := New(Options{})
	summary := p.Stop()
	assert.Equal(t, 0, summary.Samples)
	assert.Equal(t, 0.0, summary.PeakHeapMB)
}

func TestProfiler_StopTakesFinalSample(t *testing.T) {
	// Interval far longer than the run: the final sample is the only one.
	p := New(Options{SampleInterval: time.Hour})
	p.Start()
	summary := p.Stop()
	assert.Equal(t, 1, summary.Samples)
}

func TestProfiler_OperationTiming(t *testing.T) {
	p := New(Options{})

	done := p.StartOperation("match")
	time.Sleep(5 * time.Millisecond)
	done()

	tracker := p.Tracker("match")
	assert.Equal(t, 1, tracker.Count())
	assert.GreaterOrEqual(t, tracker.Average(), 5*time.Millisecond)
}

func TestProfiler_ConcurrentOperationRecording(t *testing.T) {
	p := New(Options{})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				p.Tracker("fold").Record(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, p.Tracker("fold").Count())
}

func TestTimeTracker_Stats(t *testing.T) {
	var tr TimeTracker
	tr.Record(10 * time.Millisecond)
	tr.Record(30 * time.Millisecond)
	tr.Record(20 * time.Millisecond)

	assert.Equal(t, 3, tr.Count())
	assert.Equal(t, 60*time.Millisecond, tr.Total())
	assert.Equal(t, 10*time.Millisecond, tr.Min())
	assert.Equal(t, 30*time.Millisecond, tr.Max())
	assert.Equal(t, 20*time.Millisecond, tr.Average())
}

func TestTimeTracker_Percentile(t *testing.T) {
	var tr TimeTracker
	for _, ms := range []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100} {
		tr.Record(time.Duration(ms) * time.Millisecond)
	}

	assert.Equal(t, 50*time.Millisecond, tr.Percentile(0.5))
	assert.Equal(t, 90*time.Millisecond, tr.Percentile(0.9))
	assert.Equal(t, 100*time.Millisecond, tr.Percentile(1))
	assert.Equal(t, 10*time.Millisecond, tr.Percentile(0))

	var empty TimeTracker
	assert.Equal(t, time.Duration(0), empty.Percentile(0.5))
	assert.Equal(t, time.Duration(0), empty.Average())
	require.Equal(t, 0, empty.Count())
}
