package lockmgr

import (
	"sync"
	"testing"
	"time"
)

// TestWaitHistogramEmpty tests the zero state of the histogram
func TestWaitHistogramEmpty(t *testing.T) {
	h := NewWaitHistogram()

	if h.Count() != 0 {
		t.Errorf("new histogram should be empty, got %d samples", h.Count())
	}
	if h.Mean() != 0 {
		t.Errorf("mean of an empty histogram should be 0, got %v", h.Mean())
	}
	if h.EstimatePercentile(0.95) != 0 {
		t.Errorf("percentile of an empty histogram should be 0, got %v", h.EstimatePercentile(0.95))
	}
}

// TestWaitHistogramMean tests the exact mean over known samples
func TestWaitHistogramMean(t *testing.T) {
	h := NewWaitHistogram()

	h.AddSample(10 * time.Millisecond)
	h.AddSample(20 * time.Millisecond)
	h.AddSample(30 * time.Millisecond)

	if h.Count() != 3 {
		t.Errorf("expected 3 samples, got %d", h.Count())
	}
	if got := h.Mean(); got != 20*time.Millisecond {
		t.Errorf("expected a mean of 20ms, got %v", got)
	}
}

// TestWaitHistogramPercentiles tests the bucket-based estimators
func TestWaitHistogramPercentiles(t *testing.T) {
	h := NewWaitHistogram()

	// 90 fast waits, 10 slow ones
	for i := 0; i < 90; i++ {
		h.AddSample(2 * time.Millisecond)
	}
	for i := 0; i < 10; i++ {
		h.AddSample(2 * time.Second)
	}

	p50 := h.EstimatePercentile(0.50)
	p95 := h.EstimatePercentile(0.95)

	// The median must land in the low-millisecond bucket, the p95 in the
	// seconds range
	if p50 < time.Millisecond || p50 > 10*time.Millisecond {
		t.Errorf("p50 = %v, want a low-millisecond estimate", p50)
	}
	if p95 < time.Second || p95 > 5*time.Second {
		t.Errorf("p95 = %v, want an estimate in the seconds range", p95)
	}
	if p50 > p95 {
		t.Errorf("p50 (%v) should not exceed p95 (%v)", p50, p95)
	}
}

// TestWaitHistogramOverflowBucket tests samples beyond the last boundary
func TestWaitHistogramOverflowBucket(t *testing.T) {
	h := NewWaitHistogram()

	h.AddSample(5 * time.Minute)

	if got := h.EstimatePercentile(1.0); got != 60*time.Second {
		t.Errorf("overflow estimate should be twice the last boundary, got %v", got)
	}
}

// TestWaitHistogramInvalidQuantile tests out-of-range quantile arguments
func TestWaitHistogramInvalidQuantile(t *testing.T) {
	h := NewWaitHistogram()
	h.AddSample(time.Millisecond)

	if got := h.EstimatePercentile(-0.1); got != 0 {
		t.Errorf("negative quantile should return 0, got %v", got)
	}
	if got := h.EstimatePercentile(1.1); got != 0 {
		t.Errorf("quantile > 1 should return 0, got %v", got)
	}
}

// TestWaitHistogramReset tests clearing the histogram
func TestWaitHistogramReset(t *testing.T) {
	h := NewWaitHistogram()
	h.AddSample(time.Millisecond)
	h.AddSample(time.Second)

	h.Reset()

	if h.Count() != 0 {
		t.Errorf("histogram should be empty after reset, got %d samples", h.Count())
	}
	if h.Mean() != 0 {
		t.Errorf("mean should be 0 after reset, got %v", h.Mean())
	}
}

// TestWaitHistogramConcurrent tests concurrent sample addition
func TestWaitHistogramConcurrent(t *testing.T) {
	h := NewWaitHistogram()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h.AddSample(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	if h.Count() != 800 {
		t.Errorf("expected 800 samples, got %d", h.Count())
	}
}
