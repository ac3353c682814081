package lockmgr

import (
	"math"
	"sync"
	"time"
)

// --------------------------------------------------------------------------
// WaitHistogram
// --------------------------------------------------------------------------

// WaitHistogram tracks the distribution of contended wait times.
// It organizes durations into exponential buckets for constant memory usage
// while still providing usable percentile estimations. The bucket range
// covers everything from sub-millisecond blips to tests stuck behind a
// long-running exclusive holder.
type WaitHistogram struct {
	mutex      sync.RWMutex
	boundaries []time.Duration // Bucket boundaries from 100µs to 30s
	buckets    []int64         // Count of samples in each bucket
	count      int64           // Total number of samples
	sum        int64           // Sum of all sampled durations in nanoseconds
}

// NewWaitHistogram creates a new wait-time histogram with default bucket
// boundaries.
func NewWaitHistogram() *WaitHistogram {
	boundaries := []time.Duration{
		100 * time.Microsecond, 250 * time.Microsecond, 500 * time.Microsecond,
		time.Millisecond, 2500 * time.Microsecond, 5 * time.Millisecond,
		10 * time.Millisecond, 25 * time.Millisecond, 50 * time.Millisecond,
		100 * time.Millisecond, 250 * time.Millisecond, 500 * time.Millisecond,
		time.Second, 2500 * time.Millisecond, 5 * time.Second,
		10 * time.Second, 30 * time.Second,
	}
	return &WaitHistogram{
		boundaries: boundaries,
		buckets:    make([]int64, len(boundaries)+1), // one extra bucket for larger values
	}
}

// AddSample adds a wait duration to the histogram.
//
// Thread-safe: This method is safe for concurrent use
func (h *WaitHistogram) AddSample(d time.Duration) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	// Find the appropriate bucket for this duration
	bucketIndex := len(h.boundaries) // Last bucket for all larger values
	for i, boundary := range h.boundaries {
		if d <= boundary {
			bucketIndex = i
			break
		}
	}

	// Update statistics
	h.buckets[bucketIndex]++
	h.count++
	h.sum += int64(d)
}

// Count returns the total number of samples.
//
// Thread-safe: This method is safe for concurrent use
func (h *WaitHistogram) Count() int64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.count
}

// Mean returns the average wait time across all samples.
//
// Thread-safe: This method is safe for concurrent use
func (h *WaitHistogram) Mean() time.Duration {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 {
		return 0
	}
	return time.Duration(h.sum / h.count)
}

// EstimatePercentile returns an estimate for the given quantile (0.0-1.0)
// based on the bucket the quantile falls into.
//
// Thread-safe: This method is safe for concurrent use
func (h *WaitHistogram) EstimatePercentile(q float64) time.Duration {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 || q < 0 || q > 1 {
		return 0
	}

	// Calculate target count for the quantile
	targetCount := int64(math.Ceil(float64(h.count) * q))
	cumulativeCount := int64(0)

	for i, count := range h.buckets {
		cumulativeCount += count
		if cumulativeCount >= targetCount {
			if i == 0 {
				// For the first bucket, estimate as half of the boundary
				return h.boundaries[0] / 2
			} else if i < len(h.boundaries) {
				// For middle buckets, use the average of the boundaries
				return (h.boundaries[i-1] + h.boundaries[i]) / 2
			}
			// Estimation for the overflow bucket (2x the last boundary)
			return h.boundaries[len(h.boundaries)-1] * 2
		}
	}

	// Shouldn't happen but as a fallback
	return time.Duration(h.sum / h.count)
}

// Reset clears all histogram data.
//
// Thread-safe: This method is safe for concurrent use
func (h *WaitHistogram) Reset() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.count = 0
	h.sum = 0
	for i := range h.buckets {
		h.buckets[i] = 0
	}
}
