package lockmgr

import (
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Process-wide metrics
// --------------------------------------------------------------------------

// Process-wide counters shared by all manager instances. They are exported
// in Prometheus format through metrics.WritePrometheus.
var (
	metricAcquiresShared    = metrics.NewCounter(`parlock_acquires_total{mode="shared"}`)
	metricAcquiresExclusive = metrics.NewCounter(`parlock_acquires_total{mode="exclusive"}`)
	metricReleases          = metrics.NewCounter(`parlock_releases_total`)
	metricContended         = metrics.NewCounter(`parlock_contended_acquires_total`)

	waitingTotal atomic.Int64

	_ = metrics.NewGauge(`parlock_waiting`, func() float64 {
		return float64(waitingTotal.Load())
	})
)

// --------------------------------------------------------------------------
// Per-resource statistics
// --------------------------------------------------------------------------

// resourceStatsMap tracks per-resource acquisition counters in a concurrent
// map so readers never touch the manager's coordination mutex.
type resourceStatsMap struct {
	entries *xsync.MapOf[string, *resourceCounters]
}

type resourceCounters struct {
	acquires  atomic.Uint64
	contended atomic.Uint64
}

func newResourceStatsMap() *resourceStatsMap {
	return &resourceStatsMap{
		entries: xsync.NewMapOf[string, *resourceCounters](),
	}
}

func (s *resourceStatsMap) recordAcquire(resource string, contended bool) {
	c, _ := s.entries.LoadOrCompute(resource, func() *resourceCounters {
		return &resourceCounters{}
	})
	c.acquires.Add(1)
	if contended {
		c.contended.Add(1)
	}
}

func (s *resourceStatsMap) snapshot() map[string]ResourceStats {
	out := make(map[string]ResourceStats, s.entries.Size())
	s.entries.Range(func(resource string, c *resourceCounters) bool {
		out[resource] = ResourceStats{
			Acquires:  c.acquires.Load(),
			Contended: c.contended.Load(),
		}
		return true
	})
	return out
}
