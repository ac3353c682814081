package lockmgr

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var _ ILockManager = (*lockMgrImpl)(nil)

// lockState is the per-resource record. It is created lazily on first
// reference and lives for the lifetime of the manager.
//
// Invariants (enforced by apply/revert, checked by tests):
//   - state == StateFree          => holders == 0
//   - state == StateHeldExclusive => holders == 0 (the exclusive holder is not counted)
//   - state == StateHeldShared    => holders >= 1
type lockState struct {
	state   ResourceState
	holders int
}

// lockMgrImpl implements ILockManager with a single coordination domain:
// one mutex guards the whole resource table and one broadcast-capable
// condition variable wakes waiters after every state change. No per-resource
// locking is used since grantability of a bundle depends on the joint state
// of all its resources and must be evaluated and applied atomically.
type lockMgrImpl struct {
	mu        sync.Mutex
	cond      *sync.Cond
	resources map[string]*lockState

	// cumulative counters, guarded by mu
	grants    uint64
	releases  uint64
	contended uint64
	waiting   int

	waitHist *WaitHistogram
	resStats *resourceStatsMap
	logger   zerolog.Logger
}

// NewLockManager creates a new lock manager that logs acquire/release
// events at debug level through the given logger.
func NewLockManager(logger zerolog.Logger) ILockManager {
	m := &lockMgrImpl{
		resources: make(map[string]*lockState),
		waitHist:  NewWaitHistogram(),
		resStats:  newResourceStatsMap(),
		logger:    logger,
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// NewDefaultLockManager creates a new lock manager without logging.
func NewDefaultLockManager() ILockManager {
	return NewLockManager(zerolog.Nop())
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (m *lockMgrImpl) AcquireAll(bundle *Bundle) (*Handle, error) {
	return m.AcquireAllContext(context.Background(), bundle)
}

func (m *lockMgrImpl) AcquireAllContext(ctx context.Context, bundle *Bundle) (*Handle, error) {
	if bundle == nil {
		return nil, NewError(RetCNilBundle, "bundle must not be nil")
	}
	if err := bundle.validate(); err != nil {
		return nil, err
	}

	// Turn context cancellation into a broadcast so a goroutine suspended
	// in cond.Wait observes it on the next re-check.
	stop := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		m.cond.Broadcast()
		m.mu.Unlock()
	})
	defer stop()

	start := time.Now()
	contended := false

	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			// The waiter held nothing, so there is nothing to roll back.
			m.logger.Debug().Str("bundle", bundle.String()).Msg("acquire abandoned")
			return nil, NewError(RetCAborted, fmt.Sprintf("acquire abandoned: %v", err))
		}

		if m.grantable(bundle) {
			break
		}

		if !contended {
			contended = true
			m.contended++
			metricContended.Inc()
		}

		m.logger.Debug().Str("bundle", bundle.String()).Msg("wait")
		m.waiting++
		waitingTotal.Add(1)
		// Wait releases mu so acquiring and releasing callers can proceed,
		// and reacquires it before returning. A wake is a broadcast hint,
		// not a grant: the loop re-checks grantability every time.
		m.cond.Wait()
		m.waiting--
		waitingTotal.Add(-1)
	}

	m.apply(bundle, contended)
	m.grants++
	if contended {
		m.waitHist.AddSample(time.Since(start))
	}

	// A grant also changes resource state, keep the wake rule uniform:
	// every mutation wakes all waiters for a re-check.
	m.cond.Broadcast()

	m.logger.Debug().Str("bundle", bundle.String()).Msg("grant")
	return &Handle{mgr: m, bundle: bundle, acquired: true}, nil
}

func (m *lockMgrImpl) ReleaseAll(h *Handle) error {
	if h == nil {
		return NewError(RetCInvalidHandle, "handle must not be nil")
	}
	if h.mgr != m {
		// Never decrement holder counts this manager did not grant.
		return NewError(RetCInvalidHandle, "handle was granted by a different manager")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !h.acquired {
		m.logger.Debug().Str("bundle", h.bundle.String()).Msg("release noop")
		return nil
	}
	h.acquired = false

	for _, e := range h.bundle.entries {
		ls := m.resources[e.Resource]
		switch e.Mode {
		case LockShared:
			ls.holders--
			if ls.holders == 0 {
				ls.state = StateFree
			}
		case LockExclusive:
			ls.state = StateFree
		}
	}

	m.releases++
	metricReleases.Inc()

	// Releasing any subset of resources can make an arbitrary number of
	// pending bundles newly satisfiable.
	m.cond.Broadcast()

	m.logger.Debug().Str("bundle", h.bundle.String()).Msg("release")
	return nil
}

func (m *lockMgrImpl) Snapshot() map[string]ResourceInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]ResourceInfo, len(m.resources))
	for name, ls := range m.resources {
		out[name] = ResourceInfo{State: ls.state, Holders: ls.holders}
	}
	return out
}

func (m *lockMgrImpl) Stats() ManagerStats {
	m.mu.Lock()
	stats := ManagerStats{
		Grants:    m.grants,
		Releases:  m.releases,
		Contended: m.contended,
		Waiting:   m.waiting,
		Resources: len(m.resources),
	}
	m.mu.Unlock()

	stats.WaitCount = m.waitHist.Count()
	stats.WaitMean = m.waitHist.Mean()
	stats.WaitP95 = m.waitHist.EstimatePercentile(0.95)
	return stats
}

func (m *lockMgrImpl) ResourceStats() map[string]ResourceStats {
	return m.resStats.snapshot()
}

// --------------------------------------------------------------------------
// Internal Helpers (all called with mu held)
// --------------------------------------------------------------------------

// grantable reports whether every entry of the bundle independently
// satisfies the compatibility table against the current global state:
//
//	current \ requested   shared   exclusive
//	free                  grant    grant
//	held-shared           grant    deny
//	held-exclusive        deny     deny
func (m *lockMgrImpl) grantable(b *Bundle) bool {
	for _, e := range b.entries {
		ls, ok := m.resources[e.Resource]
		if !ok {
			// Unseen resources are auto-registered as free on grant.
			continue
		}
		switch ls.state {
		case StateHeldShared:
			if e.Mode == LockExclusive {
				return false
			}
		case StateHeldExclusive:
			return false
		}
	}
	return true
}

// apply transitions every resource of the bundle to its requested mode.
// Only called when grantable(b) holds.
func (m *lockMgrImpl) apply(b *Bundle, contended bool) {
	for _, e := range b.entries {
		ls, ok := m.resources[e.Resource]
		if !ok {
			ls = &lockState{}
			m.resources[e.Resource] = ls
		}
		switch e.Mode {
		case LockShared:
			ls.state = StateHeldShared
			ls.holders++
			metricAcquiresShared.Inc()
		case LockExclusive:
			ls.state = StateHeldExclusive
			ls.holders = 0
			metricAcquiresExclusive.Inc()
		}
		m.resStats.recordAcquire(e.Resource, contended)
	}
}
