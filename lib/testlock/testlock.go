package testlock

import (
	"sync"

	"github.com/parlock/parlock/lib/lockmgr"
)

// TB is the subset of testing.TB the package needs. Declaring it here keeps
// the testing package out of importers' production builds and lets the
// package's own tests drive it with a fake.
type TB interface {
	Helper()
	Cleanup(func())
	Fatalf(format string, args ...any)
}

// --------------------------------------------------------------------------
// Default Manager
// --------------------------------------------------------------------------

var (
	defaultMu  sync.Mutex
	defaultMgr lockmgr.ILockManager
)

// Default returns the process-wide lock manager, constructing it on first
// use. All tests of a process coordinate through this single instance.
func Default() lockmgr.ILockManager {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultMgr == nil {
		defaultMgr = lockmgr.NewDefaultLockManager()
	}
	return defaultMgr
}

// SetDefault installs a custom-configured manager (e.g. one with a logger)
// as the process-wide instance. It must be called before the first
// acquisition, typically from TestMain; once the default manager has been
// constructed it reports false and changes nothing, since swapping managers
// mid-suite would strand granted handles.
func SetDefault(m lockmgr.ILockManager) bool {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultMgr != nil {
		return false
	}
	defaultMgr = m
	return true
}

// --------------------------------------------------------------------------
// Scoped Acquisition
// --------------------------------------------------------------------------

// Acquire blocks until every entry is granted by the default manager and
// registers the release with t.Cleanup, so the resources are returned when
// the test finishes regardless of pass, fail or panic. Malformed bundles
// fail the test immediately.
func Acquire(t TB, entries ...lockmgr.Entry) *lockmgr.Handle {
	t.Helper()

	bundle, err := lockmgr.NewBundle(entries...)
	if err != nil {
		t.Fatalf("testlock: invalid bundle: %v", err)
		return nil
	}

	handle, err := Default().AcquireAll(bundle)
	if err != nil {
		t.Fatalf("testlock: acquire failed: %v", err)
		return nil
	}

	t.Cleanup(func() {
		// Release is idempotent, a test that already released manually is fine.
		_ = handle.Release()
	})
	return handle
}

// AcquireShared acquires all given resources in shared mode.
func AcquireShared(t TB, resources ...string) *lockmgr.Handle {
	t.Helper()
	entries := make([]lockmgr.Entry, len(resources))
	for i, r := range resources {
		entries[i] = lockmgr.Shared(r)
	}
	return Acquire(t, entries...)
}

// AcquireExclusive acquires all given resources in exclusive mode.
func AcquireExclusive(t TB, resources ...string) *lockmgr.Handle {
	t.Helper()
	entries := make([]lockmgr.Entry, len(resources))
	for i, r := range resources {
		entries[i] = lockmgr.Exclusive(r)
	}
	return Acquire(t, entries...)
}
