// Package lockmgr implements an in-process lock manager for coordinating
// parallel workloads that touch shared mutable resources, e.g. test cases
// that write to shared database tables. A caller declares the full set of
// resources it needs as one bundle of (resource, mode) pairs and is granted
// either all of them atomically or none of them.
//
// Core Functionality:
//   - Atomic all-or-nothing acquisition of multi-resource bundles
//   - Shared and exclusive lock modes with the usual compatibility rules
//   - Idempotent release, safe to invoke from multiple cleanup paths
//   - Acquisition counters, per-resource contention statistics and a
//     wait-time histogram for diagnosing slow suites
//
// The Problem:
//
//	Acquiring multiple locks one at a time, even in a globally fixed order,
//	leads to hold-and-wait: a caller that holds lock A while waiting for
//	lock B blocks every other caller that only needs A, for as long as the
//	wait on B lasts. No cycle exists, so this is not deadlock, but under a
//	contended suite the transitive waiting collapses throughput all the
//	same.
//
// Implementation Approach:
//
//	The manager removes hold-and-wait by making waiting and holding
//	mutually exclusive states. All resource records live behind a single
//	mutex with one associated broadcast condition variable:
//
//	- Acquisition: the calling goroutine checks whether every entry of its
//	  bundle is grantable against the current global state. If yes, all
//	  transitions are applied in one step and a Handle is returned. If no,
//	  the goroutine suspends without having touched anything and re-checks
//	  the whole bundle after every wake.
//
//	- Wakeups: every grant and every release broadcasts to all waiters.
//	  A broadcast is a hint, not a grant; the manager cannot cheaply
//	  predict which waiter becomes unblockable, so each waiter re-checks
//	  its own bundle.
//
//	- Release: reverses the grant-time transitions (decrementing shared
//	  holder counts, freeing exclusive holds) and flips the handle's
//	  acquired flag exactly once, making repeated releases no-ops.
//
//	There is deliberately no writer-priority rule: blocking new shared
//	holders on behalf of a waiting exclusive bundle would penalize
//	resources the waiting bundle is not even eligible for yet, which is
//	hold-and-wait again at the fairness layer. With a bounded number of
//	short-lived callers the absence of writer priority degrades to
//	"occasionally waits slightly longer", never to permanent starvation.
//
// Thread Safety:
//
//	All exported methods are safe for concurrent use. Lock state is only
//	ever mutated under the manager's mutex; bundles are immutable after
//	construction and handles delegate to their owning manager.
//
// Usage Example:
//
//	mgr := lockmgr.NewDefaultLockManager()
//
//	bundle, err := lockmgr.NewBundle(
//	    lockmgr.Exclusive("users"),
//	    lockmgr.Shared("config"),
//	)
//	if err != nil {
//	    // Handle error (duplicate resource, empty bundle)
//	}
//
//	handle, err := mgr.AcquireAll(bundle)
//	if err != nil {
//	    // Handle error
//	}
//	defer handle.Release() // idempotent
//
//	// Use the resources safely
//	// ...
//
// Resource identifiers are opaque strings, typically declared as constants
// by the caller. Unknown identifiers are auto-registered as free on first
// reference, so there is no pre-declaration step.
package lockmgr
