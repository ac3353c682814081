package lockmgr

import (
	"context"
	"fmt"
	"time"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ILockManager defines the interface for a multi-resource lock coordinator.
//
// A caller declares everything it needs up front as a Bundle of
// (resource, mode) pairs and receives either the whole bundle atomically or
// nothing. A waiting caller holds no resource of its bundle, so callers
// whose bundles overlap only partially never block each other transitively.
type ILockManager interface {
	// AcquireAll blocks the calling goroutine until every entry of the
	// bundle is simultaneously grantable, then performs all state
	// transitions as one indivisible step and returns a Handle for release.
	// There is no error path for a well-formed bundle: contention is
	// resolved by blocking, never by returning an error.
	AcquireAll(bundle *Bundle) (*Handle, error)

	// AcquireAllContext behaves like AcquireAll but abandons the wait once
	// ctx is done, returning an Error with code RetCAborted. Abandoning
	// never mutates lock state: a waiter holds nothing, so there is
	// nothing to roll back.
	AcquireAllContext(ctx context.Context, bundle *Bundle) (*Handle, error)

	// ReleaseAll reverses every transition performed when the handle was
	// granted and wakes all waiting callers. Releasing an already released
	// handle is a no-op, so release may be invoked from multiple cleanup
	// paths.
	ReleaseAll(h *Handle) error

	// Snapshot returns the current state and shared holder count of every
	// registered resource.
	Snapshot() map[string]ResourceInfo

	// Stats returns cumulative manager counters and a summary of the
	// wait-time distribution of contended acquisitions.
	Stats() ManagerStats

	// ResourceStats returns cumulative per-resource acquisition counters.
	ResourceStats() map[string]ResourceStats
}

// --------------------------------------------------------------------------
// Resource State
// --------------------------------------------------------------------------

// ResourceState describes the current occupancy of a single resource.
type ResourceState uint8

const (
	// StateFree means no caller holds the resource.
	StateFree ResourceState = iota
	// StateHeldShared means one or more callers hold the resource in
	// shared mode.
	StateHeldShared
	// StateHeldExclusive means exactly one caller holds the resource in
	// exclusive mode.
	StateHeldExclusive
)

func (s ResourceState) String() string {
	switch s {
	case StateFree:
		return "free"
	case StateHeldShared:
		return "held-shared"
	case StateHeldExclusive:
		return "held-exclusive"
	default:
		return "unknown"
	}
}

// ResourceInfo is the externally visible state of one resource as returned
// by Snapshot.
type ResourceInfo struct {
	State ResourceState
	// Holders is the number of shared holders. It is 0 unless State is
	// StateHeldShared (the exclusive holder is not counted).
	Holders int
}

// ManagerStats holds cumulative counters for one manager instance.
type ManagerStats struct {
	Grants    uint64 // bundles granted
	Releases  uint64 // bundles released (noop releases not counted)
	Contended uint64 // grants that had to wait at least once
	Waiting   int    // callers currently suspended in AcquireAll
	Resources int    // resources registered so far

	// Wait-time distribution of contended acquisitions.
	WaitCount int64
	WaitMean  time.Duration
	WaitP95   time.Duration
}

// ResourceStats holds cumulative counters for a single resource.
type ResourceStats struct {
	Acquires  uint64 // times the resource was part of a granted bundle
	Contended uint64 // of those, times the bundle had to wait
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := "Unknown"
	switch e.Code {
	case RetCDuplicateResource:
		errorCode = "DuplicateResource"
	case RetCEmptyBundle:
		errorCode = "EmptyBundle"
	case RetCNilBundle:
		errorCode = "NilBundle"
	case RetCInvalidHandle:
		errorCode = "InvalidHandle"
	case RetCAborted:
		errorCode = "Aborted"
	}

	return fmt.Sprintf("LockMgrError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess           RetCode = iota // 0: Operation executed successfully.
	RetCDuplicateResource                // 1: A resource identifier appears twice in one bundle.
	RetCEmptyBundle                      // 2: The bundle contains no entries.
	RetCNilBundle                        // 3: A nil bundle was passed to the manager.
	RetCInvalidHandle                    // 4: The handle is nil or was granted by a different manager.
	RetCAborted                          // 5: The wait was abandoned because the context was canceled.
)
