// Package testlock adapts the lockmgr package to Go test suites. It wraps
// acquisition in the scoped pattern "acquire before the test body, release
// automatically when the test unit finishes": the handle's release is
// registered with the test's Cleanup hook, so every exit path (pass, fail,
// early return, panic) returns the resources.
//
// Tests coordinate through one process-wide manager that is constructed on
// first use. Resource identifiers are plain strings; suites typically
// declare them as constants next to the fixtures they guard:
//
//	const (
//	    TableUsers  = "table:users"
//	    TableOrders = "table:orders"
//	)
//
//	func TestTransfer(t *testing.T) {
//	    t.Parallel()
//	    testlock.AcquireExclusive(t, TableUsers, TableOrders)
//
//	    // Test body has exclusive access to both tables. No release code
//	    // is needed on any path.
//	}
//
// Read-only tests should use AcquireShared so they can run concurrently
// with each other and are only serialized against writers.
package testlock
