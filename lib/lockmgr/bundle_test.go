package lockmgr

import (
	"errors"
	"testing"
)

// retCode extracts the RetCode from an error produced by this package
func retCode(t *testing.T, err error) RetCode {
	t.Helper()
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *lockmgr.Error, got %T (%v)", err, err)
	}
	return e.Code
}

// TestNewBundle tests the creation of a well-formed bundle
func TestNewBundle(t *testing.T) {
	b, err := NewBundle(Exclusive("a"), Shared("b"))
	if err != nil {
		t.Fatalf("NewBundle() returned error: %v", err)
	}

	if b.Len() != 2 {
		t.Errorf("bundle should have 2 entries, has %d", b.Len())
	}

	entries := b.Entries()
	if entries[0] != (Entry{Resource: "a", Mode: LockExclusive}) {
		t.Errorf("first entry should be exclusive a, got %+v", entries[0])
	}
	if entries[1] != (Entry{Resource: "b", Mode: LockShared}) {
		t.Errorf("second entry should be shared b, got %+v", entries[1])
	}
}

// TestNewBundleDuplicate tests that duplicate resource identifiers are rejected
func TestNewBundleDuplicate(t *testing.T) {
	_, err := NewBundle(Shared("a"), Exclusive("a"))
	if err == nil {
		t.Fatal("NewBundle() should reject a duplicate resource")
	}
	if code := retCode(t, err); code != RetCDuplicateResource {
		t.Errorf("expected RetCDuplicateResource, got %d", code)
	}
}

// TestNewBundleEmpty tests that a bundle without entries is rejected
func TestNewBundleEmpty(t *testing.T) {
	_, err := NewBundle()
	if err == nil {
		t.Fatal("NewBundle() should reject an empty entry list")
	}
	if code := retCode(t, err); code != RetCEmptyBundle {
		t.Errorf("expected RetCEmptyBundle, got %d", code)
	}
}

// TestBundleImmutability tests that a bundle is isolated from caller-side slice mutation
func TestBundleImmutability(t *testing.T) {
	input := []Entry{Shared("a"), Shared("b")}
	b, err := NewBundle(input...)
	if err != nil {
		t.Fatalf("NewBundle() returned error: %v", err)
	}

	// Mutating the input slice after construction must not reach the bundle
	input[0] = Exclusive("z")
	if got := b.Entries()[0]; got != (Entry{Resource: "a", Mode: LockShared}) {
		t.Errorf("bundle entry changed through input slice: %+v", got)
	}

	// Mutating the returned copy must not reach the bundle either
	out := b.Entries()
	out[1] = Exclusive("z")
	if got := b.Entries()[1]; got != (Entry{Resource: "b", Mode: LockShared}) {
		t.Errorf("bundle entry changed through returned slice: %+v", got)
	}
}

// TestBundleString tests the log representation of a bundle
func TestBundleString(t *testing.T) {
	b, err := NewBundle(Exclusive("users"), Shared("config"))
	if err != nil {
		t.Fatalf("NewBundle() returned error: %v", err)
	}

	want := "users:exclusive,config:shared"
	if got := b.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

// TestLockModeString tests the string representation of lock modes
func TestLockModeString(t *testing.T) {
	if LockShared.String() != "shared" {
		t.Errorf("LockShared.String() = %q", LockShared.String())
	}
	if LockExclusive.String() != "exclusive" {
		t.Errorf("LockExclusive.String() = %q", LockExclusive.String())
	}
	if LockMode(42).String() != "unknown" {
		t.Errorf("LockMode(42).String() = %q", LockMode(42).String())
	}
}

// TestResourceStateString tests the string representation of resource states
func TestResourceStateString(t *testing.T) {
	cases := map[ResourceState]string{
		StateFree:          "free",
		StateHeldShared:    "held-shared",
		StateHeldExclusive: "held-exclusive",
		ResourceState(42):  "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
