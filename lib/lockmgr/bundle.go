package lockmgr

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Lock Modes
// --------------------------------------------------------------------------

// LockMode selects how a resource is locked within a bundle.
type LockMode uint8

const (
	// LockShared admits any number of concurrent shared holders.
	LockShared LockMode = iota
	// LockExclusive admits exactly one holder and no shared co-tenants.
	LockExclusive
)

func (m LockMode) String() string {
	switch m {
	case LockShared:
		return "shared"
	case LockExclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Bundle Entries
// --------------------------------------------------------------------------

// Entry is one (resource identifier, mode) pair of a bundle. Resource
// identifiers are opaque strings; callers typically declare them as
// package-level constants.
type Entry struct {
	Resource string
	Mode     LockMode
}

// Shared creates a shared-mode entry for the given resource.
func Shared(resource string) Entry {
	return Entry{Resource: resource, Mode: LockShared}
}

// Exclusive creates an exclusive-mode entry for the given resource.
func Exclusive(resource string) Entry {
	return Entry{Resource: resource, Mode: LockExclusive}
}

// --------------------------------------------------------------------------
// Bundle
// --------------------------------------------------------------------------

// Bundle is an immutable ordered set of distinct (resource, mode) entries.
// A caller builds one bundle describing everything it needs, hands it to
// ILockManager.AcquireAll and discards it after release.
type Bundle struct {
	entries []Entry
}

// NewBundle validates the given entries and creates a bundle from them.
// It fails fast with RetCEmptyBundle when no entries are given and with
// RetCDuplicateResource when one resource identifier appears twice: a
// duplicate almost always indicates a caller bug, so it is rejected
// instead of merged.
func NewBundle(entries ...Entry) (*Bundle, error) {
	if len(entries) == 0 {
		return nil, NewError(RetCEmptyBundle, "a bundle must contain at least one entry")
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Resource]; ok {
			return nil, NewError(RetCDuplicateResource, fmt.Sprintf("resource %q appears twice in one bundle", e.Resource))
		}
		seen[e.Resource] = struct{}{}
	}

	// Copy so later mutation of the caller's slice cannot reach the bundle.
	bundled := make([]Entry, len(entries))
	copy(bundled, entries)

	return &Bundle{entries: bundled}, nil
}

// Len returns the number of entries in the bundle.
func (b *Bundle) Len() int {
	return len(b.entries)
}

// Entries returns a copy of the bundle's entries in declaration order.
func (b *Bundle) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// String renders the bundle as "res:mode,res:mode" for logging.
func (b *Bundle) String() string {
	var sb strings.Builder
	for i, e := range b.entries {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(e.Resource)
		sb.WriteByte(':')
		sb.WriteString(e.Mode.String())
	}
	return sb.String()
}

// validate re-checks the bundle invariants. NewBundle already enforces
// them, but a zero-value Bundle can reach the manager through direct
// struct construction.
func (b *Bundle) validate() error {
	if len(b.entries) == 0 {
		return NewError(RetCEmptyBundle, "a bundle must contain at least one entry")
	}
	return nil
}
