package lockmgr

// Handle represents one granted bundle. It is created only as the return
// value of a successful acquisition and is the token a caller passes back
// to release everything it holds.
//
// Thread-safety: the acquired flag is read and written exclusively under
// the owning manager's mutex, so Release may be invoked from multiple
// cleanup paths concurrently.
type Handle struct {
	mgr      *lockMgrImpl
	bundle   *Bundle
	acquired bool
}

// Bundle returns the bundle this handle was granted for.
func (h *Handle) Bundle() *Bundle {
	return h.bundle
}

// Held reports whether the handle still holds its bundle.
func (h *Handle) Held() bool {
	if h == nil || h.mgr == nil {
		return false
	}
	h.mgr.mu.Lock()
	defer h.mgr.mu.Unlock()
	return h.acquired
}

// Release returns the handle's bundle to the manager that granted it.
// Releasing an already released handle is a safe no-op.
func (h *Handle) Release() error {
	if h == nil || h.mgr == nil {
		return NewError(RetCInvalidHandle, "handle was never granted by a manager")
	}
	return h.mgr.ReleaseAll(h)
}
