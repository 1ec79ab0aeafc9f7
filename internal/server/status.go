package server

import "sync"

// BuildStatus tracks generation results so the server can show an error
// page until a pass has produced a site.
type BuildStatus struct {
	mu           sync.RWMutex
	lastError    error
	hasGoodBuild bool
}

// SetError records a failed pass.
func (bs *BuildStatus) SetError(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = err
}

// SetSuccess records a pass that produced a site.
func (bs *BuildStatus) SetSuccess() {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = nil
	bs.hasGoodBuild = true
}

// Status reports whether any pass has succeeded and the last pass error.
func (bs *BuildStatus) Status() (hasGoodBuild bool, lastErr error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.hasGoodBuild, bs.lastError
}
