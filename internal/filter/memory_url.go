package filter

import "sync"

// MemoryURL is a URLSync for hosts without a real address bar: the demo
// binary and tests. It just holds the last pushed location.
type MemoryURL struct {
	mu  sync.Mutex
	loc Location
}

// NewMemoryURL seeds an in-memory location.
func NewMemoryURL(loc Location) *MemoryURL {
	return &MemoryURL{loc: loc}
}

// Location returns the current location.
func (m *MemoryURL) Location() Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loc
}

// SetLocation replaces the current location.
func (m *MemoryURL) SetLocation(loc Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loc = loc
}
