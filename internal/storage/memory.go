package storage

import (
	"sync"

	"affiliateScope/internal/render"
)

// MemoryRegion keeps the latest view in memory. Concurrent writers are
// serialized and the last one wins.
type MemoryRegion struct {
	mu      sync.RWMutex
	view    render.DisplayModel
	version uint64
}

func NewMemoryRegion(initial render.DisplayModel) *MemoryRegion {
	return &MemoryRegion{view: initial}
}

func (r *MemoryRegion) Replace(view render.DisplayModel) error {
	r.mu.Lock()
	r.view = view
	r.version++
	r.mu.Unlock()
	return nil
}

// Current returns the latest view and how many times it was replaced.
func (r *MemoryRegion) Current() (render.DisplayModel, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view, r.version
}
