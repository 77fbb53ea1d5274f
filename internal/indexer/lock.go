package indexer

import (
	"path/filepath"
	"sync"
	"sync/atomic"
)

// IndexLock provides non-blocking lock semantics using atomic operations
type IndexLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *IndexLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *IndexLock) Release() {
	l.state.Store(0)
}

// dirLocks hands out one IndexLock per directory so concurrent indexing
// runs against the same directory are rejected rather than interleaved.
// The manifest and vector index are single-writer resources.
type dirLocks struct {
	mu    sync.Mutex
	locks map[string]*IndexLock
}

func newDirLocks() *dirLocks {
	return &dirLocks{locks: make(map[string]*IndexLock)}
}

func (d *dirLocks) get(dir string) *IndexLock {
	// Normalize so differently-spelled paths to one directory share a lock
	dir = filepath.Clean(dir)

	d.mu.Lock()
	defer d.mu.Unlock()

	lock, ok := d.locks[dir]
	if !ok {
		lock = &IndexLock{}
		d.locks[dir] = lock
	}
	return lock
}
