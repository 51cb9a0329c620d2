package usecase

import "sync"

// OutlineLocks serializes mutations per outline id. Every structural or
// content mutation for one outline runs inside its critical section, so
// concurrent API calls against the same outline apply in some total
// order and last-write-wins holds per node. One instance is shared by
// the outline, content and batch use cases.
type OutlineLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewOutlineLocks() *OutlineLocks {
	return &OutlineLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for outlineID and returns its release func.
func (l *OutlineLocks) Lock(outlineID string) func() {
	l.mu.Lock()
	m, ok := l.locks[outlineID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[outlineID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
