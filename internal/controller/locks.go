package controller

import "sync"

// entityLocks serialises mutations per task id.
type entityLocks struct {
	mu    sync.Mutex
	locks map[string]*entityLock
}

type entityLock struct {
	mu   sync.Mutex
	refs int
}

func newEntityLocks() *entityLocks {
	return &entityLocks{locks: make(map[string]*entityLock)}
}

// lock blocks until id is free and returns the matching unlock.
func (l *entityLocks) lock(id string) func() {
	l.mu.Lock()
	el, ok := l.locks[id]
	if !ok {
		el = &entityLock{}
		l.locks[id] = el
	}
	el.refs++
	l.mu.Unlock()

	el.mu.Lock()
	return func() {
		el.mu.Unlock()

		l.mu.Lock()
		el.refs--
		if el.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
