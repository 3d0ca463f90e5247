package services

import (
	"sync"

	"github.com/google/uuid"
)

// sessionLocks is a keyed mutex. Entries are reference counted and removed
// when the last holder unlocks.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: map[uuid.UUID]*sessionLock{}}
}

// Lock blocks until sid is free and returns the matching unlock.
func (l *sessionLocks) Lock(sid uuid.UUID) func() {
	l.mu.Lock()
	sl, ok := l.locks[sid]
	if !ok {
		sl = &sessionLock{}
		l.locks[sid] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, sid)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
