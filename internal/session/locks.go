package session

import "sync"

// teamLocks serializes work on one team while letting different teams
// proceed in parallel. Entries are dropped once nobody holds or waits on
// them, so the map only grows with concurrent activity.
type teamLocks struct {
	mu    sync.Mutex
	locks map[string]*teamLock
}

type teamLock struct {
	mu   sync.Mutex
	refs int
}

func newTeamLocks() *teamLocks {
	return &teamLocks{locks: make(map[string]*teamLock)}
}

// Lock blocks until the caller holds teamID and returns the release func.
func (l *teamLocks) Lock(teamID string) (unlock func()) {
	l.mu.Lock()
	lock, ok := l.locks[teamID]
	if !ok {
		lock = &teamLock{}
		l.locks[teamID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, teamID)
		}
		l.mu.Unlock()
	}
}

func (l *teamLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
