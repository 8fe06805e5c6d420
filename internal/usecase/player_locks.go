package usecase

import "sync"

// playerLocks serializes the game changes of one player. Entries are dropped once nobody holds or waits on them.
type playerLocks struct {
	mu    sync.Mutex
	locks map[string]*playerLock
}

type playerLock struct {
	mu   sync.Mutex
	refs int
}

func newPlayerLocks() *playerLocks {
	return &playerLocks{
		locks: make(map[string]*playerLock),
	}
}

// Lock blocks until the player is free and returns the matching unlock.
func (that *playerLocks) Lock(playerID string) func() {
	that.mu.Lock()
	lock, ok := that.locks[playerID]
	if !ok {
		lock = &playerLock{}
		that.locks[playerID] = lock
	}
	lock.refs++
	that.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		that.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(that.locks, playerID)
		}
		that.mu.Unlock()
	}
}
