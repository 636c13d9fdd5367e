package boards

import "sync"

// guildLocks hands out one lock per guild ID.
// A lock is dropped from the map once nobody holds or waits for it anymore.
type guildLocks struct {
	mutex sync.Mutex
	locks map[string]*guildLock
}

type guildLock struct {
	sync.Mutex
	refs int
}

func newGuildLocks() *guildLocks {
	return &guildLocks{locks: make(map[string]*guildLock)}
}

// lock blocks until the guild lock is acquired, the returned func releases it
func (l *guildLocks) lock(guildID string) (unlock func()) {
	l.mutex.Lock()
	entry, ok := l.locks[guildID]
	if !ok {
		entry = new(guildLock)
		l.locks[guildID] = entry
	}
	entry.refs++
	l.mutex.Unlock()

	entry.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.Unlock()

			l.mutex.Lock()
			entry.refs--
			if entry.refs <= 0 {
				delete(l.locks, guildID)
			}
			l.mutex.Unlock()
		})
	}
}

func (l *guildLocks) size() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.locks)
}
