package services

import "sync"

// matchLocker — мьютекс на каждый matchID. Записи удаляются, когда их никто не держит.
type matchLocker struct {
	mu    sync.Mutex
	locks map[int]*matchLock
}

type matchLock struct {
	mu      sync.Mutex
	holders int
}

func newMatchLocker() *matchLocker {
	return &matchLocker{locks: make(map[int]*matchLock)}
}

// Lock блокирует матч и возвращает функцию разблокировки.
func (l *matchLocker) Lock(matchID int) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.locks[matchID]
	if !ok {
		entry = &matchLock{}
		l.locks[matchID] = entry
	}
	entry.holders++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.holders--
		if entry.holders == 0 {
			delete(l.locks, matchID)
		}
		l.mu.Unlock()
	}
}
