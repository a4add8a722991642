package queue

import "sync"

// Lock policies for Config.Locker. Any sync.Locker works; a locker that also
// provides RLocker (such as *sync.RWMutex) is used in read mode for Len,
// Peek and Stats.

// ExclusiveLock returns a mutex. It is the default policy.
func ExclusiveLock() sync.Locker {
	return new(sync.Mutex)
}

// SharedLock returns a reader/writer lock so snapshots do not serialize
// against each other.
func SharedLock() sync.Locker {
	return new(sync.RWMutex)
}

// NoLock returns a locker that does nothing. Only use it when a single
// goroutine both pushes and pops.
func NoLock() sync.Locker {
	return noLock{}
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

type rLocker interface {
	RLocker() sync.Locker
}

// readLocker returns the read side of l when it has one.
func readLocker(l sync.Locker) sync.Locker {
	if rl, ok := l.(rLocker); ok {
		return rl.RLocker()
	}
	return l
}
