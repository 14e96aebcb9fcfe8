package keylock

import "sync"

// KeyLock serializes operations on a string key. Claim codes, contributor
// balances and (proposal, voter) pairs each get their own lock so unrelated
// work never contends.
//
// Locks are created lazily and kept for the life of the process; the key
// space in practice (codes, addresses) is small enough not to matter.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an empty KeyLock.
func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for key, blocking until it is available.
func (k *KeyLock) Lock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
}

// Unlock releases the lock for key. Unlocking a key that was never locked
// panics, same as sync.Mutex.
func (k *KeyLock) Unlock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	k.mu.Unlock()

	if !ok {
		panic("keylock: unlock of unheld key " + key)
	}
	l.Unlock()
}
