package service

import "sync"

// deviceLocks serializes pump transitions per device. The row-level lock in
// the transaction protects the database; this keeps concurrent requests in
// one process from even starting overlapping read-modify-write sequences.
type deviceLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDeviceLocks() *deviceLocks {
	return &deviceLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for deviceID and returns its unlock func. Lock
// entries are kept for the process lifetime; the device population is small.
func (d *deviceLocks) Lock(deviceID string) func() {
	d.mu.Lock()
	lock, ok := d.locks[deviceID]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[deviceID] = lock
	}
	d.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
