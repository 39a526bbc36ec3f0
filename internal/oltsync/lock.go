package oltsync

import "sync"

// deviceLocks hands out one mutex per device id, created lazily. A manual
// sync from the dashboard and a scheduled fleet run may target the same
// device at the same time; the per-device lock serializes their
// read-modify-write cycles without blocking syncs of other devices.
type deviceLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDeviceLocks() *deviceLocks {
	return &deviceLocks{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex for a device id, creating it on first use. Entries
// are never removed; the fleet is small and ids are stable.
func (d *deviceLocks) get(deviceID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.locks[deviceID]
	if !ok {
		l = &sync.Mutex{}
		d.locks[deviceID] = l
	}
	return l
}
