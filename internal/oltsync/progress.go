package oltsync

import "sync"

// Progress reports the state of an async manual sync to a UI poller.
type Progress struct {
	Status  string `json:"status"` // idle, running, done, error
	Message string `json:"message"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
}

// ProgressTracker is a bounded, mutex-guarded map of device id to sync
// progress. An entry is created when a manual sync starts and overwritten
// when it completes; devices that never synced report idle.
type ProgressTracker struct {
	mu       sync.Mutex
	progress map[string]Progress
}

// NewProgressTracker creates an empty tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{progress: make(map[string]Progress)}
}

// Set stores the progress entry for a device, replacing any previous one.
func (t *ProgressTracker) Set(deviceID string, p Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress[deviceID] = p
}

// Get returns the progress entry for a device. Devices with no entry are
// reported as idle.
func (t *ProgressTracker) Get(deviceID string) Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.progress[deviceID]; ok {
		return p
	}
	return Progress{Status: "idle", Total: 1}
}

// Forget removes a device's entry, e.g. when the device is deleted.
func (t *ProgressTracker) Forget(deviceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.progress, deviceID)
}
