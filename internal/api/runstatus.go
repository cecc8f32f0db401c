package api

import (
	"sync"
)

// RunStatus is the latest known progress of a simulation run.
type RunStatus struct {
	RunID     string `json:"runId"`
	State     string `json:"state"` // running, completed
	Day       int    `json:"day"`
	Delivered int    `json:"delivered"`
	TS        string `json:"ts"`
}

// RunStatusCache stores latest per-run progress for polling clients; the
// brokered streams carry the same data live.
type RunStatusCache struct {
	mu sync.Mutex
	m  map[string]RunStatus
}

// NewRunStatusCache constructs a RunStatusCache.
func NewRunStatusCache() *RunStatusCache { return &RunStatusCache{m: map[string]RunStatus{}} }

// Upsert stores or updates the progress of a run.
func (c *RunStatusCache) Upsert(st RunStatus) {
	if st.RunID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[st.RunID] = st
}

// Get returns the latest progress of a run.
func (c *RunStatusCache) Get(runID string) (RunStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.m[runID]
	return st, ok
}
