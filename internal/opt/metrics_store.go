package opt

import "sync"

var (
	mu    sync.Mutex
	store = map[string]Stats{}
)

// RecordStats keeps the latest engine report per run ID for the stats endpoint.
func RecordStats(runID string, s Stats) {
	mu.Lock()
	store[runID] = s
	mu.Unlock()
}

func GetStats(runID string) (Stats, bool) {
	mu.Lock()
	defer mu.Unlock()
	s, ok := store[runID]
	return s, ok
}

