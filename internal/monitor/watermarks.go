package monitor

import (
	"sync"
	"time"
)

// watermarkTable holds the per-subscription scan cursor: the instant up to
// which a subscription's articles have already been considered. The monitor
// tick is the only writer. State lives in process memory only; after a
// restart every subscription falls back to the configured lookback, which
// can re-surface articles that were already alerted once.
type watermarkTable struct {
	mu    sync.Mutex
	marks map[string]time.Time
}

func newWatermarkTable() *watermarkTable {
	return &watermarkTable{marks: make(map[string]time.Time)}
}

// get returns the watermark recorded for the subscription, or fallback when
// the subscription has never been scanned.
func (t *watermarkTable) get(subID string, fallback time.Time) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	if mark, ok := t.marks[subID]; ok {
		return mark
	}
	return fallback
}

func (t *watermarkTable) set(subID string, mark time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.marks[subID] = mark
}
