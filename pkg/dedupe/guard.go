// Package dedupe provides short-lived in-memory suppression of repeated
// webhook events. Strava delivers the same (activity, aspect) event more
// than once in quick succession; the guard keeps the handler from fetching
// and rewriting the same activity twice within the suppression window.
package dedupe

import (
	"fmt"
	"sync"
	"time"
)

// DefaultWindow is the suppression window used when none is configured.
const DefaultWindow = 5 * time.Minute

// Guard records when an event key was last seen. Entries are never evicted;
// they expire logically by age comparison. Unbounded growth is accepted
// because the process is short-lived and restarted by its host.
type Guard struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
	now    func() time.Time
}

// NewGuard creates a guard with the given suppression window.
// A non-positive window falls back to DefaultWindow.
func NewGuard(window time.Duration) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Guard{
		window: window,
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Seen reports whether key was already recorded within the suppression
// window, and records the current time for key regardless of the outcome.
// The timestamp is updated on every call, so repeated duplicates keep the
// window sliding forward. Check and record are a single atomic step.
func (g *Guard) Seen(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	last, ok := g.seen[key]
	g.seen[key] = now

	return ok && now.Sub(last) < g.window
}

// Len returns the number of recorded keys.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

// EventKey builds the composite guard key for a webhook event. The aspect
// type is part of the key: a create and an update for the same activity are
// independent events.
func EventKey(objectID int64, aspectType string) string {
	return fmt.Sprintf("%d:%s", objectID, aspectType)
}
