package stream

import (
	"sort"
	"sync"

	"luxury-tycoon/internal/models"
)

// UnlockFunc is called once for every item that becomes unlocked.
type UnlockFunc func(snap models.Snapshot, item models.CatalogItem)

// UnlockWatcher is a Consumer that reports items unlocked since the last
// snapshot it saw. Consumers run concurrently, so snapshots at or below the
// last seen version are ignored.
type UnlockWatcher struct {
	mu      sync.Mutex
	version uint64
	seen    map[string]bool
	fn      UnlockFunc
}

// NewUnlockWatcher starts from the unlock set of initial.
func NewUnlockWatcher(initial models.State, fn UnlockFunc) *UnlockWatcher {
	return &UnlockWatcher{
		version: initial.Version,
		seen:    unlockedSet(initial),
		fn:      fn,
	}
}

// Topics implements Consumer. Ticks never change the unlock set.
func (w *UnlockWatcher) Topics() []models.Topic {
	return []models.Topic{models.TopicWallet}
}

// OnSnapshot implements Consumer.
func (w *UnlockWatcher) OnSnapshot(snap models.Snapshot) {
	w.mu.Lock()
	if snap.State.Version <= w.version {
		w.mu.Unlock()
		return
	}
	current := unlockedSet(snap.State)
	var fresh []string
	for id := range current {
		if !w.seen[id] {
			fresh = append(fresh, id)
		}
	}
	// A reset relocks items, so the set is replaced rather than grown.
	w.seen = current
	w.version = snap.State.Version
	w.mu.Unlock()

	if w.fn == nil {
		return
	}
	sort.Strings(fresh)
	for _, id := range fresh {
		w.fn(snap, snap.State.Items[id])
	}
}

func unlockedSet(s models.State) map[string]bool {
	set := make(map[string]bool, len(s.Items))
	for id, item := range s.Items {
		if item.Unlocked {
			set[id] = true
		}
	}
	return set
}
