package store

import (
	"sync"

	"github.com/lediangroup/repair-board/internal/models"
)

// hub fans full report snapshots out to subscriber channels. Each channel
// is buffered with capacity one and holds only the latest snapshot: a slow
// reader never blocks a writer, it just skips intermediate states.
type hub struct {
	mu   sync.Mutex
	subs map[int]chan []models.Report
	next int
}

func newHub() *hub {
	return &hub{subs: make(map[int]chan []models.Report)}
}

// subscribe registers a new subscriber and returns its channel together
// with an idempotent cancel function. The channel is closed on cancel.
func (h *hub) subscribe() (chan []models.Report, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan []models.Report, 1)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// broadcast pushes the snapshot to every subscriber, replacing any
// undelivered previous snapshot.
func (h *hub) broadcast(reports []models.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- reports:
		default:
			// Drop the stale snapshot, then retry once. Another drain
			// cannot race us here: broadcast is serialized by h.mu and
			// the only other sender (the store's initial delivery) never
			// drains.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- reports:
			default:
			}
		}
	}
}

func (h *hub) subscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
