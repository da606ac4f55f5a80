// Package live fans the latest league view out to connected subscribers.
package live

import (
	"sync"

	"github.com/rs/zerolog"

	"fpl-live-draft/internal/domain"
	"fpl-live-draft/internal/metrics"
)

// Hub keeps the most recent view and pushes every new one to subscribers.
// A slow subscriber only ever sees the latest view; older ones are dropped.
type Hub struct {
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu     sync.RWMutex
	latest *domain.View
	subs   map[int]chan domain.View
	nextID int
}

func NewHub(m *metrics.Metrics, logger zerolog.Logger) *Hub {
	return &Hub{
		metrics: m,
		logger:  logger.With().Str("component", "hub").Logger(),
		subs:    make(map[int]chan domain.View),
	}
}

func (h *Hub) Publish(view domain.View) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = &view
	for _, ch := range h.subs {
		offer(ch, view)
	}
	h.logger.Debug().
		Str("league_id", view.LeagueID).
		Str("status", string(view.Status)).
		Int("subscribers", len(h.subs)).
		Msg("view published")
}

// Latest returns the last published view, if any.
func (h *Hub) Latest() (domain.View, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return domain.View{}, false
	}
	return *h.latest, true
}

// Reset forgets the latest view. Subscribers stay connected.
func (h *Hub) Reset() {
	h.mu.Lock()
	h.latest = nil
	h.mu.Unlock()
}

// Subscribe registers a subscriber and primes it with the latest view. The
// returned func unsubscribes and closes the channel.
func (h *Hub) Subscribe() (<-chan domain.View, func()) {
	ch := make(chan domain.View, 1)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	if h.latest != nil {
		ch <- *h.latest
	}
	n := len(h.subs)
	h.mu.Unlock()
	h.metrics.SetSubscribers(n)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			n := len(h.subs)
			h.mu.Unlock()
			h.metrics.SetSubscribers(n)
		})
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// offer delivers v without blocking, replacing an unread older view.
func offer(ch chan domain.View, v domain.View) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
