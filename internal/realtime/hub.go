package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/moonwavetravel/backend/internal/domain"
)

// ErrClosed is returned when subscribing to or publishing on a closed broker.
var ErrClosed = errors.New("realtime: broker closed")

// subscriptionBuffer is the number of undelivered events a subscriber may lag
// behind before further events are dropped for it.
const subscriptionBuffer = 64

// Subscription is one registered Filter. Events arrive on C until Close.
type Subscription struct {
	ID     string
	Filter Filter
	C      <-chan domain.ChangeEvent

	ch   chan domain.ChangeEvent
	hub  *Hub
	once sync.Once
}

// Close unregisters the subscription and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s.ID)
	})
}

// Hub is an in-process broker. Publish fans an event out to every matching
// subscription without blocking; a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	closed bool
	logger *slog.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{subs: make(map[string]*Subscription), logger: logger}
}

// Subscribe registers f and returns its Subscription.
func (h *Hub) Subscribe(f Filter) (*Subscription, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	ch := make(chan domain.ChangeEvent, subscriptionBuffer)
	sub := &Subscription{ID: "sub-" + id, Filter: f, C: ch, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	h.subs[sub.ID] = sub
	h.logger.Debug("subscribed", "subscription_id", sub.ID, "filter", f.String())
	return sub, nil
}

// Publish delivers ev to all matching subscriptions.
func (h *Hub) Publish(_ context.Context, ev domain.ChangeEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrClosed
	}

	var delivered, dropped int
	for _, sub := range h.subs {
		if !sub.Filter.Match(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
			delivered++
		default:
			dropped++
			h.logger.Warn("dropped event for slow subscriber",
				slog.String("subscription_id", sub.ID),
				slog.String("table", string(ev.Table)))
		}
	}
	h.logger.Debug("published", "table", string(ev.Table), "kind", string(ev.Kind),
		"delivered", delivered, "dropped", dropped)
	return nil
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Ping fails once the hub is closed.
func (h *Hub) Ping(context.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrClosed
	}
	return nil
}

// Close closes every subscription and rejects further use.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
	return nil
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[id]; ok {
		close(sub.ch)
		delete(h.subs, id)
	}
}
