// Package hub fans push events out to the live subscribers of each owner.
package hub

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
)

// Hub routes events to every open Subscription of the event's owner.
// Broadcast never blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
	logger logging.Logger
}

// Subscription is one push channel's view of the hub.
type Subscription struct {
	C <-chan models.Event

	ch    chan models.Event
	owner string
	hub   *Hub
	once  sync.Once
}

func New(buffer int, logger logging.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger.With("module", "hub"),
	}
}

// Subscribe registers a new subscriber for ownerID.
func (h *Hub) Subscribe(ownerID string) *Subscription {
	ch := make(chan models.Event, h.buffer)
	s := &Subscription{C: ch, ch: ch, owner: ownerID, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[ownerID] == nil {
		h.subs[ownerID] = make(map[*Subscription]struct{})
	}
	h.subs[ownerID][s] = struct{}{}

	return s
}

// Broadcast delivers ev to ownerID's subscribers.
func (h *Hub) Broadcast(ctx context.Context, ownerID string, ev models.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs[ownerID] {
		select {
		case s.ch <- ev:
		default:
			h.logger.Warn(ctx, "push buffer full, event dropped", "owner", ownerID, "type", ev.Type, "id", ev.Payload.ID)
		}
	}
}

// Subscribers reports how many subscriptions ownerID has open.
func (h *Hub) Subscribers(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[ownerID])
}

// Close unregisters the subscription and closes C. Safe to call repeatedly.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()

		delete(h.subs[s.owner], s)
		if len(h.subs[s.owner]) == 0 {
			delete(h.subs, s.owner)
		}
		close(s.ch)
	})
}
