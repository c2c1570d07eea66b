package event

import (
	"slices"
	"sync"

	"github.com/labstock/backend/internal/domain/shared"
)

// subscriptions maps event types to handlers. Handlers registered without
// event types receive everything.
type subscriptions struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	wildcard []shared.EventHandler
}

func newSubscriptions() *subscriptions {
	return &subscriptions{byType: make(map[string][]shared.EventHandler)}
}

func (s *subscriptions) add(handler shared.EventHandler, eventTypes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(eventTypes) == 0 {
		s.wildcard = append(s.wildcard, handler)
		return
	}
	for _, t := range eventTypes {
		s.byType[t] = append(s.byType[t], handler)
	}
}

func (s *subscriptions) remove(handler shared.EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := func(h shared.EventHandler) bool { return h == handler }
	s.wildcard = slices.DeleteFunc(s.wildcard, drop)
	for t, hs := range s.byType {
		hs = slices.DeleteFunc(hs, drop)
		if len(hs) == 0 {
			delete(s.byType, t)
			continue
		}
		s.byType[t] = hs
	}
}

// handlersFor returns a snapshot of the handlers interested in eventType.
func (s *subscriptions) handlersFor(eventType string) []shared.EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()

	typed := s.byType[eventType]
	out := make([]shared.EventHandler, 0, len(typed)+len(s.wildcard))
	out = append(out, typed...)
	return append(out, s.wildcard...)
}

func (s *subscriptions) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.wildcard)
	for _, hs := range s.byType {
		n += len(hs)
	}
	return n
}
