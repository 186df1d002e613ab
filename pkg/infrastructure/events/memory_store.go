package events

import (
	"sync"

	"github.com/go-logr/logr"
)

type subscription struct {
	types   map[string]bool // empty matches every type
	handler EventHandler
}

func (s subscription) matches(eventType string) bool {
	return len(s.types) == 0 || s.types[eventType]
}

// InMemoryEventStore is a process-local event log. Handlers run
// synchronously on the appending goroutine, in subscription order, after the
// event is stored; they must not publish back into the store. Handler
// failures are logged and never fail the append.
type InMemoryEventStore struct {
	mu            sync.RWMutex
	logger        logr.Logger
	log           []Event
	versions      map[string]int
	subscriptions []subscription
}

// Verify interface compliance
var _ EventStore = (*InMemoryEventStore)(nil)

// NewInMemoryEventStore creates an event store that reports handler failures to logger
func NewInMemoryEventStore(logger logr.Logger) *InMemoryEventStore {
	return &InMemoryEventStore{
		logger:   logger,
		versions: make(map[string]int),
	}
}

// AppendEvent stores event as the next version of streamID and notifies
// matching handlers
func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mu.Lock()
	s.versions[streamID]++
	stored := BaseEvent{
		EventID:      event.ID(),
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: s.versions[streamID],
	}
	s.log = append(s.log, stored)

	var handlers []EventHandler
	for _, sub := range s.subscriptions {
		if sub.matches(stored.EventType) {
			handlers = append(handlers, sub.handler)
		}
	}
	s.mu.Unlock()

	for _, h := range handlers {
		if err := h.Handle(stored); err != nil {
			s.logger.Error(err, "event handler failed", "type", stored.EventType, "stream", streamID, "id", stored.EventID)
		}
	}
	return nil
}

// ReadAllEvents returns the events appended at or after fromPosition
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}
	if fromPosition >= len(s.log) {
		return []Event{}, nil
	}
	return append([]Event(nil), s.log[fromPosition:]...), nil
}

func (s *InMemoryEventStore) Subscribe(handler EventHandler, eventTypes ...string) {
	sub := subscription{handler: handler, types: make(map[string]bool, len(eventTypes))}
	for _, t := range eventTypes {
		sub.types[t] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = append(s.subscriptions, sub)
}
