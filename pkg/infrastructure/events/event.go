package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is an immutable record of a committed inventory change
type Event interface {
	ID() uuid.UUID
	Type() string
	StreamID() string
	Data() interface{}
	Timestamp() time.Time
	Version() int
}

// EventHandler reacts to published events
type EventHandler interface {
	Handle(event Event) error
}

// HandlerFunc adapts a function to an EventHandler
type HandlerFunc func(Event) error

func (f HandlerFunc) Handle(event Event) error {
	return f(event)
}

// EventStore keeps the ordered event log and fans new events out to handlers
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadAllEvents(fromPosition int) ([]Event, error)
	// Subscribe registers handler for eventTypes, or for every type when none are given
	Subscribe(handler EventHandler, eventTypes ...string)
}

type BaseEvent struct {
	EventID      uuid.UUID
	EventType    string
	Stream       string
	EventData    interface{}
	EventTime    time.Time
	EventVersion int
}

func (e BaseEvent) ID() uuid.UUID {
	return e.EventID
}

func (e BaseEvent) Type() string {
	return e.EventType
}

func (e BaseEvent) StreamID() string {
	return e.Stream
}

func (e BaseEvent) Data() interface{} {
	return e.EventData
}

func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func (e BaseEvent) Version() int {
	return e.EventVersion
}

// NewEventAt creates an unversioned event stamped with the given time. The
// store assigns the stream version on append.
func NewEventAt(eventType, streamID string, data interface{}, at time.Time) Event {
	return BaseEvent{
		EventID:   uuid.New(),
		EventType: eventType,
		Stream:    streamID,
		EventData: data,
		EventTime: at,
	}
}
