package model

import (
	"time"
)

// Event is an immutable record of something that happened on a Thing.
// Events are created by model logic, never by the protocol layer.
type Event struct {
	thing     *Thing
	name      string
	data      any
	timestamp time.Time
}

// NewEvent creates an event record stamped with the current time.
func NewEvent(thing *Thing, name string, data any) *Event {
	return &Event{
		thing:     thing,
		name:      name,
		data:      data,
		timestamp: time.Now().UTC(),
	}
}

// Thing returns the Thing the event occurred on.
func (e *Event) Thing() *Thing {
	return e.thing
}

// Name returns the event name.
func (e *Event) Name() string {
	return e.name
}

// Data returns the event payload, which may be nil.
func (e *Event) Data() any {
	return e.data
}

// Timestamp returns when the event was recorded.
func (e *Event) Timestamp() time.Time {
	return e.timestamp
}

// Description returns the event description keyed by name.
func (e *Event) Description() map[string]any {
	inner := map[string]any{
		"timestamp": e.timestamp.Format(time.RFC3339),
	}
	if e.data != nil {
		inner["data"] = e.data
	}
	return map[string]any{e.name: inner}
}
