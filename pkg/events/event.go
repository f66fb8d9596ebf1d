package events

import "time"

// Event is anything the analysis pipeline announces to the rest of the
// system (contract analyzed, analysis failed).
type Event interface {
	// EventType returns the unique code for this event (e.g. "CONTRACT_ANALYZED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Envelope is the wire format on the bus. Type and occurrence time travel
// inside the payload so consumers do not have to infer them from the subject
// or stamp reception time.
type Envelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
