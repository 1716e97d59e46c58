// Package event defines all events that can be published by the application.
// Events represent state changes and are consumed by the presentation layer.
package event

// Event is the base interface for all events.
// Events are published by the application layer and consumed by subscribers.
type Event interface {
	// EventName returns the name of the event for logging/debugging
	EventName() string
}

// JobEvent is an event produced by a specific command.
type JobEvent interface {
	Event
	// JobID returns the correlation ID of the command that produced the event
	JobID() string
}

// baseJobEvent provides common implementation for job events.
type baseJobEvent struct {
	jobID string
}

func (e *baseJobEvent) JobID() string {
	return e.jobID
}
