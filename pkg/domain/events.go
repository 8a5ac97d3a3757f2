package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRequestSent      EventType = "request_sent"
	EventResponseReceived EventType = "response_received"
	EventActionDispatched EventType = "action_dispatched"
	EventResultSent       EventType = "result_sent"
	EventDropped          EventType = "dropped"
)

// Drop reasons reported in DropEvent.
const (
	DropMalformedResponse = "malformed_response"
	DropUnknownRequest    = "unknown_request"
	DropNoCallback        = "no_callback"
	DropLaunchFailed      = "launch_failed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// RequestEvent is emitted after a request URL has been handed to the host.
type RequestEvent struct {
	EventBase
	RequestID string `json:"request_id"`
	Scheme    string `json:"scheme"`
	Action    string `json:"action"`
	URL       string `json:"url"`
}

// ResponseEvent is emitted when a response resolves a pending request.
type ResponseEvent struct {
	EventBase
	RequestID string     `json:"request_id"`
	Kind      ResultKind `json:"kind"`
}

// DispatchEvent is emitted when an inbound action is handed to a strategy
// and again when its result is routed back.
type DispatchEvent struct {
	EventBase
	Action   string     `json:"action"`
	Strategy string     `json:"strategy"`
	Kind     ResultKind `json:"kind,omitempty"`
}

// DropEvent is emitted whenever an inbound URL or an outcome is discarded.
type DropEvent struct {
	EventBase
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnRequestSent      func(context.Context, *RequestEvent)
	OnResponseReceived func(context.Context, *ResponseEvent)
	OnActionDispatched func(context.Context, *DispatchEvent)
	OnResultSent       func(context.Context, *DispatchEvent)
	OnDropped          func(context.Context, *DropEvent)
}

// NewEventBase stamps an event with the current time.
func NewEventBase(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t}
}
