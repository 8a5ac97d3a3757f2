package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/aretw0/xcallback/pkg/domain"
)

// EventStream fans lifecycle events out to SSE subscribers.
type EventStream struct {
	mu   sync.RWMutex
	subs map[chan Frame]struct{}
}

// Frame is one server-sent event.
type Frame struct {
	Event string
	Data  []byte
}

// NewEventStream creates an EventStream without subscribers.
func NewEventStream() *EventStream {
	return &EventStream{subs: make(map[chan Frame]struct{})}
}

// Subscribe registers a subscriber. The returned func unsubscribes.
func (es *EventStream) Subscribe() (<-chan Frame, func()) {
	ch := make(chan Frame, 16)
	es.mu.Lock()
	es.subs[ch] = struct{}{}
	es.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			es.mu.Lock()
			delete(es.subs, ch)
			es.mu.Unlock()
		})
	}
}

// Subscribers returns the number of live subscribers.
func (es *EventStream) Subscribers() int {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return len(es.subs)
}

// Publish sends an event to every subscriber. Slow subscribers miss events
// rather than blocking the engine.
func (es *EventStream) Publish(event domain.EventType, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	f := Frame{Event: string(event), Data: data}

	es.mu.RLock()
	defer es.mu.RUnlock()
	for ch := range es.subs {
		select {
		case ch <- f:
		default:
		}
	}
}

// Hooks returns lifecycle hooks that publish into the stream.
func (es *EventStream) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequestSent: func(_ context.Context, e *domain.RequestEvent) {
			es.Publish(e.Type, e)
		},
		OnResponseReceived: func(_ context.Context, e *domain.ResponseEvent) {
			es.Publish(e.Type, e)
		},
		OnActionDispatched: func(_ context.Context, e *domain.DispatchEvent) {
			es.Publish(e.Type, e)
		},
		OnResultSent: func(_ context.Context, e *domain.DispatchEvent) {
			es.Publish(e.Type, e)
		},
		OnDropped: func(_ context.Context, e *domain.DropEvent) {
			es.Publish(e.Type, e)
		},
	}
}

// SubscribeEvents handles GET /events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Events.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case f := <-ch:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.Event, f.Data)
			flusher.Flush()
		}
	}
}
