package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/geomichelon/vtsdk/internal/vision"
)

// RunEvent announces a completed comparison run.
type RunEvent struct {
	RunID      string        `json:"runId"`
	TestName   string        `json:"testName,omitempty"`
	Similarity float64       `json:"similarity"`
	Status     vision.Status `json:"status,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// EventBroadcaster fans run events out to SSE clients
type EventBroadcaster struct {
	mu      sync.RWMutex
	clients map[chan RunEvent]struct{}
	closed  bool
}

// NewEventBroadcaster creates a new event broadcaster
func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{
		clients: make(map[chan RunEvent]struct{}),
	}
}

// Subscribe adds a client. The returned channel is closed on Unsubscribe or Close.
func (eb *EventBroadcaster) Subscribe() chan RunEvent {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan RunEvent, 10)
	if eb.closed {
		close(ch)
		return ch
	}
	eb.clients[ch] = struct{}{}

	slog.Debug("SSE client subscribed", "total_clients", len(eb.clients))
	return ch
}

// Unsubscribe removes a client from receiving events
func (eb *EventBroadcaster) Unsubscribe(ch chan RunEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if _, ok := eb.clients[ch]; ok {
		delete(eb.clients, ch)
		close(ch)
	}
	slog.Debug("SSE client unsubscribed", "total_clients", len(eb.clients))
}

// Broadcast sends an event to every client without blocking on slow ones.
func (eb *EventBroadcaster) Broadcast(event RunEvent) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for ch := range eb.clients {
		select {
		case ch <- event:
		default:
			slog.Warn("SSE channel full, skipping event", "run_id", event.RunID)
		}
	}
}

// Clients returns the number of subscribed clients.
func (eb *EventBroadcaster) Clients() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.clients)
}

// Close disconnects all clients; later subscribers get a closed channel.
func (eb *EventBroadcaster) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for ch := range eb.clients {
		close(ch)
	}
	eb.clients = make(map[chan RunEvent]struct{})
	eb.closed = true
}

// handleEvents handles GET /api/v1/events
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := s.runs.broadcaster.Subscribe()
	defer s.runs.broadcaster.Unsubscribe(events)

	// Comment line so clients see the stream open before the first run.
	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("SSE client disconnected")
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, event); err != nil {
				slog.Error("Failed to write SSE event", "error", err)
				return
			}
			flusher.Flush()

		case <-pingTicker.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes an event in SSE format
func writeSSEEvent(w http.ResponseWriter, event RunEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: run\ndata: %s\n\n", data)
	return err
}
