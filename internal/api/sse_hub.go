package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"rngbench/domain/run"
)

// Progress event types
const (
	EventCell      = "cell"
	EventCompleted = "completed"
	EventFailed    = "failed"
)

// ProgressEvent reports the state of a running comparison
type ProgressEvent struct {
	RunID     string    `json:"run_id"`
	EventType string    `json:"event_type"`
	Cell      *run.Cell `json:"cell,omitempty"`
	Done      int       `json:"done"`
	Total     int       `json:"total"`
	Progress  float64   `json:"progress"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// clientBuffer is the number of cell events a client may fall behind; one
// more slot is held back for the run's final event
const clientBuffer = 32

// final reports whether the event ends its run
func (e ProgressEvent) final() bool {
	return e.EventType == EventCompleted || e.EventType == EventFailed
}

// SSEHub fans comparison progress out to Server-Sent Events clients
type SSEHub struct {
	clients   map[string]map[chan ProgressEvent]bool
	clientsMu sync.RWMutex
	broadcast chan ProgressEvent
}

// NewSSEHub creates a new SSE hub
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:   make(map[string]map[chan ProgressEvent]bool),
		broadcast: make(chan ProgressEvent, 100),
	}

	go hub.run()
	return hub
}

// run delivers queued events to the clients of their run. It is the only
// sender on client channels, so the reserved slot is still free when the
// final event arrives.
func (h *SSEHub) run() {
	for event := range h.broadcast {
		h.clientsMu.RLock()
		for clientChan := range h.clients[event.RunID] {
			if !event.final() && len(clientChan) >= cap(clientChan)-1 {
				log.Printf("[SSE] Client channel full for run %s, skipping %s event", event.RunID, event.EventType)
				continue
			}
			select {
			case clientChan <- event:
			default:
				log.Printf("[SSE] Client channel full for run %s, skipping %s event", event.RunID, event.EventType)
			}
		}
		h.clientsMu.RUnlock()
	}
}

// Subscribe registers a client for one run's events
func (h *SSEHub) Subscribe(runID string) chan ProgressEvent {
	ch := make(chan ProgressEvent, clientBuffer+1)
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	if h.clients[runID] == nil {
		h.clients[runID] = make(map[chan ProgressEvent]bool)
	}
	h.clients[runID][ch] = true
	return ch
}

// Unsubscribe removes and closes a client channel
func (h *SSEHub) Unsubscribe(runID string, ch chan ProgressEvent) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	clients, exists := h.clients[runID]
	if !exists || !clients[ch] {
		return
	}
	delete(clients, ch)
	close(ch)
	if len(clients) == 0 {
		delete(h.clients, runID)
	}
}

// Broadcast queues an event for every client listening to its run. Cell
// events are dropped when the queue is full; final events wait for room.
func (h *SSEHub) Broadcast(event ProgressEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Total > 0 {
		event.Progress = float64(event.Done) / float64(event.Total)
	}
	if event.final() {
		h.broadcast <- event
		return
	}
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast channel full, dropping %s event for run %s", event.EventType, event.RunID)
	}
}

// ClientCount returns the number of clients listening to a run
func (h *SSEHub) ClientCount(runID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[runID])
}

// HandleSSE streams a run's events until it completes or the client leaves
func (h *SSEHub) HandleSSE(c *gin.Context) {
	runID := c.Query("id")
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id parameter required"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := h.Subscribe(runID)
	defer h.Unsubscribe(runID, clientChan)

	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-clientChan:
			if !ok {
				return false
			}
			eventJSON, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.EventType, string(eventJSON))
			return !event.final()

		case <-time.After(30 * time.Second):
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}
