package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 5 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 64
)

// Event is the JSON message sent over WebSocket.
type Event struct {
	Event string         `json:"event"`          // Event name (e.g., "message.created")
	Data  map[string]any `json:"data,omitempty"` // Event-specific data
	TS    int64          `json:"ts"`             // Timestamp (Unix ms)
}

type subscriber struct {
	ch chan Event
}

// Hub fans engagement events out to connected WebSocket clients. Each
// connection subscribes to a single engagement's stream.
type Hub struct {
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[uuid.UUID]map[*subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: make(map[uuid.UUID]map[*subscriber]struct{}),
	}
}

// Publish delivers an event to every subscriber of the engagement. Slow
// subscribers have the event dropped rather than blocking the caller.
// Safe to call on a nil hub.
func (h *Hub) Publish(engagementID uuid.UUID, event string, data any) {
	if h == nil {
		return
	}

	msg := Event{
		Event: event,
		Data:  toData(data),
		TS:    time.Now().UnixMilli(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[engagementID] {
		select {
		case sub.ch <- msg:
		default:
			slog.Debug("Dropped realtime event, subscriber buffer full",
				"event", event,
				"engagement_id", engagementID,
			)
		}
	}
}

// SubscriberCount returns the number of open connections for an engagement.
func (h *Hub) SubscriberCount(engagementID uuid.UUID) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[engagementID])
}

func (h *Hub) subscribe(engagementID uuid.UUID) *subscriber {
	sub := &subscriber{ch: make(chan Event, sendBuffer)}
	h.mu.Lock()
	if h.subs[engagementID] == nil {
		h.subs[engagementID] = make(map[*subscriber]struct{})
	}
	h.subs[engagementID][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) unsubscribe(engagementID uuid.UUID, sub *subscriber) {
	h.mu.Lock()
	if set := h.subs[engagementID]; set != nil {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, engagementID)
		}
	}
	h.mu.Unlock()
}

// Serve upgrades the request to a WebSocket connection and streams the
// engagement's events until the client disconnects. Authorization must
// happen before calling Serve.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, engagementID uuid.UUID) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("Failed to close WebSocket connection", "error", err)
		}
	}()

	sub := h.subscribe(engagementID)
	defer h.unsubscribe(engagementID, sub)

	slog.Debug("WebSocket subscriber connected", "engagement_id", engagementID)

	// Reader goroutine keeps the connection alive and detects disconnects
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(4096)
		_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg := <-sub.ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

// toData converts a payload to a map for JSON serialization.
func toData(payload any) map[string]any {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}
