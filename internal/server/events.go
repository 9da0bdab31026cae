package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kapu/contentful-constructor-go/internal/app"
	"go.uber.org/zap"
)

// writeWait caps how long one subscriber write may stall the broadcast.
const writeWait = 5 * time.Second

// EventHub fans indexation progress events out to connected operator panels.
// Implements app.ProgressPublisher.
type EventHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	logger  *zap.Logger
}

func NewEventHub(logger *zap.Logger) *EventHub {
	return &EventHub{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger,
	}
}

func (h *EventHub) Join(ws *websocket.Conn) {
	h.mu.Lock()
	h.clients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *EventHub) Leave(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// Publish broadcasts one progress event. Slow or dead connections are dropped
// rather than blocking the pipeline.
func (h *EventHub) Publish(ev app.ProgressEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	var stale []*websocket.Conn
	for ws := range h.clients {
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
			stale = append(stale, ws)
		}
	}
	for _, ws := range stale {
		delete(h.clients, ws)
		_ = ws.Close()
	}
	h.mu.Unlock()

	if len(stale) > 0 {
		h.logger.Debug("Dropped stale progress subscribers", zap.Int("count", len(stale)))
	}
}

// Count reports the number of connected subscribers.
func (h *EventHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
