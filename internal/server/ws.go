package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jbw9/HabitReminder/internal/alert"
	"github.com/jbw9/HabitReminder/internal/habit"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventsHub broadcasts alert events and habit status frames to connected
// WebSocket clients. It implements alert.Sink, so the dispatcher can deliver
// straight into it.
type EventsHub struct {
	log     *logrus.Entry
	clients map[*websocket.Conn]bool

	// A websocket connection permits one concurrent writer, so every
	// broadcast holds mu for the duration of its writes.
	mu sync.Mutex
}

// NewEventsHub creates an EventsHub with no connected clients.
func NewEventsHub(log *logrus.Entry) *EventsHub {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &EventsHub{
		log:     log,
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Deliver implements alert.Sink and pushes the alert event to every client.
func (h *EventsHub) Deliver(ev alert.Event) error {
	msg, err := json.Marshal(map[string]any{
		"type":  "alert",
		"alert": ev,
	})
	if err != nil {
		return err
	}
	h.broadcast(msg)
	return nil
}

// BroadcastStatus pushes a habit status frame to every client.
func (h *EventsHub) BroadcastStatus(statuses map[habit.ID]habit.Status) {
	msg, err := json.Marshal(map[string]any{
		"type":      "status",
		"habits":    statuses,
		"timestamp": time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	h.broadcast(msg)
}

// broadcast sends msg to all connected clients. Write errors are left to the
// per-connection read loop, which sees the closed connection and unregisters it.
func (h *EventsHub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.WriteMessage(websocket.TextMessage, msg)
	}
}
