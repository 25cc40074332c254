package utility

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// writeWait bounds a single push to a slow client.
const writeWait = 5 * time.Second

// Upgrader accepts websocket connections from any origin; CORS is handled by the router.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ChangeMessage tells a connected client which collection to re-fetch.
type ChangeMessage struct {
	Collection string `json:"collection"`
}

// Hub holds the open connections of each user: map[userID] -> set of connections.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*websocket.Conn]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*websocket.Conn]struct{})}
}

// Register adds a connection for userID.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[userID]
	if !ok {
		conns = make(map[*websocket.Conn]struct{})
		h.clients[userID] = conns
	}
	conns[conn] = struct{}{}
	log.Info().Str("user_id", userID).Msg("WebSocket client connected")
}

// Unregister removes a connection (the tab was closed).
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[userID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; ok {
		delete(conns, conn)
		log.Info().Str("user_id", userID).Msg("WebSocket client disconnected")
	}
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
}

// Connections reports how many sockets userID has open.
func (h *Hub) Connections(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Notify pushes a change message to every connection of userID.
// Connections that fail to receive are closed and dropped.
func (h *Hub) Notify(userID, collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients[userID] {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(ChangeMessage{Collection: collection}); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to send WS message, removing client")
			conn.Close()
			delete(h.clients[userID], conn)
		}
	}
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}
