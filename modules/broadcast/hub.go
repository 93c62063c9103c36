package broadcast

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/NotYuSheng/mernverse/metrics"
)

// sendBuffer is the per-client outbound queue depth. A recipient that
// falls this far behind starts losing frames instead of stalling the
// broadcaster.
const sendBuffer = 64

// Conn is the transport half the hub writes to. *websocket.Conn
// satisfies it; tests substitute an in-memory fake.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// client is one registered connection with its outbound queue. The
// writer goroutine owns the underlying Conn; nothing else writes to it.
type client struct {
	id   string
	conn Conn
	send chan []byte
}

func (c *client) writeLoop() {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			// Dead transport: drop silently. The connection's own
			// disconnect handling cleans up membership.
			metrics.BroadcastDropped.Inc()
			continue
		}
		metrics.BroadcastDelivered.Inc()
	}
	_ = c.conn.Close()
}

// Delivery is the outcome of one broadcast: how many recipients had the
// frame queued and how many were skipped because their queue was full.
// Callers are free to ignore it; delivery is best-effort.
type Delivery struct {
	Queued  int
	Dropped int
}

// Hub tracks registered connections and room membership, and fans
// frames out to rooms. A connection is a member of at most one room at
// any instant. Membership is valid before identity resolution; the hub
// knows nothing about display names.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	rooms    map[string]map[string]struct{} // room id -> set of connection ids
	memberOf map[string]string              // connection id -> room id
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]*client),
		rooms:    make(map[string]map[string]struct{}),
		memberOf: make(map[string]string),
	}
}

// Register adds a connection and starts its writer goroutine.
func (h *Hub) Register(connID string, conn Conn) {
	c := &client{id: connID, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[connID] = c
	h.mu.Unlock()

	go c.writeLoop()
}

// Unregister removes a connection from the hub and from its room, and
// closes its outbound queue. Safe to call for unknown ids.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	delete(h.clients, connID)
	h.leaveLocked(connID)
	close(c.send)
}

// Join moves the connection into roomID, leaving its previous room
// first. The membership set is created implicitly.
func (h *Hub) Join(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(connID)
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]struct{})
	}
	h.rooms[roomID][connID] = struct{}{}
	h.memberOf[connID] = roomID
}

// Leave removes the connection from its current room and reports which
// room it was in.
func (h *Hub) Leave(connID string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID, ok := h.memberOf[connID]
	if ok {
		h.leaveLocked(connID)
	}
	return roomID, ok
}

// Room reports the connection's current room, if any.
func (h *Hub) Room(connID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	roomID, ok := h.memberOf[connID]
	return roomID, ok
}

// Broadcast queues the frame for every connection currently in roomID,
// the sender included. A recipient with a full queue is skipped; the
// broadcaster never blocks on a slow connection.
func (h *Hub) Broadcast(roomID string, frame Frame) Delivery {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("[broadcast] Failed to marshal frame: %v", err)
		return Delivery{}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	var d Delivery
	for connID := range h.rooms[roomID] {
		c, ok := h.clients[connID]
		if !ok {
			continue
		}
		select {
		case c.send <- data:
			d.Queued++
		default:
			d.Dropped++
			metrics.BroadcastDropped.Inc()
		}
	}
	return d
}

// SendTo queues a frame for a single connection, used for replies and
// error notifications to the originating connection only.
func (h *Hub) SendTo(connID string, frame Frame) bool {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("[broadcast] Failed to marshal frame: %v", err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connID]
	if !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		metrics.BroadcastDropped.Inc()
		return false
	}
}

// Members returns the connection ids currently in roomID.
func (h *Hub) Members(roomID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make([]string, 0, len(h.rooms[roomID]))
	for connID := range h.rooms[roomID] {
		members = append(members, connID)
	}
	return members
}

// ClientCount reports the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomCount reports the number of rooms with at least one member.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Close shuts down every registered connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		close(c.send)
	}
	h.clients = make(map[string]*client)
	h.rooms = make(map[string]map[string]struct{})
	h.memberOf = make(map[string]string)
}

// leaveLocked removes the connection from its room, deleting the room's
// membership set once empty so no empty rooms are retained. Caller must
// hold h.mu.
func (h *Hub) leaveLocked(connID string) {
	roomID, ok := h.memberOf[connID]
	if !ok {
		return
	}
	delete(h.memberOf, connID)
	if members, ok := h.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}
