package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-booking/events"
	"github.com/yeremiapane/restaurant-booking/utils"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	conn *websocket.Conn
	role string
	send chan []byte
}

// Hub holds the live-board websocket clients (staff and admin) and broadcasts booking events to them.
// Every client has its own writer goroutine, so a slow client only delays itself.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func New() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// Register -> adds a connection with the role it authenticated as
func (h *Hub) Register(conn *websocket.Conn, role string) {
	cl := &client{conn: conn, role: role, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	h.clients[conn] = cl
	count := len(h.clients)
	h.mutex.Unlock()

	go h.writePump(cl)
	utils.InfoLogger.Printf("Live board client connected (role=%s, clients=%d)", role, count)
}

// Unregister -> drops a connection; its writer closes it
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(conn)
}

// removeLocked expects h.mutex to be held.
func (h *Hub) removeLocked(conn *websocket.Conn) {
	cl, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(cl.send)
}

func (h *Hub) writePump(cl *client) {
	defer cl.conn.Close()
	for data := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error writing to %s client: %v", cl.role, err)
			h.Unregister(cl.conn)
			// drain until Unregister closes the channel
			for range cl.send {
			}
			return
		}
	}
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) Name() string { return "websocket" }

// Notify broadcasts a booking event as {"event": ..., "data": booking}.
func (h *Hub) Notify(ctx context.Context, e events.Event) error {
	return h.Broadcast(ctx, Message{Event: e.Type, Data: e.Booking})
}

// Broadcast queues msg for every client. A client whose queue is full is dropped.
func (h *Hub) Broadcast(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn, cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			utils.ErrorLogger.Printf("Dropping slow %s client, %s not delivered", cl.role, msg.Event)
			h.removeLocked(conn)
		}
	}
	return nil
}
