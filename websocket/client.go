package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const (
	sendBufferSize = 256
	writeWait      = 30 * time.Second
)

// Client is one authenticated websocket session. Identity is fixed at
// connection establishment; the hub only ever writes through the buffered
// send queue so broadcasts never block on a slow socket.
type Client struct {
	UserID uuid.UUID
	Login  string

	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	rooms  map[string]struct{}
	closed bool
}

func NewClient(userID uuid.UUID, login string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Login:  login,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[string]struct{}),
	}
}

// SendJSON queues a control reply (joined/error frames) on the same outbound
// path the hub uses, keeping a single writer on the connection.
func (c *Client) SendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal frame for client %s: %v", c.UserID, err)
		return
	}
	if !c.enqueue(data) {
		log.Printf("Dropping frame for client %s: send buffer full or closed", c.UserID)
	}
}

// WritePump drains the send queue onto the connection. It returns when the
// queue is closed by Disconnect or when a write fails.
func (c *Client) WritePump() {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Client %s write error: %v", c.UserID, err)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) trackRoom(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[token] = struct{}{}
}

func (c *Client) untrackRoom(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, token)
}

func (c *Client) joinedRooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	tokens := make([]string, 0, len(c.rooms))
	for token := range c.rooms {
		tokens = append(tokens, token)
	}
	return tokens
}
