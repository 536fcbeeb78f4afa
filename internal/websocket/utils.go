package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn serializes writes to an underlying WebSocket connection. The tick
// pusher and the action loop both write; gorilla/websocket permits only
// one concurrent writer.
type Conn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewConn wraps an upgraded connection.
func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func (c *Conn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *Conn) WriteError(errMsg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline. Reads stay single-goroutine and unlocked.
func (c *Conn) ReadJSON(v interface{}) error {
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	return c.conn.ReadJSON(v)
}
