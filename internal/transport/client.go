package transport

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client: a connection with serialized writes. The ping goroutine and the
// message loop both write.
type client struct {
	conn      *websocket.Conn
	writeWait time.Duration
	cancel    context.CancelFunc

	mu        sync.Mutex
	closeOnce sync.Once
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.conn.WriteJSON(v)
}

func (c *client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// closeGoingAway: tells the client the server is stopping, then closes
func (c *client) closeGoingAway() {
	c.mu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(c.writeWait))
	c.mu.Unlock()
	c.close()
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		_ = c.conn.Close()
	})
}
