package localserver

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// PublisherClient is one accepted publisher connection.
type PublisherClient struct {
	ID   uuid.UUID
	conn *websocket.Conn
	send chan []byte

	mu             sync.Mutex
	pendingDelete  bool
}

func newPublisherClient(conn *websocket.Conn) *PublisherClient {
	return &PublisherClient{
		ID:   uuid.New(),
		conn: conn,
		send: make(chan []byte, 64),
	}
}

// markForDeletion flags the client for removal at the next poll boundary
// instead of closing it inline, per §4.9's two-phase del_user (avoids
// invalidating iterators during callback dispatch).
func (c *PublisherClient) markForDeletion() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = true
}

func (c *PublisherClient) isPendingDeletion() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingDelete
}

func (c *PublisherClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *PublisherClient) sendResponse(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
