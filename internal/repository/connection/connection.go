package connection

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type Conn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one connected page. Writes are serialized so several goroutines can
// send to the same websocket.
type Client struct {
	Id        string
	SessionId string

	conn         Conn
	writeTimeout time.Duration
	mu           sync.Mutex
}

func NewClient(id, sessionId string, conn Conn, writeTimeout time.Duration) *Client {
	return &Client{
		Id:           id,
		SessionId:    sessionId,
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (c *Client) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}

	return c.conn.WriteJSON(v)
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.Close()
}
