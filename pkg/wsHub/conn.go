package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

var (
	ErrConnClosed   = errors.New("connection closed")
	ErrInvalidFrame = errors.New("invalid frame")
)

// Socket is the part of *websocket.Conn used by Conn.
type Socket interface {
	WriteJSON(v any) error
	ReadMessage() (messageType int, p []byte, err error)
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Message is a decoded inbound frame.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type Conn struct {
	id           string
	subscriberID string
	conn         Socket
	doneCtx      context.Context
	cancel       context.CancelFunc
	mu           sync.Mutex
}

func NewConn(ctx context.Context, id, subscriberID string, conn Socket) *Conn {
	ctx, cancel := context.WithCancel(ctx)

	return &Conn{
		id:           id,
		subscriberID: subscriberID,
		conn:         conn,
		doneCtx:      ctx,
		cancel:       cancel,
	}
}

func (c *Conn) ID() string           { return c.id }
func (c *Conn) SubscriberID() string { return c.subscriberID }

// Done is closed once the connection is closed.
func (c *Conn) Done() <-chan struct{} { return c.doneCtx.Done() }

func (c *Conn) Health() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.health()
}

// health expects c.mu to be held.
func (c *Conn) health() error {
	if c.conn == nil {
		return errors.New("connection is nil")
	}

	select {
	case <-c.doneCtx.Done():
		return ErrConnClosed
	default:
	}

	if err := c.conn.WriteControl(
		websocket.PingMessage,
		[]byte("ping"),
		time.Now().Add(3*time.Second),
	); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	return nil
}

// Send writes v as a single JSON frame.
func (c *Conn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.doneCtx.Done():
		return ErrConnClosed
	default:
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	return c.conn.WriteJSON(v)
}

// Listen reads frames until the connection fails or is closed. A frame that
// does not decode into a Message is passed to invalid, when set, and the loop
// goes on.
func (c *Conn) Listen(handler func(msg Message) error, invalid func(err error)) error {
	for {
		select {
		case <-c.doneCtx.Done():
			return ErrConnClosed
		default:
		}

		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			if invalid != nil {
				invalid(fmt.Errorf("%w: %w", ErrInvalidFrame, err))
			}
			continue
		}
		if err := handler(msg); err != nil {
			return fmt.Errorf("handler failed: %w", err)
		}
	}
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
