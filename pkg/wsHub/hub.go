package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub stores the live connections of this process.
type ConnectionHub struct {
	clients map[string]*Conn
	l       logger.Logger
	mu      sync.RWMutex
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		clients: make(map[string]*Conn),
		l:       l,
	}
}

// Add registers a connection. A connection with the same id is closed and replaced.
func (h *ConnectionHub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	existing, ok := h.clients[newConn.id]
	h.clients[newConn.id] = newConn
	h.mu.Unlock()

	if ok && existing != newConn {
		ctx := wrap.WithAction(context.Background(), "add_ws_connection")
		h.l.Warn(ctx, "replacing existing connection", "conn_id", existing.id)
		if err := existing.Close(); err != nil {
			h.l.Warn(ctx, "failed to close existing conn", "conn_id", existing.id, "error", err.Error())
		}
	}

	return nil
}

// Delete removes and closes the connection.
func (h *ConnectionHub) Delete(id string) error {
	h.mu.Lock()
	conn, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()

	if !ok {
		return ErrConnIsNotFound
	}

	if err := conn.Close(); err != nil {
		h.l.Debug(wrap.WithAction(context.Background(), "ws_connection_delete"),
			"failed to close conn", "conn_id", id, "error", err.Error())
	}
	return nil
}

// SendTo sends to one connection. Returns ErrConnIsNotFound for unknown ids.
func (h *ConnectionHub) SendTo(id string, msg any) error {
	conn, err := h.GetConn(id)
	if err != nil {
		return err
	}
	return conn.Send(msg)
}

// SendToSubscriber sends to every connection of a subscriber and returns how many got it.
func (h *ConnectionHub) SendToSubscriber(subscriberID string, msg any) int {
	sent := 0
	for _, conn := range h.snapshot() {
		if conn.subscriberID != subscriberID {
			continue
		}
		if err := conn.Send(msg); err != nil {
			h.l.Debug(context.Background(), "send to subscriber failed", "conn_id", conn.id, "error", err.Error())
			continue
		}
		sent++
	}
	return sent
}

// Broadcast sends to every connection. Failed writes are skipped.
func (h *ConnectionHub) Broadcast(msg any) int {
	sent := 0
	for _, conn := range h.snapshot() {
		if err := conn.Send(msg); err != nil {
			h.l.Debug(context.Background(), "broadcast write failed", "conn_id", conn.id, "error", err.Error())
			continue
		}
		sent++
	}
	return sent
}

// Close closes every connection.
func (h *ConnectionHub) Close() {
	for _, conn := range h.snapshot() {
		_ = h.Delete(conn.id)
	}
	h.l.Info(wrap.WithAction(context.Background(), "hub_close"), "all websocket connections closed")
}

func (h *ConnectionHub) snapshot() []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Conn, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *ConnectionHub) GetConn(id string) (*Conn, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.clients[id]
	if !ok {
		return nil, ErrConnIsNotFound
	}
	return conn, nil
}

func (h *ConnectionHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Prune pings every connection and drops the ones that no longer answer.
func (h *ConnectionHub) Prune() int {
	removed := 0
	for _, c := range h.snapshot() {
		if err := c.Health(); err != nil {
			if h.Delete(c.ID()) == nil {
				removed++
			}
		}
	}
	return removed
}

// RunPruner prunes on every tick until ctx is done.
func (h *ConnectionHub) RunPruner(ctx context.Context, interval time.Duration) {
	ctx = wrap.WithAction(ctx, "ws_prune")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.Prune(); n > 0 {
				h.l.Debug(ctx, "pruned dead connections", "count", n, "remaining", h.Len())
			}
		}
	}
}
