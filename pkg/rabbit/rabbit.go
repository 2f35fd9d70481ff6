package rabbit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	actionConnected = "rabbitmq_connected"
	actionClosed    = "rabbitmq_connection_closed"
	actionClosing   = "rabbitmq_connection_closing"
	actionReconnect = "rabbitmq_reconnection_success"

	reconnectAttempts = 5
)

var ErrClosed = errors.New("rabbitmq connection is closed")

// RabbitMQ owns one connection and one channel and redials them on demand.
type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel

	mu       sync.Mutex
	isClosed bool
	dsn      string

	log logger.Logger
}

func New(ctx context.Context, dsn string, log logger.Logger) (*RabbitMQ, error) {
	r := &RabbitMQ{dsn: dsn, log: log}

	conn, ch, err := dial(dsn)
	if err != nil {
		return nil, err
	}
	r.attach(conn, ch)

	log.Info(wrap.WithAction(ctx, actionConnected), "connected to rabbitMQ")
	return r, nil
}

func dial(dsn string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(dsn, amqp.Config{
		Heartbeat: 10 * time.Second,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

// attach stores the pair and watches both for closure.
func (r *RabbitMQ) attach(conn *amqp.Connection, ch *amqp.Channel) {
	connClose := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClose := ch.NotifyClose(make(chan *amqp.Error, 1))

	r.Conn = conn
	r.Channel = ch
	r.isClosed = false

	go func() {
		var closeErr *amqp.Error
		select {
		case closeErr = <-connClose:
		case closeErr = <-chClose:
		}

		r.mu.Lock()
		if r.Conn == conn {
			r.isClosed = true
		}
		r.mu.Unlock()

		ctx := wrap.WithAction(context.Background(), actionClosed)
		if closeErr != nil {
			r.log.Error(ctx, "RabbitMQ connection closed with error", closeErr)
		} else {
			r.log.Debug(ctx, "RabbitMQ connection closed gracefully")
		}
	}()
}

// IsConnectionClosed checks if the connection is closed
func (r *RabbitMQ) IsConnectionClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Conn == nil || r.Channel == nil {
		return true
	}
	return r.isClosed || r.Conn.IsClosed() || r.Channel.IsClosed()
}

// Ch returns the current channel or ErrClosed.
func (r *RabbitMQ) Ch() (*amqp.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Channel == nil || r.isClosed {
		return nil, ErrClosed
	}
	return r.Channel, nil
}

func (r *RabbitMQ) Close(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, actionClosing)

	r.mu.Lock()
	ch, conn := r.Channel, r.Conn
	r.Channel, r.Conn = nil, nil
	r.isClosed = true
	r.dsn = ""
	r.mu.Unlock()

	if ch != nil {
		if err := closeWithCtxFunc(ctx, ch.Close); err != nil && ctx.Err() == nil {
			r.log.Error(ctx, "error closing channel", err)
		}
	}

	if conn != nil {
		if err := closeWithCtxFunc(ctx, conn.Close); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}

	r.log.Info(wrap.WithAction(ctx, actionClosed), "rabbitMQ closed")
	return nil
}

func closeWithCtxFunc(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reconnect redials with a linear backoff. It is a no-op while the connection is healthy.
func (r *RabbitMQ) Reconnect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dsn == "" {
		return fmt.Errorf("dsn is empty: can't reconnect")
	}

	if !r.isClosed && r.Conn != nil && !r.Conn.IsClosed() && r.Channel != nil && !r.Channel.IsClosed() {
		return nil
	}

	var (
		conn *amqp.Connection
		ch   *amqp.Channel
		err  error
	)
	for i := range reconnectAttempts {
		conn, ch, err = dial(r.dsn)
		if err == nil {
			break
		}

		wait := time.Duration(i+1) * 2 * time.Second
		r.log.Debug(ctx, "reconnect attempt failed", "attempt", i+1, "retry_in", wait.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	if err != nil {
		return fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
	}

	r.attach(conn, ch)
	r.log.Info(wrap.WithAction(ctx, actionReconnect), "RabbitMQ reconnected successfully")
	return nil
}

func (r *RabbitMQ) EnsureConnection(ctx context.Context) error {
	if r.IsConnectionClosed() {
		r.log.Warn(ctx, "rabbit connection closed, reconnecting")
		if err := r.Reconnect(ctx); err != nil {
			return err
		}
	}
	return nil
}
