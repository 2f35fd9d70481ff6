package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-dispatch/pkg/metrics"
	"github.com/Temutjin2k/ride-dispatch/pkg/rabbit"
)

const DefaultEventsExchange = "dispatch_events"

// Deliverer writes an envelope to the local websocket connections.
type Deliverer interface {
	Deliver(ctx context.Context, env models.Envelope) int
}

// EventRelay fans real-time events out to every instance through a fanout exchange.
// Each instance consumes from its own exclusive, auto-deleted queue.
type EventRelay struct {
	client   *rabbit.RabbitMQ
	exchange string
	l        logger.Logger
}

func NewEventRelay(client *rabbit.RabbitMQ, exchange string, l logger.Logger) *EventRelay {
	if exchange == "" {
		exchange = DefaultEventsExchange
	}
	return &EventRelay{client: client, exchange: exchange, l: l}
}

// Setup declares the exchange. Publishing before it exists closes the channel.
func (r *EventRelay) Setup(ctx context.Context) error {
	const op = "EventRelay.Setup"

	ch, err := r.client.Ch()
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if err := ch.ExchangeDeclare(r.exchange, "fanout", true, false, false, false, nil); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: declare exchange failed: %w", op, err))
	}
	return nil
}

func (r *EventRelay) Publish(ctx context.Context, env models.Envelope) error {
	const op = "EventRelay.Publish"

	body, err := json.Marshal(env)
	if err != nil {
		ctx = wrap.WithAction(ctx, "marshal_envelope")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to marshal message: %w", op, err))
	}

	ch, err := r.client.Ch()
	if err == nil {
		err = ch.PublishWithContext(
			ctx,
			r.exchange, // exchange
			"",         // routing key, ignored by fanout
			false,      // mandatory
			false,      // immediate
			amqp.Publishing{
				ContentType: "application/json",
				Body:        body,
				Timestamp:   time.Now(),
			},
		)
	}
	metrics.RecordRabbitMQPublish(r.exchange, err)
	if err != nil {
		ctx = wrap.WithAction(ctx, "publish_message")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to publish with context: %w", op, err))
	}
	return nil
}

func (r *EventRelay) handleMessage(ctx context.Context, d Deliverer, msg amqp.Delivery) {
	const op = "EventRelay.handleMessage"

	var env models.Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		metrics.RecordRabbitMQConsume(r.exchange, err)
		r.l.Error(ctx, "decode failed", err, "op", op)
		_ = msg.Reject(false)
		return
	}
	metrics.RecordRabbitMQConsume(r.exchange, nil)

	d.Deliver(ctx, env)

	if err := msg.Ack(false); err != nil {
		r.l.Warn(ctx, "ack failed", "error", err.Error(), "op", op)
	}
}

// Consume delivers every relayed envelope locally until ctx is done,
// redialing when the broker connection drops.
func (r *EventRelay) Consume(ctx context.Context, d Deliverer) error {
	const op = "EventRelay.Consume"
	ctx = wrap.WithAction(ctx, types.ActionEventRelay)

	for {
		if ctx.Err() != nil {
			r.l.Debug(ctx, "event relay stopped by context")
			return nil
		}

		msgs, err := r.subscribe(ctx)
		if err != nil {
			r.l.Error(ctx, "subscribe failed", err, "op", op)
			if !sleepCtx(ctx, 2*time.Second) {
				return nil
			}
			continue
		}

		r.l.Info(ctx, "start consuming relayed events", "exchange", r.exchange)
		if !r.drain(ctx, d, msgs) {
			return nil
		}
		r.l.Warn(ctx, "message channel closed, reconnecting...", "op", op)
		if !sleepCtx(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (r *EventRelay) subscribe(ctx context.Context) (<-chan amqp.Delivery, error) {
	if err := r.client.EnsureConnection(ctx); err != nil {
		return nil, err
	}
	if err := r.Setup(ctx); err != nil {
		return nil, err
	}

	ch, err := r.client.Ch()
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue failed: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", r.exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue failed: %w", err)
	}
	return ch.Consume(q.Name, "", false, true, false, false, nil)
}

// drain returns false when ctx ended and true when the delivery channel closed.
func (r *EventRelay) drain(ctx context.Context, d Deliverer, msgs <-chan amqp.Delivery) bool {
	for {
		select {
		case <-ctx.Done():
			r.l.Info(ctx, "event relay shutting down")
			return false
		case msg, ok := <-msgs:
			if !ok {
				return true
			}
			r.handleMessage(ctx, d, msg)
		}
	}
}
