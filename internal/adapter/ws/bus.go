package ws

import (
	"context"
	"sync"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-dispatch/pkg/metrics"
	wshub "github.com/Temutjin2k/ride-dispatch/pkg/wsHub"
)

// Relay carries envelopes to every instance, this one included.
type Relay interface {
	Publish(ctx context.Context, env models.Envelope) error
}

// Bus delivers real-time events to websocket connections. With a relay every
// instance delivers to its own connections; without one delivery is local.
type Bus struct {
	hub        *wshub.ConnectionHub
	instanceID string
	log        logger.Logger

	mu    sync.RWMutex
	relay Relay
}

func NewBus(hub *wshub.ConnectionHub, instanceID string, log logger.Logger) *Bus {
	return &Bus{hub: hub, instanceID: instanceID, log: log}
}

// SetRelay switches the bus to cross-instance delivery.
func (b *Bus) SetRelay(r Relay) {
	b.mu.Lock()
	b.relay = r
	b.mu.Unlock()
}

func (b *Bus) Hub() *wshub.ConnectionHub { return b.hub }

func (b *Bus) Broadcast(ctx context.Context, event models.Event) {
	b.dispatch(ctx, models.Envelope{Scope: models.ScopeAll, Event: event})
}

// Notify delivers to every connection opened by subscriberID.
func (b *Bus) Notify(ctx context.Context, subscriberID string, event models.Event) {
	b.dispatch(ctx, models.Envelope{Scope: models.ScopeSubscriber, Target: subscriberID, Event: event})
}

// SendToConnection delivers to a single connection id.
func (b *Bus) SendToConnection(ctx context.Context, connID string, event models.Event) {
	b.dispatch(ctx, models.Envelope{Scope: models.ScopeConnection, Target: connID, Event: event})
}

func (b *Bus) dispatch(ctx context.Context, env models.Envelope) {
	env.Origin = b.instanceID

	b.mu.RLock()
	relay := b.relay
	b.mu.RUnlock()

	if relay != nil {
		err := relay.Publish(ctx, env)
		if err == nil {
			return
		}
		ctx = wrap.WithAction(ctx, types.ActionEventRelay)
		b.log.Warn(ctx, "relay publish failed, delivering locally", "event", env.Event.Name, "error", err.Error())
	}
	b.Deliver(ctx, env)
}

// Deliver writes env to the matching local connections and returns how many got it.
func (b *Bus) Deliver(ctx context.Context, env models.Envelope) int {
	var n int
	switch env.Scope {
	case models.ScopeSubscriber:
		n = b.hub.SendToSubscriber(env.Target, env.Event)
	case models.ScopeConnection:
		if err := b.hub.SendTo(env.Target, env.Event); err == nil {
			n = 1
		}
	default:
		n = b.hub.Broadcast(env.Event)
	}

	metrics.FanoutEventsTotal.WithLabelValues(env.Event.Name, env.Scope).Add(float64(n))
	if n == 0 && env.Scope != models.ScopeAll {
		b.log.Debug(ctx, "no local receiver", "event", env.Event.Name, "target", env.Target)
	}
	return n
}
