package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

const DefaultChannel = "dispatch:config_changes"

type ChangeApplier interface {
	ApplyChange(ctx context.Context, change models.ConfigChange)
}

// Notifier spreads pricing configuration changes between instances over pub/sub.
type Notifier struct {
	client  *redis.Client
	channel string
	log     logger.Logger
}

func NewNotifier(client *redis.Client, channel string, log logger.Logger) *Notifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Notifier{client: client, channel: channel, log: log}
}

func (n *Notifier) Publish(ctx context.Context, change models.ConfigChange) error {
	const op = "Notifier.Publish"

	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}
	if err := n.client.Publish(ctx, n.channel, body).Err(); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// Listen applies every change received on the channel until ctx is done.
func (n *Notifier) Listen(ctx context.Context, applier ChangeApplier) error {
	ctx = wrap.WithAction(ctx, types.ActionConfigChange)

	sub := n.client.Subscribe(ctx, n.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", n.channel, err)
	}
	n.log.Info(ctx, "listening for config changes", "channel", n.channel)

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := n.handle(ctx, msg.Payload, applier); err != nil {
				n.log.Warn(ctx, "dropping malformed config change", "error", err.Error())
			}
		}
	}
}

func (n *Notifier) handle(ctx context.Context, payload string, applier ChangeApplier) error {
	var change models.ConfigChange
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return err
	}
	if change.Op == "" {
		return fmt.Errorf("change without op")
	}
	applier.ApplyChange(ctx, change)
	return nil
}
