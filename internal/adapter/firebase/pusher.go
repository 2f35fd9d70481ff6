package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

// FCM accepts at most 500 tokens per multicast.
const maxMulticastTokens = 500

type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Pusher sends push notifications through Firebase Cloud Messaging.
type Pusher struct {
	client messagingClient
	log    logger.Logger
}

// New builds the messaging client. An empty credentialsFile falls back to
// application default credentials.
func New(ctx context.Context, projectID, credentialsFile string, log logger.Logger) (*Pusher, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Messaging: %w", err)
	}
	return &Pusher{client: client, log: log}, nil
}

func notification(title, body string) (*messaging.Notification, *messaging.AndroidConfig, *messaging.APNSConfig) {
	return &messaging.Notification{Title: title, Body: body},
		&messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority_channel",
			},
		},
		&messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{Title: title, Body: body},
					Sound: "default",
				},
			},
		}
}

func (p *Pusher) Send(ctx context.Context, push models.Push) error {
	const op = "Pusher.Send"
	if push.Token == "" {
		return types.NewValidation("token is required")
	}

	n, android, apns := notification(push.Title, push.Body)
	id, err := p.client.Send(ctx, &messaging.Message{
		Token:        push.Token,
		Notification: n,
		Data:         push.Data,
		Android:      android,
		APNS:         apns,
	})
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.NewService("failed to send notification", err)))
	}

	p.log.Debug(ctx, "push notification sent", "message_id", id)
	return nil
}

// SendBulk sends one notification to many devices in batches of 500 and reports
// the tokens that failed.
func (p *Pusher) SendBulk(ctx context.Context, push models.BulkPush) (models.BulkResult, error) {
	const op = "Pusher.SendBulk"
	if len(push.Tokens) == 0 {
		return models.BulkResult{}, types.NewValidation("tokens must not be empty")
	}

	var res models.BulkResult
	n, android, apns := notification(push.Title, push.Body)

	for start := 0; start < len(push.Tokens); start += maxMulticastTokens {
		end := min(start+maxMulticastTokens, len(push.Tokens))
		batch := push.Tokens[start:end]

		resp, err := p.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens:       batch,
			Notification: n,
			Data:         push.Data,
			Android:      android,
			APNS:         apns,
		})
		if err != nil {
			ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
			return res, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.NewService("failed to send notifications", err)))
		}

		res.SuccessCount += resp.SuccessCount
		res.FailureCount += resp.FailureCount
		for i, r := range resp.Responses {
			if r != nil && !r.Success && i < len(batch) {
				res.FailedTokens = append(res.FailedTokens, batch[i])
			}
		}
	}

	if res.FailureCount > 0 {
		p.log.Warn(ctx, "some push notifications failed", "failed", res.FailureCount, "sent", res.SuccessCount)
	}
	return res, nil
}
