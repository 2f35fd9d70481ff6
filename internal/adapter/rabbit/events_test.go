package rabbit

import (
	"context"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
)

type fakeAck struct {
	acked, rejected int
}

func (f *fakeAck) Ack(uint64, bool) error        { f.acked++; return nil }
func (f *fakeAck) Nack(uint64, bool, bool) error { return nil }
func (f *fakeAck) Reject(uint64, bool) error     { f.rejected++; return nil }

type fakeDeliverer struct {
	got []models.Envelope
}

func (f *fakeDeliverer) Deliver(_ context.Context, env models.Envelope) int {
	f.got = append(f.got, env)
	return 1
}

func TestEventRelay_HandleMessage(t *testing.T) {
	r := NewEventRelay(nil, "", logger.Nop())
	if r.exchange != DefaultEventsExchange {
		t.Fatalf("exchange = %q", r.exchange)
	}

	tests := []struct {
		name         string
		body         string
		wantDeliver  bool
		wantAcked    int
		wantRejected int
	}{
		{
			name:        "valid envelope",
			body:        `{"origin":"node-b","scope":"subscriber","target":"driver-1","event":{"event":"driverRequest","data":{"requestId":"r1"}}}`,
			wantDeliver: true,
			wantAcked:   1,
		},
		{
			name:         "garbage",
			body:         `{{`,
			wantRejected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			d := &fakeDeliverer{}
			r.handleMessage(context.Background(), d, amqp.Delivery{Acknowledger: ack, Body: []byte(tt.body)})

			if (len(d.got) == 1) != tt.wantDeliver {
				t.Fatalf("delivered %d envelopes", len(d.got))
			}
			if ack.acked != tt.wantAcked || ack.rejected != tt.wantRejected {
				t.Fatalf("acked=%d rejected=%d", ack.acked, ack.rejected)
			}
			if tt.wantDeliver {
				env := d.got[0]
				if env.Scope != models.ScopeSubscriber || env.Target != "driver-1" || env.Event.Name != "driverRequest" {
					t.Fatalf("unexpected envelope %+v", env)
				}
			}
		})
	}
}

func TestSleepCtx(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleepCtx(ctx, time.Hour) {
		t.Fatal("sleepCtx must stop when the context is cancelled")
	}
}
