package ws

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wshub "github.com/Temutjin2k/ride-dispatch/pkg/wsHub"
)

type fakeSocket struct {
	mu      sync.Mutex
	written []any
}

func (f *fakeSocket) WriteJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, v)
	return nil
}

func (f *fakeSocket) ReadMessage() (int, []byte, error)         { return 0, nil, errors.New("not readable") }
func (f *fakeSocket) WriteControl(int, []byte, time.Time) error { return nil }
func (f *fakeSocket) SetWriteDeadline(time.Time) error          { return nil }
func (f *fakeSocket) Close() error                              { return nil }

func (f *fakeSocket) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.written)
}

type fakeRelay struct {
	published []models.Envelope
	err       error
}

func (r *fakeRelay) Publish(_ context.Context, env models.Envelope) error {
	r.published = append(r.published, env)
	return r.err
}

func newTestBus(t *testing.T) (*Bus, map[string]*fakeSocket) {
	t.Helper()
	hub := wshub.NewConnHub(logger.Nop())
	sockets := map[string]*fakeSocket{}
	for _, c := range []struct{ id, subscriber string }{
		{"c1", "rider-1"},
		{"c2", "rider-1"},
		{"c3", "driver-1"},
	} {
		s := &fakeSocket{}
		sockets[c.id] = s
		if err := hub.Add(wshub.NewConn(context.Background(), c.id, c.subscriber, s)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return NewBus(hub, "node-a", logger.Nop()), sockets
}

func TestBus_LocalDelivery(t *testing.T) {
	ctx := context.Background()
	ev := models.NewEvent(types.EventDriverArrived, map[string]string{"requestId": "r1"})

	tests := []struct {
		name string
		send func(b *Bus)
		want map[string]int
	}{
		{"broadcast", func(b *Bus) { b.Broadcast(ctx, ev) }, map[string]int{"c1": 1, "c2": 1, "c3": 1}},
		{"notify subscriber", func(b *Bus) { b.Notify(ctx, "rider-1", ev) }, map[string]int{"c1": 1, "c2": 1, "c3": 0}},
		{"single connection", func(b *Bus) { b.SendToConnection(ctx, "c3", ev) }, map[string]int{"c1": 0, "c2": 0, "c3": 1}},
		{"unknown subscriber", func(b *Bus) { b.Notify(ctx, "nobody", ev) }, map[string]int{"c1": 0, "c2": 0, "c3": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, sockets := newTestBus(t)
			tt.send(b)
			for id, want := range tt.want {
				if got := sockets[id].count(); got != want {
					t.Errorf("%s received %d frames, want %d", id, got, want)
				}
			}
		})
	}
}

func TestBus_Relay(t *testing.T) {
	ctx := context.Background()
	b, sockets := newTestBus(t)
	relay := &fakeRelay{}
	b.SetRelay(relay)

	b.Notify(ctx, "driver-1", models.NewEvent(types.EventDriverRequest, nil))
	if len(relay.published) != 1 {
		t.Fatalf("expected 1 published envelope, got %d", len(relay.published))
	}
	env := relay.published[0]
	if env.Origin != "node-a" || env.Scope != models.ScopeSubscriber || env.Target != "driver-1" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if sockets["c3"].count() != 0 {
		t.Fatal("relayed event must not be delivered locally before it comes back")
	}

	if n := b.Deliver(ctx, env); n != 1 || sockets["c3"].count() != 1 {
		t.Fatalf("Deliver reached %d connections", n)
	}

	relay.err = errors.New("channel closed")
	b.Broadcast(ctx, models.NewEvent(types.EventUpdate, nil))
	if sockets["c1"].count() != 1 || sockets["c3"].count() != 2 {
		t.Fatal("failed relay must fall back to local delivery")
	}
}
