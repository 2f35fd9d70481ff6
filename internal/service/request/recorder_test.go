package request

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
)

func newTestRecorder(interval time.Duration) (*Recorder, *fakeTrackings, *fakeTrips) {
	trackings := &fakeTrackings{items: map[string]models.Tracking{
		"car-1": {ID: "car-1", Position: &models.Position{Latitude: -8.83, Longitude: 13.23, Speed: 42}},
		"car-2": {ID: "car-2"},
	}}
	trips := &fakeTrips{trips: map[string]models.Trip{}, points: map[string][]models.RoutePoint{}}
	return NewRecorder(trackings, trips, logger.Nop(), interval), trackings, trips
}

func TestRecorder_Sample(t *testing.T) {
	r, _, trips := newTestRecorder(time.Hour)
	ctx := context.Background()

	if !r.sample(ctx, "trip-1", "car-1") {
		t.Fatal("expected a point to be recorded")
	}
	pts := trips.points["trip-1"]
	if len(pts) != 1 || pts[0].Latitude != -8.83 || pts[0].Speed != 42 {
		t.Fatalf("unexpected points %+v", pts)
	}

	if r.sample(ctx, "trip-1", "car-2") {
		t.Fatal("vehicle without position must be skipped")
	}
	if r.sample(ctx, "trip-1", "ghost") {
		t.Fatal("unknown vehicle must be skipped")
	}

	trips.err = errors.New("connection refused")
	if r.sample(ctx, "trip-1", "car-1") {
		t.Fatal("write error must be reported")
	}
	if len(trips.points["trip-1"]) != 1 {
		t.Fatalf("expected 1 point, got %d", len(trips.points["trip-1"]))
	}
}

func TestRecorder_StartStop(t *testing.T) {
	r, _, trips := newTestRecorder(5 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	r.Start(ctx, "req-1", "trip-1", "car-1")
	cancel() // the recording must outlive the caller's context

	deadline := time.Now().Add(2 * time.Second)
	for {
		trips.mu.Lock()
		n := len(trips.points["trip-1"])
		trips.mu.Unlock()
		if n >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 2 points, got %d", n)
		}
		time.Sleep(5 * time.Millisecond)
	}

	r.Start(ctx, "req-1", "trip-1", "car-1")
	if r.Active() != 1 {
		t.Fatalf("restart should replace the recording, active = %d", r.Active())
	}

	if !r.Stop("req-1") {
		t.Fatal("Stop returned false for a running recording")
	}
	if r.Stop("req-1") {
		t.Fatal("second Stop should report nothing to stop")
	}

	r.Start(ctx, "req-2", "trip-2", "car-1")
	r.Start(ctx, "req-3", "trip-3", "car-1")
	r.StopAll()
	if r.Active() != 0 {
		t.Fatalf("active = %d after StopAll", r.Active())
	}
}

func TestKeyedMutex_ForgetsReleasedKeys(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("a")
	if k.size() != 1 {
		t.Fatalf("size = %d, want 1", k.size())
	}
	unlock()
	if k.size() != 0 {
		t.Fatalf("size = %d, want 0", k.size())
	}
}
