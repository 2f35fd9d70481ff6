package tracking

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
)

type recordingBus struct {
	mu     sync.Mutex
	events []models.Event
}

func (b *recordingBus) Broadcast(_ context.Context, e models.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func at(lat, lon float64) *models.Position {
	return &models.Position{Latitude: lat, Longitude: lon}
}

func newTestRegistry() (*Registry, *recordingBus, *fakeClock) {
	bus := &recordingBus{}
	clock := &fakeClock{now: time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)}
	return NewRegistry(bus, logger.Nop(), WithClock(clock.Now)), bus, clock
}

func TestUpsert_HeadingAndTimestamps(t *testing.T) {
	r, bus, clock := newTestRegistry()
	ctx := context.Background()

	first, created := r.Upsert(ctx, models.Tracking{ID: "v1", Position: at(10, 10)})
	if !created || first.Heading != 0 {
		t.Fatalf("first upsert must create with heading 0, got created=%v heading=%v", created, first.Heading)
	}

	clock.Set(clock.Now().Add(10 * time.Second))
	second, created := r.Upsert(ctx, models.Tracking{ID: "v1", Position: at(10, 10.01)})
	if created {
		t.Fatalf("second upsert must update")
	}
	if math.Abs(second.Heading-90) > 0.01 {
		t.Fatalf("heading = %v, want ~90", second.Heading)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("updatedAt must advance")
	}
	if !second.Created.Equal(first.Created) {
		t.Fatalf("created must be preserved")
	}

	// a clock going backwards never moves updatedAt back
	clock.Set(clock.Now().Add(-time.Minute))
	third, _ := r.Upsert(ctx, models.Tracking{ID: "v1", Position: at(10, 10.01)})
	if third.UpdatedAt.Before(second.UpdatedAt) {
		t.Fatalf("updatedAt decreased: %v < %v", third.UpdatedAt, second.UpdatedAt)
	}
	if third.Heading != 0 {
		t.Fatalf("same position must give heading 0, got %v", third.Heading)
	}

	if bus.count() != 3 {
		t.Fatalf("expected a broadcast per upsert, got %d", bus.count())
	}
}

func TestReplace(t *testing.T) {
	r, _, _ := newTestRegistry()
	ctx := context.Background()

	if _, err := r.Replace(ctx, "missing", models.Tracking{}); !errors.Is(err, types.ErrTrackingNotFound) {
		t.Fatalf("expected ErrTrackingNotFound, got %v", err)
	}

	r.Upsert(ctx, models.Tracking{ID: "v1", ClassVehicle: "economy", Position: at(1, 1)})
	got, err := r.Replace(ctx, "v1", models.Tracking{Status: "busy", Position: at(1, 1)})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got.ClassVehicle != "economy" || got.Status != "busy" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestRemove(t *testing.T) {
	r, bus, _ := newTestRegistry()
	ctx := context.Background()

	if r.Remove(ctx, "nope") {
		t.Fatalf("removing an absent id must report false")
	}
	if bus.count() != 0 {
		t.Fatalf("absent remove must not broadcast")
	}

	r.Upsert(ctx, models.Tracking{ID: "v1"})
	if !r.Remove(ctx, "v1") {
		t.Fatalf("expected removal")
	}
	if _, ok := r.Get("v1"); ok {
		t.Fatalf("record still present")
	}
}

func TestSweep(t *testing.T) {
	r, bus, clock := newTestRegistry()
	ctx := context.Background()
	start := clock.Now()

	r.Upsert(ctx, models.Tracking{ID: "old"})
	clock.Set(start.Add(3 * time.Minute))
	r.Upsert(ctx, models.Tracking{ID: "fresh"})

	clock.Set(start.Add(5 * time.Minute))
	if n := r.Sweep(ctx); n != 0 {
		t.Fatalf("exactly 5 minutes idle is not stale, removed %d", n)
	}

	before := bus.count()
	clock.Set(start.Add(5*time.Minute + time.Second))
	if n := r.Sweep(ctx); n != 1 {
		t.Fatalf("expected 1 removal, got %d", n)
	}
	if bus.count() != before+1 {
		t.Fatalf("sweep with removals must broadcast once")
	}
	if _, ok := r.Get("fresh"); !ok {
		t.Fatalf("fresh record evicted")
	}

	before = bus.count()
	if n := r.Sweep(ctx); n != 0 {
		t.Fatalf("second sweep must remove nothing, removed %d", n)
	}
	if bus.count() != before {
		t.Fatalf("sweep without removals must not broadcast")
	}
}

func TestFindByDriver(t *testing.T) {
	r, _, _ := newTestRegistry()
	ctx := context.Background()

	r.Upsert(ctx, models.Tracking{ID: "v1", Vehicle: &models.Vehicle{Driver: &models.VehicleDriver{ID: "d1"}}})
	r.Upsert(ctx, models.Tracking{ID: "v2", Vehicle: &models.Vehicle{Driver: &models.VehicleDriver{ID: "d2"}}})
	r.Upsert(ctx, models.Tracking{ID: "v3"})

	got := r.FindByDriver("d2")
	if len(got) != 1 || got[0].ID != "v2" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if len(r.FindByDriver("d9")) != 0 {
		t.Fatalf("unknown driver must give no result")
	}
}

func TestConcurrentUpserts(t *testing.T) {
	r, _, _ := newTestRegistry()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Upsert(ctx, models.Tracking{ID: "v1", Position: at(float64(i%10), 1)})
		}(i)
	}
	wg.Wait()

	if len(r.List()) != 1 {
		t.Fatalf("expected a single record")
	}
}
