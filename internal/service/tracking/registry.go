package tracking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/internal/service/geometry"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-dispatch/pkg/metrics"
)

const (
	DefaultStaleAfter    = 5 * time.Minute
	DefaultSweepInterval = time.Minute
)

type Broadcaster interface {
	Broadcast(ctx context.Context, event models.Event)
}

// Registry keeps the last known telemetry per vehicle id.
type Registry struct {
	mu    sync.RWMutex
	items map[string]models.Tracking

	bus           Broadcaster
	now           func() time.Time
	staleAfter    time.Duration
	sweepInterval time.Duration
	log           logger.Logger
}

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithStaleAfter(d time.Duration) Option {
	return func(r *Registry) { r.staleAfter = d }
}

func WithSweepInterval(d time.Duration) Option {
	return func(r *Registry) { r.sweepInterval = d }
}

func NewRegistry(bus Broadcaster, log logger.Logger, opts ...Option) *Registry {
	r := &Registry{
		items:         make(map[string]models.Tracking),
		bus:           bus,
		now:           time.Now,
		staleAfter:    DefaultStaleAfter,
		sweepInterval: DefaultSweepInterval,
		log:           log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Upsert stores t under t.ID. A new id starts with heading 0; a known id gets the
// bearing from its previous position. created is true for a new id.
func (r *Registry) Upsert(ctx context.Context, t models.Tracking) (models.Tracking, bool) {
	r.mu.Lock()
	prev, exists := r.items[t.ID]
	stored := r.merge(prev, exists, t)
	r.items[t.ID] = stored
	size := len(r.items)
	r.mu.Unlock()

	metrics.TrackedVehiclesGauge.Set(float64(size))
	r.broadcast(ctx)
	return stored, !exists
}

// Replace overwrites an existing record. The class is kept when t leaves it empty.
func (r *Registry) Replace(ctx context.Context, id string, t models.Tracking) (models.Tracking, error) {
	r.mu.Lock()
	prev, exists := r.items[id]
	if !exists {
		r.mu.Unlock()
		return models.Tracking{}, types.ErrTrackingNotFound
	}
	t.ID = id
	if t.ClassVehicle == "" {
		t.ClassVehicle = prev.ClassVehicle
	}
	stored := r.merge(prev, true, t)
	r.items[id] = stored
	r.mu.Unlock()

	r.broadcast(ctx)
	return stored, nil
}

// merge expects r.mu to be held.
func (r *Registry) merge(prev models.Tracking, exists bool, t models.Tracking) models.Tracking {
	now := r.now()

	t.Heading = 0
	if exists {
		if !prev.Created.IsZero() && t.Created.IsZero() {
			t.Created = prev.Created
		}
		if prev.Position != nil && t.Position != nil {
			t.Heading = geometry.Bearing(prev.Position.Coordinate(), t.Position.Coordinate())
		} else if t.Position == nil {
			t.Position = prev.Position
			t.Heading = prev.Heading
		}
		if now.Before(prev.UpdatedAt) {
			now = prev.UpdatedAt
		}
	}
	if t.Created.IsZero() {
		t.Created = now
	}
	t.UpdatedAt = now
	return t
}

func (r *Registry) Get(id string) (models.Tracking, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[id]
	return t, ok
}

// List returns a copy ordered by id.
func (r *Registry) List() []models.Tracking {
	r.mu.RLock()
	out := make([]models.Tracking, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, t)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindByDriver returns the vehicles whose descriptor names driverID.
func (r *Registry) FindByDriver(driverID string) []models.Tracking {
	var out []models.Tracking
	for _, t := range r.List() {
		if t.Vehicle.DriverID() == driverID {
			out = append(out, t)
		}
	}
	return out
}

// Remove deletes id and reports whether it existed. Absent ids do not broadcast.
func (r *Registry) Remove(ctx context.Context, id string) bool {
	r.mu.Lock()
	_, ok := r.items[id]
	delete(r.items, id)
	size := len(r.items)
	r.mu.Unlock()

	if !ok {
		return false
	}
	metrics.TrackedVehiclesGauge.Set(float64(size))
	r.broadcast(ctx)
	return true
}

// Sweep removes records idle for longer than the staleness limit.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.now().Add(-r.staleAfter)

	r.mu.Lock()
	removed := 0
	for id, t := range r.items {
		if t.UpdatedAt.Before(cutoff) {
			delete(r.items, id)
			removed++
		}
	}
	size := len(r.items)
	r.mu.Unlock()

	if removed > 0 {
		metrics.TrackedVehiclesGauge.Set(float64(size))
		metrics.EvictedTrackingsTotal.Add(float64(removed))
		r.log.Info(ctx, "stale trackings removed", "removed", removed, "remaining", size)
		r.broadcast(ctx)
	}
	return removed
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	ctx = wrap.WithAction(ctx, types.ActionTrackingSweep)
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Snapshot builds the update payload of the given kind.
func (r *Registry) Snapshot(kind string) models.TrackingUpdate {
	return models.TrackingUpdate{Type: kind, Trackings: r.List()}
}

func (r *Registry) broadcast(ctx context.Context) {
	if r.bus == nil {
		return
	}
	r.bus.Broadcast(ctx, models.NewEvent(types.EventUpdate, r.Snapshot(types.UpdateChanged)))
}
