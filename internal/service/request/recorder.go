package request

import (
	"context"
	"sync"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

const DefaultRecordInterval = time.Minute

type recording struct {
	tripID    string
	vehicleID string
	cancel    context.CancelFunc
	done      chan struct{}
}

// Recorder appends the vehicle position to the trip route while a ride is in progress.
type Recorder struct {
	mu      sync.Mutex
	running map[string]*recording

	trackings TrackingReader
	trips     TripRepository
	interval  time.Duration
	now       func() time.Time
	log       logger.Logger
}

func NewRecorder(trackings TrackingReader, trips TripRepository, log logger.Logger, interval time.Duration) *Recorder {
	if interval <= 0 {
		interval = DefaultRecordInterval
	}
	return &Recorder{
		running:   make(map[string]*recording),
		trackings: trackings,
		trips:     trips,
		interval:  interval,
		now:       time.Now,
		log:       log,
	}
}

// Start begins sampling for requestID, replacing a recording already running for it.
// The recording outlives ctx cancellation; only Stop and StopAll end it.
func (r *Recorder) Start(ctx context.Context, requestID, tripID, vehicleID string) {
	r.Stop(requestID)

	rctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	rctx = wrap.WithAction(rctx, types.ActionTripRecording)
	rec := &recording{tripID: tripID, vehicleID: vehicleID, cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	r.running[requestID] = rec
	r.mu.Unlock()

	go r.loop(rctx, rec)
	r.log.Debug(rctx, "trip recording started", "trip_id", tripID, "vehicle_id", vehicleID)
}

func (r *Recorder) loop(ctx context.Context, rec *recording) {
	defer close(rec.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sample(ctx, rec.tripID, rec.vehicleID)
		}
	}
}

// sample writes one route point. Missing telemetry and write errors are logged only.
func (r *Recorder) sample(ctx context.Context, tripID, vehicleID string) bool {
	t, ok := r.trackings.Get(vehicleID)
	if !ok || t.Position == nil {
		r.log.Warn(ctx, "no position to record", "trip_id", tripID, "vehicle_id", vehicleID)
		return false
	}

	p := models.RoutePoint{
		Latitude:  t.Position.Latitude,
		Longitude: t.Position.Longitude,
		Speed:     t.Position.Speed,
		Timestamp: r.now(),
	}
	if err := r.trips.AddRoutePoint(ctx, tripID, p); err != nil {
		r.log.Error(ctx, "failed to save route point", err, "trip_id", tripID)
		return false
	}
	return true
}

// Stop ends the recording of requestID and waits for its goroutine.
func (r *Recorder) Stop(requestID string) bool {
	r.mu.Lock()
	rec, ok := r.running[requestID]
	delete(r.running, requestID)
	r.mu.Unlock()

	if !ok {
		return false
	}
	rec.cancel()
	<-rec.done
	return true
}

func (r *Recorder) StopAll() {
	r.mu.Lock()
	recs := make([]*recording, 0, len(r.running))
	for id, rec := range r.running {
		recs = append(recs, rec)
		delete(r.running, id)
	}
	r.mu.Unlock()

	for _, rec := range recs {
		rec.cancel()
		<-rec.done
	}
}

func (r *Recorder) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.running)
}
