package request

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/internal/service/geometry"
	"github.com/Temutjin2k/ride-dispatch/internal/service/pricing"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-dispatch/pkg/metrics"
	"github.com/Temutjin2k/ride-dispatch/pkg/trm"
	"github.com/Temutjin2k/ride-dispatch/pkg/validator"
)

// Deps are the collaborators of the request service. Wallet, Pusher, SMS, Mailer
// and Chats may be nil when the backend is not configured.
type Deps struct {
	Trackings TrackingReader
	Races     RaceRepository
	Requests  RequestRepository
	Users     UserRepository
	Trips     TripRepository
	Chats     ChatRepository
	Router    RouteProvider
	Pricer    Pricer
	Wallet    Wallet
	Pusher    Pusher
	SMS       SMSSender
	Mailer    Mailer
	Bus       Bus
	Tx        TxManager
	Recorder  *Recorder
}

// Service drives ride requests through their lifecycle.
type Service struct {
	store *store
	locks *keyedMutex

	trackings TrackingReader
	races     RaceRepository
	requests  RequestRepository
	users     UserRepository
	trips     TripRepository
	chats     ChatRepository
	router    RouteProvider
	pricer    Pricer
	wallet    Wallet
	pusher    Pusher
	sms       SMSSender
	mailer    Mailer
	bus       Bus
	tx        TxManager
	recorder  *Recorder

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	log   logger.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSleep replaces the wait between wallet retries.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Service) { s.sleep = sleep }
}

func NewService(d Deps, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:     newStore(),
		locks:     newKeyedMutex(),
		trackings: d.Trackings,
		races:     d.Races,
		requests:  d.Requests,
		users:     d.Users,
		trips:     d.Trips,
		chats:     d.Chats,
		router:    d.Router,
		pricer:    d.Pricer,
		wallet:    d.Wallet,
		pusher:    d.Pusher,
		sms:       d.SMS,
		mailer:    d.Mailer,
		bus:       d.Bus,
		tx:        d.Tx,
		recorder:  d.Recorder,
		now:       time.Now,
		sleep:     sleepCtx,
		log:       log,
	}
	if s.tx == nil {
		s.tx = trm.Nop{}
	}
	if s.recorder == nil {
		s.recorder = NewRecorder(d.Trackings, d.Trips, log, DefaultRecordInterval)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dbError keeps classified errors and marks everything else as a store failure.
func dbError(err error) error {
	var e *types.Error
	if errors.As(err, &e) {
		return err
	}
	return types.NewDatabase(err)
}

func transitionError(from, to types.RequestStatus) error {
	return fmt.Errorf("%w: %s -> %s", types.ErrInvalidTransition, from, to)
}

func (s *Service) Get(ctx context.Context, id string) (models.RideRequest, error) {
	req, ok := s.store.get(id)
	if !ok {
		return models.RideRequest{}, wrap.Error(ctx, types.ErrRequestNotFound)
	}
	return req, nil
}

// List returns the transient requests ordered by creation time.
func (s *Service) List() []models.RideRequest {
	out := s.store.list()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Service) Create(ctx context.Context, in models.CreateRequestInput) (models.RideRequest, error) {
	const op = "Service.Create"
	ctx = wrap.WithDriverID(wrap.WithRideID(ctx, in.RequestID), in.DriverID)
	ctx = wrap.WithAction(ctx, types.ActionCreateRequest)

	v := validator.New()
	v.Check(in.DriverID != "", "driverId", "must be provided")
	v.Check(in.RequestID != "", "requestId", "must be provided")
	v.Check(in.DocumentID != "", "documentId", "must be provided")
	if !v.Valid() {
		return models.RideRequest{}, wrap.Error(ctx, types.NewValidation(v.Message()))
	}

	unlock := s.locks.Lock(in.RequestID)
	defer unlock()

	if _, ok := s.store.get(in.RequestID); ok {
		return models.RideRequest{}, wrap.Error(ctx, types.ErrDuplicateRequest)
	}

	tracking, ok := s.trackings.Get(in.DriverID)
	if !ok {
		return models.RideRequest{}, wrap.Error(ctx, types.ErrDriverNotTracked)
	}

	race, err := s.races.Get(ctx, in.DocumentID)
	if err != nil {
		return models.RideRequest{}, wrap.Error(ctx, fmt.Errorf("%s: failed to get race: %w", op, dbError(err)))
	}
	if race.Origin == nil {
		return models.RideRequest{}, wrap.Error(ctx, types.ErrMissingRaceOrigin)
	}

	var polyline string
	if tracking.Position != nil {
		polyline, err = s.router.Polyline(ctx, tracking.Position.Coordinate(), *race.Origin)
		if err != nil {
			return models.RideRequest{}, wrap.Error(ctx, fmt.Errorf("%s: %w: %v", op, types.ErrRouteUnavailable, err))
		}
	}

	now := s.now()
	req := models.RideRequest{
		ID:            in.RequestID,
		DriverID:      in.DriverID,
		DocumentID:    in.DocumentID,
		Status:        types.StatusPending,
		DriverDetails: in.DriverDetails,
		Origin:        *race.Origin,
		Polyline:      polyline,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.requests.Save(ctx, req); err != nil {
		metrics.RecordTransition(types.StatusPending.String(), err)
		return models.RideRequest{}, wrap.Error(ctx, fmt.Errorf("%s: failed to save request: %w", op, dbError(err)))
	}
	s.store.insert(req)
	metrics.RecordTransition(types.StatusPending.String(), nil)

	s.bus.Notify(ctx, in.DriverID, models.NewEvent(types.EventDriverRequest, req))
	s.log.Info(ctx, "ride request created", "document_id", in.DocumentID, "has_polyline", polyline != "")
	return req, nil
}

func (s *Service) Accept(ctx context.Context, id string, in models.AcceptInput) (models.RideRequest, error) {
	const op = "Service.Accept"
	ctx = wrap.WithAction(wrap.WithRideID(ctx, id), types.ActionAcceptRequest)

	unlock := s.locks.Lock(id)
	defer unlock()

	req, ok := s.store.get(id)
	if !ok {
		return models.RideRequest{}, wrap.Error(ctx, types.ErrRequestNotFound)
	}
	ctx = wrap.WithDriverID(ctx, req.DriverID)

	if in.DriverID != "" && in.DriverID != req.DriverID {
		return models.RideRequest{}, wrap.Error(ctx, types.ErrDriverMismatch)
	}
	if !CanTransition(req.Status, types.StatusAccepted) {
		return models.RideRequest{}, wrap.Error(ctx, transitionError(req.Status, types.StatusAccepted))
	}

	driver, err := s.users.GetDriver(ctx, req.DriverID)
	if err != nil {
		return models.RideRequest{}, wrap.Error(ctx, fmt.Errorf("%s: failed to get driver: %w", op, dbError(err)))
	}

	race, err := s.races.Get(ctx, req.RaceID())
	if err != nil {
		return models.RideRequest{}, wrap.Error(ctx, fmt.Errorf("%s: failed to get race: %w", op, dbError(err)))
	}

	vehicle := in.Vehicle
	if vehicle == nil {
		vehicle = driver.VehicleSelected
	}
	if vehicle == nil {
		if t, ok := s.trackings.Get(req.DriverID); ok {
			vehicle = t.Vehicle
		}
	}

	tripID := in.TripID
	if tripID == "" {
		tripID = req.ID
	}
	now := s.now()

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		changed, err := s.races.Accept(ctx, req.RaceID(), models.RaceAssignment{
			DriverID:   req.DriverID,
			DriverName: driver.Name,
			Vehicle:    vehicle,
			TripID:     tripID,
		})
		if err != nil {
			return dbError(err)
		}
		if !changed {
			return transitionError(race.Status, types.StatusAccepted)
		}
		if err := s.users.SetTripID(ctx, req.DriverID, tripID); err != nil {
			return dbError(err)
		}
		return s.createTrip(ctx, req, tripID, req.DriverID, now)
	})
	metrics.RecordTransition(types.StatusAccepted.String(), err)
	if err != nil {
		return models.RideRequest{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	req.Status = types.StatusAccepted
	req.AssignedVehicle = vehicle
	req.TripID = tripID
	req.UpdatedAt = now
	s.store.put(req)
	s.archive(ctx, req)

	s.recorder.Start(ctx, req.ID, tripID, req.DriverID)

	text := acceptedText(driver.Name, vehicle)
	s.push(ctx, race.RiderFCMToken, "Ride accepted", text, map[string]string{"requestId": req.ID, "status": "accepted"})
	s.text(ctx, race.RiderPhone, text)

	s.bus.Broadcast(ctx, models.NewEvent(types.EventRequestResponse, models.RequestResponse{
		RequestID: req.ID,
		Response:  types.StatusAccepted.String(),
		DriverID:  req.DriverID,
		TripID:    tripID,
		Vehicle:   vehicle,
	}))
	s.log.Info(ctx, "ride request accepted", "trip_id", tripID)
	return req, nil
}

func (s *Service) createTrip(ctx context.Context, req models.RideRequest, tripID, vehicleID string, now time.Time) error {
	err := s.trips.Create(ctx, models.Trip{
		ID:        tripID,
		RequestID: req.ID,
		DriverID:  req.DriverID,
		VehicleID: vehicleID,
		Status:    types.TripActive,
		StartTime: now,
	})
	if err != nil {
		return dbError(err)
	}
	return nil
}

func acceptedText(driverName string, v *models.Vehicle) string {
	if driverName == "" {
		driverName = "your driver"
	}
	if v == nil {
		return fmt.Sprintf("Your request was accepted! Driver %s is on the way.", driverName)
	}
	return fmt.Sprintf("Your request was accepted! Driver %s is on the way with vehicle %s %s (%s) %s.",
		driverName, v.Brand, v.Model, v.Registration, v.Color)
}

// Deny rejects a pending offer. Without a transient record the durable race is
// still marked denied and NotFound is returned.
func (s *Service) Deny(ctx context.Context, id string) (models.RideRequest, error) {
	const op = "Service.Deny"
	ctx = wrap.WithAction(wrap.WithRideID(ctx, id), types.ActionDenyRequest)

	unlock := s.locks.Lock(id)
	defer unlock()

	req, ok := s.store.get(id)
	if !ok {
		if _, err := s.races.SetStatus(ctx, id, types.StatusDenied, sourcesOf(types.StatusDenied), ""); err != nil {
			return models.RideRequest{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, dbError(err)))
		}
		s.broadcastResponse(ctx, id, types.StatusDenied, "")
		return models.RideRequest{}, wrap.Error(ctx, types.ErrRequestNotFound)
	}

	if !CanTransition(req.Status, types.StatusDenied) {
		return models.RideRequest{}, wrap.Error(ctx, transitionError(req.Status, types.StatusDenied))
	}

	changed, err := s.races.SetStatus(ctx, req.RaceID(), types.StatusDenied, sourcesOf(types.StatusDenied), "")
	metrics.RecordTransition(types.StatusDenied.String(), err)
	if err != nil {
		return models.RideRequest{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, dbError(err)))
	}
	if !changed {
		s.log.Warn(ctx, "race was not pending when denied", "document_id", req.RaceID())
	}

	req.Status = types.StatusDenied
	req.UpdatedAt = s.now()
	s.store.put(req)
	s.archive(ctx, req)

	s.broadcastResponse(ctx, id, types.StatusDenied, "")
	s.log.Info(ctx, "ride request denied")
	return req, nil
}

// Cancel is idempotent: cancelling an already cancelled ride succeeds.
func (s *Service) Cancel(ctx context.Context, id, reason string) (models.RideRequest, error) {
	const op = "Service.Cancel"
	ctx = wrap.WithAction(wrap.WithRideID(ctx, id), types.ActionCancelRequest)

	unlock := s.locks.Lock(id)
	defer unlock()

	req, ok := s.store.get(id)
	if !ok {
		return s.cancelDurable(ctx, id, reason)
	}

	if req.Status == types.StatusCancelled {
		return req, nil
	}
	if !CanTransition(req.Status, types.StatusCancelled) {
		return models.RideRequest{}, wrap.Error(ctx, transitionError(req.Status, types.StatusCancelled))
	}

	changed, err := s.races.SetStatus(ctx, req.RaceID(), types.StatusCancelled, sourcesOf(types.StatusCancelled), reason)
	metrics.RecordTransition(types.StatusCancelled.String(), err)
	if err != nil {
		return models.RideRequest{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, dbError(err)))
	}
	if !changed {
		s.log.Warn(ctx, "race status did not allow cancel", "document_id", req.RaceID())
	}

	s.recorder.Stop(id)
	if req.TripID != "" {
		s.releaseDriver(ctx, req.DriverID, req.TripID)
	}

	req.Status = types.StatusCancelled
	req.CancelReason = reason
	req.UpdatedAt = s.now()
	s.store.put(req)
	s.archive(ctx, req)

	s.broadcastResponse(ctx, id, types.StatusCancelled, reason)
	s.log.Info(ctx, "ride request cancelled", "reason", reason)
	return req, nil
}

func (s *Service) cancelDurable(ctx context.Context, id, reason string) (models.RideRequest, error) {
	const op = "Service.cancelDurable"

	changed, err := s.races.SetStatus(ctx, id, types.StatusCancelled, sourcesOf(types.StatusCancelled), reason)
	if err != nil {
		return models.RideRequest{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, dbError(err)))
	}
	if !changed {
		race, err := s.races.Get(ctx, id)
		if err != nil {
			return models.RideRequest{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, dbError(err)))
		}
		if race.Status != types.StatusCancelled {
			return models.RideRequest{}, wrap.Error(ctx, transitionError(race.Status, types.StatusCancelled))
		}
	}
	s.recorder.Stop(id)

	s.broadcastResponse(ctx, id, types.StatusCancelled, reason)
	return models.RideRequest{ID: id, Status: types.StatusCancelled, CancelReason: reason, UpdatedAt: s.now()}, nil
}

func (s *Service) Arrived(ctx context.Context, id string) (models.RideRequest, error) {
	const op = "Service.Arrived"
	ctx = wrap.WithAction(wrap.WithRideID(ctx, id), types.ActionDriverArrived)

	unlock := s.locks.Lock(id)
	defer unlock()

	req, ok := s.store.get(id)
	if !ok {
		return models.RideRequest{}, wrap.Error(ctx, types.ErrRequestNotFound)
	}
	if !CanTransition(req.Status, types.StatusArrived) {
		return models.RideRequest{}, wrap.Error(ctx, transitionError(req.Status, types.StatusArrived))
	}

	changed, err := s.races.SetStatus(ctx, req.RaceID(), types.StatusArrived, sourcesOf(types.StatusArrived), "")
	if err == nil && !changed {
		err = transitionError(req.Status, types.StatusArrived)
	}
	metrics.RecordTransition(types.StatusArrived.String(), err)
	if err != nil {
		return models.RideRequest{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, dbError(err)))
	}

	req.Status = types.StatusArrived
	req.UpdatedAt = s.now()
	s.store.put(req)
	s.archive(ctx, req)

	s.bus.Broadcast(ctx, models.NewEvent(types.EventDriverArrived, map[string]string{"requestId": id}))
	return req, nil
}

// Start begins the ride. vehicleID defaults to the driver id.
func (s *Service) Start(ctx context.Context, id, vehicleID string) (models.RaceStarted, error) {
	const op = "Service.Start"
	ctx = wrap.WithAction(wrap.WithRideID(ctx, id), types.ActionStartRace)

	unlock := s.locks.Lock(id)
	defer unlock()

	req, ok := s.store.get(id)
	if !ok {
		return models.RaceStarted{}, wrap.Error(ctx, types.ErrRequestNotFound)
	}
	if !CanTransition(req.Status, types.StatusStarted) {
		return models.RaceStarted{}, wrap.Error(ctx, transitionError(req.Status, types.StatusStarted))
	}
	if vehicleID == "" {
		vehicleID = req.DriverID
	}
	tripID := req.TripID
	if tripID == "" {
		tripID = req.ID
	}
	now := s.now()

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.createTrip(ctx, req, tripID, vehicleID, now); err != nil {
			return err
		}
		changed, err := s.races.Start(ctx, req.RaceID(), tripID, now)
		if err != nil {
			return dbError(err)
		}
		if !changed {
			return transitionError(req.Status, types.StatusStarted)
		}
		return nil
	})
	metrics.RecordTransition(types.StatusStarted.String(), err)
	if err != nil {
		return models.RaceStarted{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	req.Status = types.StatusStarted
	req.TripID = tripID
	req.UpdatedAt = now
	s.store.put(req)
	s.archive(ctx, req)

	s.recorder.Start(ctx, id, tripID, vehicleID)

	started := models.RaceStarted{RequestID: id, TripID: tripID}
	s.bus.Broadcast(ctx, models.NewEvent(types.EventDriverStartTheRace, started))
	s.log.Info(ctx, "race started", "trip_id", tripID, "vehicle_id", vehicleID)
	return started, nil
}

// Finish prices and closes the ride. A repeated call returns the stored outcome
// without charging the driver again.
func (s *Service) Finish(ctx context.Context, id string, pos models.Coordinate, token string) (models.FinishResult, error) {
	const op = "Service.Finish"
	ctx = wrap.WithAction(wrap.WithRideID(ctx, id), types.ActionFinishRace)

	if !validator.Latitude(pos.Latitude) || !validator.Longitude(pos.Longitude) {
		return models.FinishResult{}, wrap.Error(ctx, types.ErrInvalidCoordinates)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	req, hasReq := s.store.get(id)
	raceID := id
	if hasReq {
		raceID = req.RaceID()
	}

	race, err := s.races.Get(ctx, raceID)
	if err != nil {
		return models.FinishResult{}, wrap.Error(ctx, fmt.Errorf("%s: failed to get race: %w", op, dbError(err)))
	}
	driverID := race.DriverID
	if hasReq {
		driverID = req.DriverID
	}
	ctx = wrap.WithDriverID(ctx, driverID)

	if race.Status == types.StatusFinished {
		res := race.FinishResult(id)
		res.AlreadyFinished = true
		s.announceFinish(ctx, race, res)
		return res, nil
	}

	from := race.Status
	if hasReq {
		from = req.Status
	}
	if !CanTransition(from, types.StatusFinished) || race.Status != types.StatusStarted {
		return models.FinishResult{}, wrap.Error(ctx, transitionError(from, types.StatusFinished))
	}
	if race.Origin == nil {
		return models.FinishResult{}, wrap.Error(ctx, types.ErrMissingRaceOrigin)
	}

	res, vc, err := s.price(ctx, race, id, pos)
	if err != nil {
		return models.FinishResult{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	var stored models.Race
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		changed, err := s.races.Finish(ctx, raceID, res)
		if err != nil {
			return dbError(err)
		}
		if !changed {
			if stored, err = s.races.Get(ctx, raceID); err != nil {
				return dbError(err)
			}
			if stored.Status != types.StatusFinished {
				return transitionError(stored.Status, types.StatusFinished)
			}
			return nil
		}
		if driverID != "" {
			if err := s.users.SetTripID(ctx, driverID, ""); err != nil {
				return dbError(err)
			}
		}
		if race.TripID != "" {
			if err := s.trips.End(ctx, race.TripID, res.EndTime); err != nil {
				return dbError(err)
			}
		}
		return nil
	})
	metrics.RecordTransition(types.StatusFinished.String(), err)
	if err != nil {
		return models.FinishResult{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	// another instance finished the race between our read and the update
	if stored.Status == types.StatusFinished {
		res = stored.FinishResult(id)
		res.AlreadyFinished = true
		s.announceFinish(ctx, stored, res)
		return res, nil
	}

	s.recorder.Stop(id)

	if s.wallet != nil && driverID != "" && res.Commission > 0 {
		debit := models.Debit{
			UserID:      driverID,
			Amount:      res.Commission,
			Reference:   id,
			Description: fmt.Sprintf("Commission %.0f%% for ride %s", vc.TarifaBase, id),
		}
		if err := s.debitWithRetry(ctx, token, debit); err != nil {
			s.log.Error(ctx, "failed to debit driver commission", err, "amount", res.Commission)
		}
	}

	if s.chats != nil && driverID != "" && race.RiderID != "" {
		cctx := wrap.WithAction(ctx, types.ActionChatPurge)
		n, err := s.chats.DeleteConversation(cctx, driverID, race.RiderID)
		if err != nil {
			s.log.Error(cctx, "failed to delete chat history", err)
		} else {
			s.log.Debug(cctx, "chat history deleted", "messages", n)
		}
	}

	if hasReq {
		req.Status = types.StatusFinished
		req.FinalPrice = res.FinalPrice
		req.IsPeakHour = res.IsPeakHour
		req.PriceMultiplier = res.PriceMultiplier
		req.UpdatedAt = res.EndTime
		s.store.put(req)
		s.archive(ctx, req)
	}

	s.announceFinish(ctx, race, res)
	s.receipt(ctx, race, res)
	s.log.Info(ctx, "race finished", "final_price", res.FinalPrice, "distance_km", res.DistanceKm, "minutes", res.TravelTimeMinutes)
	return res, nil
}

// price computes the outcome of a started race ending at pos.
func (s *Service) price(ctx context.Context, race models.Race, id string, pos models.Coordinate) (models.FinishResult, models.VehicleClass, error) {
	now := s.now()
	minutes := 0
	if race.StartTime != nil {
		minutes = int(math.Round(now.Sub(*race.StartTime).Minutes()))
		if minutes < 0 {
			minutes = 0
		}
	}
	km := geometry.HaversineDistance(pos, *race.Origin)

	vc, err := s.pricer.ResolveVehicleClass(race.VehicleClassID)
	if err != nil {
		return models.FinishResult{}, vc, err
	}

	fare := pricing.Fare(vc, km, float64(minutes))
	quote := s.pricer.CalculatePrice(fare, race.Location, race.VehicleClassID)

	commission, payout, err := pricing.Split(quote.FinalPrice, vc.TarifaBase)
	if err != nil {
		return models.FinishResult{}, vc, err
	}
	s.log.Debug(ctx, "fare computed", "fare", fare, "multiplier", quote.Multiplier)

	return models.FinishResult{
		RequestID:         id,
		EndTime:           now,
		TravelTimeMinutes: minutes,
		DistanceKm:        km,
		FinalPrice:        quote.FinalPrice,
		IsPeakHour:        quote.IsPeakHour,
		PriceMultiplier:   quote.Multiplier,
		DriverPayout:      payout,
		Commission:        commission,
	}, vc, nil
}

func (s *Service) announceFinish(ctx context.Context, race models.Race, res models.FinishResult) {
	s.push(ctx, race.RiderFCMToken, "Ride finished",
		fmt.Sprintf("Your ride has finished. Total: %.2f", res.FinalPrice),
		map[string]string{"requestId": res.RequestID, "status": "finished"})
	s.bus.Broadcast(ctx, models.NewEvent(types.EventRideFinished, res.Event()))
}

func (s *Service) receipt(ctx context.Context, race models.Race, res models.FinishResult) {
	if s.mailer == nil || race.RiderEmail == "" {
		return
	}
	body := fmt.Sprintf("Ride %s\nDistance: %.2f km\nDuration: %d min\nPeak hour: %t\nTotal: %.2f\n",
		res.RequestID, res.DistanceKm, res.TravelTimeMinutes, res.IsPeakHour, res.FinalPrice)
	if err := s.mailer.Send(ctx, models.Email{To: race.RiderEmail, Subject: "Your ride receipt", Body: body}); err != nil {
		s.log.Error(ctx, "failed to send receipt", err)
	}
}

// releaseDriver clears the trip the driver is bound to and ends it.
func (s *Service) releaseDriver(ctx context.Context, driverID, tripID string) {
	if err := s.users.SetTripID(ctx, driverID, ""); err != nil {
		s.log.Error(ctx, "failed to clear driver trip", err)
	}
	if err := s.trips.End(ctx, tripID, s.now()); err != nil {
		s.log.Error(ctx, "failed to end trip", err, "trip_id", tripID)
	}
}

func (s *Service) broadcastResponse(ctx context.Context, id string, status types.RequestStatus, reason string) {
	s.bus.Broadcast(ctx, models.NewEvent(types.EventRequestResponse, models.RequestResponse{
		RequestID: id,
		Response:  status.String(),
		Reason:    reason,
	}))
}

// archive writes the transient record to the durable store; failures are logged.
func (s *Service) archive(ctx context.Context, req models.RideRequest) {
	if err := s.requests.Save(ctx, req); err != nil {
		s.log.Error(ctx, "failed to archive request", err, "status", req.Status.String())
	}
}

func (s *Service) push(ctx context.Context, token, title, body string, data map[string]string) {
	if s.pusher == nil || token == "" {
		return
	}
	ctx = wrap.WithAction(ctx, types.ActionNotifyRider)
	if err := s.pusher.Send(ctx, models.Push{Token: token, Title: title, Body: body, Data: data}); err != nil {
		s.log.Error(ctx, "failed to send push notification", err)
	}
}

func (s *Service) text(ctx context.Context, phone, body string) {
	if s.sms == nil || phone == "" {
		return
	}
	if err := s.sms.Send(ctx, phone, body); err != nil {
		s.log.Error(ctx, "failed to send sms", err)
	}
}

// Shutdown stops every running trip recording.
func (s *Service) Shutdown() {
	s.recorder.StopAll()
}
