package request

import (
	"context"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

type (
	TrackingReader interface {
		Get(id string) (models.Tracking, bool)
	}

	RaceRepository interface {
		Get(ctx context.Context, id string) (models.Race, error)
		// Accept moves a pending race to accepted. false means the status did not allow it.
		Accept(ctx context.Context, id string, a models.RaceAssignment) (bool, error)
		// SetStatus changes the status only when the current one is in from.
		SetStatus(ctx context.Context, id string, to types.RequestStatus, from []types.RequestStatus, reason string) (bool, error)
		Start(ctx context.Context, id, tripID string, startTime time.Time) (bool, error)
		Finish(ctx context.Context, id string, res models.FinishResult) (bool, error)
	}

	RequestRepository interface {
		Save(ctx context.Context, req models.RideRequest) error
	}

	UserRepository interface {
		GetDriver(ctx context.Context, id string) (models.DriverProfile, error)
		SetTripID(ctx context.Context, userID, tripID string) error
	}

	TripRepository interface {
		Create(ctx context.Context, trip models.Trip) error
		End(ctx context.Context, tripID string, endTime time.Time) error
		AddRoutePoint(ctx context.Context, tripID string, p models.RoutePoint) error
	}

	ChatRepository interface {
		DeleteConversation(ctx context.Context, driverID, riderID string) (int64, error)
	}

	RouteProvider interface {
		Polyline(ctx context.Context, from, to models.Coordinate) (string, error)
	}

	Pricer interface {
		CalculatePrice(base float64, loc models.Location, vehicleClassID string) models.Quote
		ResolveVehicleClass(id string) (models.VehicleClass, error)
	}

	Wallet interface {
		Debit(ctx context.Context, token string, d models.Debit) error
	}

	Pusher interface {
		Send(ctx context.Context, p models.Push) error
	}

	SMSSender interface {
		Send(ctx context.Context, phone, text string) error
	}

	Mailer interface {
		Send(ctx context.Context, m models.Email) error
	}

	Bus interface {
		Broadcast(ctx context.Context, event models.Event)
		Notify(ctx context.Context, subscriberID string, event models.Event)
	}

	TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
	}
)
