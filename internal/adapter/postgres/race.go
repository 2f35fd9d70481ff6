package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

// RaceRepo stores the durable ride documents. Every status change is a
// compare-and-set on the current status.
type RaceRepo struct {
	db *pgxpool.Pool
}

func NewRaceRepo(db *pgxpool.Pool) *RaceRepo {
	return &RaceRepo{db: db}
}

func (r *RaceRepo) Get(ctx context.Context, id string) (models.Race, error) {
	const op = "RaceRepo.Get"
	query := `
		SELECT id, rider_id, rider_fcm_token, rider_phone, rider_email,
			origin_lat, origin_lon, destination_lat, destination_lon,
			country, province, municipality, vehicle_class_id, base_price, status,
			driver_id, driver_name, vehicle, assigned, trip_id, start_time, end_time,
			final_price, is_peak_hour, price_multiplier, travel_time_minutes, distance_km,
			driver_payout, commission, cancel_reason, updated_at
		FROM races
		WHERE id = $1;`

	var (
		race                 models.Race
		originLat, originLon *float64
		destLat, destLon     *float64
		vehicle              []byte
	)
	err := TxorDB(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&race.ID, &race.RiderID, &race.RiderFCMToken, &race.RiderPhone, &race.RiderEmail,
		&originLat, &originLon, &destLat, &destLon,
		&race.Location.Country, &race.Location.Province, &race.Location.Municipality,
		&race.VehicleClassID, &race.BasePrice, &race.Status,
		&race.DriverID, &race.DriverName, &vehicle, &race.Assigned, &race.TripID, &race.StartTime, &race.EndTime,
		&race.FinalPrice, &race.IsPeakHour, &race.PriceMultiplier, &race.TravelTimeMinutes, &race.DistanceKm,
		&race.DriverPayout, &race.Commission, &race.CancelReason, &race.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Race{}, types.ErrRaceNotFound
		}
		return models.Race{}, failed(ctx, op, err)
	}

	if originLat != nil && originLon != nil {
		race.Origin = &models.Coordinate{Latitude: *originLat, Longitude: *originLon}
	}
	if destLat != nil && destLon != nil {
		race.Destination = &models.Coordinate{Latitude: *destLat, Longitude: *destLon}
	}
	if race.Vehicle, err = decodeVehicle(vehicle); err != nil {
		return models.Race{}, failed(ctx, op, err)
	}
	return race, nil
}

func (r *RaceRepo) Accept(ctx context.Context, id string, a models.RaceAssignment) (bool, error) {
	const op = "RaceRepo.Accept"
	query := `
		UPDATE races
		SET status = 'accepted', driver_id = $2, driver_name = $3, vehicle = $4,
			assigned = true, trip_id = $5, updated_at = now()
		WHERE id = $1 AND status = 'pending';`

	vehicle, err := vehicleJSON(a.Vehicle)
	if err != nil {
		return false, failed(ctx, op, err)
	}

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query, id, a.DriverID, a.DriverName, vehicle, a.TripID)
	if err != nil {
		return false, failed(ctx, op, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RaceRepo) SetStatus(ctx context.Context, id string, to types.RequestStatus, from []types.RequestStatus, reason string) (bool, error) {
	const op = "RaceRepo.SetStatus"
	query := `
		UPDATE races
		SET status = $2,
			cancel_reason = CASE WHEN $4::text <> '' THEN $4::text ELSE cancel_reason END,
			updated_at = now()
		WHERE id = $1 AND status = ANY($3::text[]);`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query, id, to.String(), statusStrings(from), reason)
	if err != nil {
		return false, failed(ctx, op, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RaceRepo) Start(ctx context.Context, id, tripID string, startTime time.Time) (bool, error) {
	const op = "RaceRepo.Start"
	query := `
		UPDATE races
		SET status = 'started', trip_id = $2, start_time = $3, updated_at = now()
		WHERE id = $1 AND status = 'arrived';`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query, id, tripID, startTime)
	if err != nil {
		return false, failed(ctx, op, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Finish stores the priced outcome. It only succeeds once per race.
func (r *RaceRepo) Finish(ctx context.Context, id string, res models.FinishResult) (bool, error) {
	const op = "RaceRepo.Finish"
	query := `
		UPDATE races
		SET status = 'finished', end_time = $2, final_price = $3, is_peak_hour = $4,
			price_multiplier = $5, travel_time_minutes = $6, distance_km = $7,
			driver_payout = $8, commission = $9, updated_at = now()
		WHERE id = $1 AND status = 'started';`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query, id,
		res.EndTime, res.FinalPrice, res.IsPeakHour,
		res.PriceMultiplier, res.TravelTimeMinutes, res.DistanceKm,
		res.DriverPayout, res.Commission,
	)
	if err != nil {
		return false, failed(ctx, op, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ApplyPeakPricing reprices every started race of the location in one statement.
func (r *RaceRepo) ApplyPeakPricing(ctx context.Context, loc models.Location, isPeak bool, multiplier float64) (int64, error) {
	const op = "RaceRepo.ApplyPeakPricing"
	query := `
		UPDATE races
		SET is_peak_hour = $4, price_multiplier = $5, final_price = base_price * $5, updated_at = now()
		WHERE lower(country) = lower($1) AND lower(province) = lower($2)
			AND lower(municipality) = lower($3) AND status = 'started';`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query, loc.Country, loc.Province, loc.Municipality, isPeak, multiplier)
	if err != nil {
		return 0, failed(ctx, op, err)
	}
	return tag.RowsAffected(), nil
}
