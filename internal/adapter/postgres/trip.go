package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/pkg/postgres"
)

type TripRepo struct {
	db *pgxpool.Pool
}

func NewTripRepo(db *pgxpool.Pool) *TripRepo {
	return &TripRepo{db: db}
}

// upsertTripQuery restarts an existing trip: the race start overwrites the
// row opened at accept time.
const upsertTripQuery = `
	INSERT INTO trips (id, request_id, driver_id, vehicle_id, status, start_time)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		vehicle_id = EXCLUDED.vehicle_id,
		status     = EXCLUDED.status,
		start_time = EXCLUDED.start_time,
		end_time   = NULL;`

// Create inserts the trip or, when it already exists, restarts it with the given vehicle.
func (r *TripRepo) Create(ctx context.Context, t models.Trip) error {
	const op = "TripRepo.Create"

	_, err := TxorDB(ctx, r.db).Exec(ctx, upsertTripQuery, t.ID, t.RequestID, t.DriverID, t.VehicleID, string(t.Status), t.StartTime)
	if err != nil {
		return failed(ctx, op, err)
	}
	return nil
}

func (r *TripRepo) End(ctx context.Context, tripID string, endTime time.Time) error {
	const op = "TripRepo.End"
	query := `UPDATE trips SET status = 'ended', end_time = $2 WHERE id = $1;`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query, tripID, endTime); err != nil {
		return failed(ctx, op, err)
	}
	return nil
}

func (r *TripRepo) AddRoutePoint(ctx context.Context, tripID string, p models.RoutePoint) error {
	const op = "TripRepo.AddRoutePoint"
	query := `
		INSERT INTO route_points (trip_id, latitude, longitude, speed, recorded_at)
		VALUES ($1, $2, $3, $4, $5);`

	_, err := TxorDB(ctx, r.db).Exec(ctx, query, tripID, p.Latitude, p.Longitude, p.Speed, p.Timestamp)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return failed(ctx, op, fmt.Errorf("trip %s does not exist: %w", tripID, err))
		}
		return failed(ctx, op, err)
	}
	return nil
}

func (r *TripRepo) RoutePoints(ctx context.Context, tripID string) ([]models.RoutePoint, error) {
	const op = "TripRepo.RoutePoints"
	query := `
		SELECT latitude, longitude, speed, recorded_at
		FROM route_points
		WHERE trip_id = $1
		ORDER BY recorded_at;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, tripID)
	if err != nil {
		return nil, failed(ctx, op, err)
	}
	defer rows.Close()

	var points []models.RoutePoint
	for rows.Next() {
		var p models.RoutePoint
		if err := rows.Scan(&p.Latitude, &p.Longitude, &p.Speed, &p.Timestamp); err != nil {
			return nil, failed(ctx, op, err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, failed(ctx, op, err)
	}
	return points, nil
}
