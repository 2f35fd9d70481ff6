package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
)

// RequestRepo archives the dispatch records kept in memory by the request service.
type RequestRepo struct {
	db *pgxpool.Pool
}

func NewRequestRepo(db *pgxpool.Pool) *RequestRepo {
	return &RequestRepo{db: db}
}

func (r *RequestRepo) Save(ctx context.Context, req models.RideRequest) error {
	const op = "RequestRepo.Save"
	query := `
		INSERT INTO ride_requests (id, driver_id, document_id, status, driver_details,
			origin_lat, origin_lon, polyline, vehicle, trip_id, cancel_reason,
			final_price, is_peak_hour, price_multiplier, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			vehicle = EXCLUDED.vehicle,
			trip_id = EXCLUDED.trip_id,
			cancel_reason = EXCLUDED.cancel_reason,
			final_price = EXCLUDED.final_price,
			is_peak_hour = EXCLUDED.is_peak_hour,
			price_multiplier = EXCLUDED.price_multiplier,
			updated_at = EXCLUDED.updated_at;`

	details, err := json.Marshal(req.DriverDetails)
	if err != nil {
		return failed(ctx, op, err)
	}
	vehicle, err := vehicleJSON(req.AssignedVehicle)
	if err != nil {
		return failed(ctx, op, err)
	}

	_, err = TxorDB(ctx, r.db).Exec(ctx, query,
		req.ID, req.DriverID, req.DocumentID, req.Status.String(), details,
		req.Origin.Latitude, req.Origin.Longitude, req.Polyline, vehicle, req.TripID, req.CancelReason,
		req.FinalPrice, req.IsPeakHour, req.PriceMultiplier, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return failed(ctx, op, err)
	}
	return nil
}
