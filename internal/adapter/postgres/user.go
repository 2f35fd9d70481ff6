package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
	}
}

// GetDriver fetches the driver profile with the vehicle the driver selected.
func (r *UserRepo) GetDriver(ctx context.Context, id string) (models.DriverProfile, error) {
	const op = "UserRepo.GetDriver"
	query := `
		SELECT id, name, phone, vehicle_selected, trip_id
		FROM users
		WHERE id = $1;`

	var (
		d       models.DriverProfile
		vehicle []byte
	)
	err := TxorDB(ctx, r.db).QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.Phone, &vehicle, &d.TripID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DriverProfile{}, types.ErrUserNotFound
		}
		return models.DriverProfile{}, failed(ctx, op, err)
	}

	if d.VehicleSelected, err = decodeVehicle(vehicle); err != nil {
		return models.DriverProfile{}, failed(ctx, op, err)
	}
	return d, nil
}

// SetTripID binds the user to a trip. An empty tripID releases it.
func (r *UserRepo) SetTripID(ctx context.Context, userID, tripID string) error {
	const op = "UserRepo.SetTripID"
	query := `UPDATE users SET trip_id = $2, updated_at = now() WHERE id = $1;`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query, userID, tripID)
	if err != nil {
		return failed(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrUserNotFound
	}
	return nil
}
