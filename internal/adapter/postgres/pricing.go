package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
)

// PricingRepo persists peak hour windows and vehicle classes.
type PricingRepo struct {
	db *pgxpool.Pool
}

func NewPricingRepo(db *pgxpool.Pool) *PricingRepo {
	return &PricingRepo{db: db}
}

func (r *PricingRepo) ListPeakHours(ctx context.Context) ([]models.PeakHourConfig, error) {
	const op = "PricingRepo.ListPeakHours"
	query := `
		SELECT country, province, municipality, start_time, end_time, price_per_hour, status, updated_at
		FROM peak_hour_configs
		ORDER BY location_key;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, failed(ctx, op, err)
	}

	configs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PeakHourConfig, error) {
		var c models.PeakHourConfig
		err := row.Scan(&c.Country, &c.Province, &c.Municipality, &c.StartTime, &c.EndTime,
			&c.PricePerHour, &c.Status, &c.UpdatedAt)
		return c, err
	})
	if err != nil {
		return nil, failed(ctx, op, err)
	}
	return configs, nil
}

func (r *PricingRepo) UpsertPeakHour(ctx context.Context, cfg models.PeakHourConfig) error {
	const op = "PricingRepo.UpsertPeakHour"
	query := `
		INSERT INTO peak_hour_configs (location_key, country, province, municipality,
			start_time, end_time, price_per_hour, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (location_key) DO UPDATE SET
			country = EXCLUDED.country,
			province = EXCLUDED.province,
			municipality = EXCLUDED.municipality,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			price_per_hour = EXCLUDED.price_per_hour,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at;`

	_, err := TxorDB(ctx, r.db).Exec(ctx, query, cfg.Key(), cfg.Country, cfg.Province, cfg.Municipality,
		cfg.StartTime, cfg.EndTime, cfg.PricePerHour, string(cfg.Status), cfg.UpdatedAt)
	if err != nil {
		return failed(ctx, op, err)
	}
	return nil
}

func (r *PricingRepo) DeletePeakHour(ctx context.Context, loc models.Location) (bool, error) {
	const op = "PricingRepo.DeletePeakHour"
	tag, err := TxorDB(ctx, r.db).Exec(ctx, `DELETE FROM peak_hour_configs WHERE location_key = $1;`, loc.Key())
	if err != nil {
		return false, failed(ctx, op, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PricingRepo) ListVehicleClasses(ctx context.Context) ([]models.VehicleClass, error) {
	const op = "PricingRepo.ListVehicleClasses"
	query := `
		SELECT id, description, designation, base_price, base_price_min, base_price_per_km,
			passengers, icon_category, icon_map, percentage, tarifa_base, is_default
		FROM vehicle_classes
		ORDER BY id;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, failed(ctx, op, err)
	}

	classes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.VehicleClass, error) {
		var vc models.VehicleClass
		err := row.Scan(&vc.ID, &vc.Description, &vc.Designation, &vc.BasePrice, &vc.BasePriceMin,
			&vc.BasePricePerKm, &vc.Passengers, &vc.IconCategory, &vc.IconMap, &vc.Percentage,
			&vc.TarifaBase, &vc.IsDefault)
		return vc, err
	})
	if err != nil {
		return nil, failed(ctx, op, err)
	}
	return classes, nil
}

// UpsertVehicleClass saves vc. Marking a class as default clears the flag on the others.
func (r *PricingRepo) UpsertVehicleClass(ctx context.Context, vc models.VehicleClass) error {
	const op = "PricingRepo.UpsertVehicleClass"
	query := `
		INSERT INTO vehicle_classes (id, description, designation, base_price, base_price_min,
			base_price_per_km, passengers, icon_category, icon_map, percentage, tarifa_base, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			description = EXCLUDED.description,
			designation = EXCLUDED.designation,
			base_price = EXCLUDED.base_price,
			base_price_min = EXCLUDED.base_price_min,
			base_price_per_km = EXCLUDED.base_price_per_km,
			passengers = EXCLUDED.passengers,
			icon_category = EXCLUDED.icon_category,
			icon_map = EXCLUDED.icon_map,
			percentage = EXCLUDED.percentage,
			tarifa_base = EXCLUDED.tarifa_base,
			is_default = EXCLUDED.is_default;`

	q := TxorDB(ctx, r.db)
	if vc.IsDefault {
		if _, err := q.Exec(ctx, `UPDATE vehicle_classes SET is_default = false WHERE id <> $1;`, vc.ID); err != nil {
			return failed(ctx, op, err)
		}
	}

	_, err := q.Exec(ctx, query, vc.ID, vc.Description, vc.Designation, vc.BasePrice, vc.BasePriceMin,
		vc.BasePricePerKm, vc.Passengers, vc.IconCategory, vc.IconMap, vc.Percentage, vc.TarifaBase, vc.IsDefault)
	if err != nil {
		return failed(ctx, op, err)
	}
	return nil
}

func (r *PricingRepo) DeleteVehicleClass(ctx context.Context, id string) (bool, error) {
	const op = "PricingRepo.DeleteVehicleClass"
	tag, err := TxorDB(ctx, r.db).Exec(ctx, `DELETE FROM vehicle_classes WHERE id = $1;`, id)
	if err != nil {
		return false, failed(ctx, op, err)
	}
	return tag.RowsAffected() > 0, nil
}
