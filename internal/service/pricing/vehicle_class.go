package pricing

import (
	"context"
	"fmt"
	"sort"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

func (e *Engine) VehicleClasses() []models.VehicleClass {
	e.mu.RLock()
	out := make([]models.VehicleClass, 0, len(e.classes))
	for _, vc := range e.classes {
		out = append(out, vc)
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (e *Engine) VehicleClass(id string) (models.VehicleClass, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	vc, ok := e.classes[id]
	return vc, ok
}

// DefaultVehicleClass returns the class flagged as default, if any.
func (e *Engine) DefaultVehicleClass() (models.VehicleClass, bool) {
	for _, vc := range e.VehicleClasses() {
		if vc.IsDefault {
			return vc, true
		}
	}
	return models.VehicleClass{}, false
}

// ResolveVehicleClass returns the class with id, or the default class.
func (e *Engine) ResolveVehicleClass(id string) (models.VehicleClass, error) {
	if vc, ok := e.VehicleClass(id); ok {
		return vc, nil
	}
	if vc, ok := e.DefaultVehicleClass(); ok {
		return vc, nil
	}
	return models.VehicleClass{}, types.ErrVehicleClassNotFound
}

func (e *Engine) UpsertVehicleClass(ctx context.Context, vc models.VehicleClass) (models.VehicleClass, error) {
	const op = "Engine.UpsertVehicleClass"
	ctx = wrap.WithAction(ctx, "upsert_vehicle_class")

	if vc.ID == "" {
		return models.VehicleClass{}, types.NewValidation("id is required")
	}
	if vc.BasePrice < 0 || vc.BasePriceMin < 0 || vc.BasePricePerKm < 0 {
		return models.VehicleClass{}, types.NewValidation("prices must not be negative")
	}
	if vc.TarifaBase < 0 || vc.TarifaBase > 100 {
		return models.VehicleClass{}, types.NewValidation("tarifaBase must be between 0 and 100")
	}

	if err := e.repo.UpsertVehicleClass(ctx, vc); err != nil {
		return models.VehicleClass{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.NewDatabase(err)))
	}

	e.mu.Lock()
	e.classes[vc.ID] = vc
	e.mu.Unlock()

	e.publish(ctx, models.ConfigChange{Op: models.ChangeUpsert, VehicleClass: &vc})
	return vc, nil
}

func (e *Engine) RemoveVehicleClass(ctx context.Context, id string) error {
	const op = "Engine.RemoveVehicleClass"
	ctx = wrap.WithAction(ctx, "remove_vehicle_class")

	found, err := e.repo.DeleteVehicleClass(ctx, id)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.NewDatabase(err)))
	}
	if !found {
		return types.ErrVehicleClassNotFound
	}

	e.mu.Lock()
	delete(e.classes, id)
	e.mu.Unlock()

	e.publish(ctx, models.ConfigChange{Op: models.ChangeDelete, VehicleClass: &models.VehicleClass{ID: id}})
	return nil
}
