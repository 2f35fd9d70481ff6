package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

// failed tags a query error with the database action and the operation name.
func failed(ctx context.Context, op string, err error) error {
	ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
	return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
}

// vehicleJSON encodes a vehicle for a nullable JSONB column.
func vehicleJSON(v *models.Vehicle) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func decodeVehicle(raw []byte) (*models.Vehicle, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var v models.Vehicle
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func statusStrings(in []types.RequestStatus) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.String()
	}
	return out
}
