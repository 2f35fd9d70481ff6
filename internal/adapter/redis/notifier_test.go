package redis

import (
	"context"
	"testing"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
)

type recordingApplier struct {
	changes []models.ConfigChange
}

func (r *recordingApplier) ApplyChange(_ context.Context, c models.ConfigChange) {
	r.changes = append(r.changes, c)
}

func TestNotifier_Handle(t *testing.T) {
	n := NewNotifier(nil, "", logger.Nop())
	if n.channel != DefaultChannel {
		t.Fatalf("channel = %q, want %q", n.channel, DefaultChannel)
	}

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{
			name:    "peak hour upsert",
			payload: `{"op":"upsert","origin":"node-b","peakHour":{"country":"Angola","province":"Luanda","municipality":"Talatona","startTime":"08:00","endTime":"09:00","pricePerHour":15,"status":"active"}}`,
		},
		{
			name:    "vehicle class delete",
			payload: `{"op":"delete","origin":"node-b","vehicleClass":{"id":"premium"}}`,
		},
		{name: "not json", payload: `hello`, wantErr: true},
		{name: "missing op", payload: `{"origin":"node-b"}`, wantErr: true},
	}

	applier := &recordingApplier{}
	applied := 0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := n.handle(context.Background(), tt.payload, applier)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if len(applier.changes) != applied {
					t.Fatal("malformed change must not be applied")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			applied++
			if len(applier.changes) != applied {
				t.Fatalf("applied %d changes, want %d", len(applier.changes), applied)
			}
		})
	}

	first := applier.changes[0]
	if first.PeakHour == nil || first.PeakHour.Key() != "angola_luanda_talatona" || first.PeakHour.PricePerHour != 15 {
		t.Fatalf("unexpected decoded change %+v", first.PeakHour)
	}
	if second := applier.changes[1]; second.Op != models.ChangeDelete || second.VehicleClass.ID != "premium" {
		t.Fatalf("unexpected decoded change %+v", second)
	}
}
