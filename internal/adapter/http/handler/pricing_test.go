package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
)

type fakePricing struct {
	classes map[string]models.VehicleClass
	status  models.PeakStatus
	lastLoc models.Location
	err     error
}

func (f *fakePricing) Status(loc models.Location) models.PeakStatus {
	f.lastLoc = loc
	return f.status
}

func (f *fakePricing) UpsertConfig(_ context.Context, cfg models.PeakHourConfig) (models.PeakHourConfig, error) {
	return cfg, f.err
}

func (f *fakePricing) RemoveConfig(context.Context, models.Location) error { return f.err }

func (f *fakePricing) VehicleClasses() []models.VehicleClass {
	out := make([]models.VehicleClass, 0, len(f.classes))
	for _, vc := range f.classes {
		out = append(out, vc)
	}
	return out
}

func (f *fakePricing) VehicleClass(id string) (models.VehicleClass, bool) {
	vc, ok := f.classes[id]
	return vc, ok
}

func (f *fakePricing) UpsertVehicleClass(_ context.Context, vc models.VehicleClass) (models.VehicleClass, error) {
	return vc, f.err
}

func (f *fakePricing) RemoveVehicleClass(context.Context, string) error { return f.err }

func newPricingMux(svc *fakePricing) *http.ServeMux {
	h := NewPricing(svc, logger.Nop())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/peak-hour/status", h.PeakStatus)
	mux.HandleFunc("POST /api/peak-hour/config", h.UpsertPeakConfig)
	mux.HandleFunc("DELETE /api/peak-hour/config", h.RemovePeakConfig)
	mux.HandleFunc("GET /api/vehicle-classes", h.ListVehicleClasses)
	mux.HandleFunc("GET /api/vehicle-classes/{id}", h.GetVehicleClass)
	mux.HandleFunc("POST /api/vehicle-classes", h.UpsertVehicleClass)
	mux.HandleFunc("DELETE /api/vehicle-classes/{id}", h.RemoveVehicleClass)
	return mux
}

func TestPricing_PeakStatus(t *testing.T) {
	svc := &fakePricing{status: models.PeakStatus{IsPeakHour: true, CurrentTime: "08:30"}}
	rec := serve(newPricingMux(svc), http.MethodGet, "/api/peak-hour/status?country=Angola&province=Luanda&municipality=Belas", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.lastLoc != (models.Location{Country: "Angola", Province: "Luanda", Municipality: "Belas"}) {
		t.Fatalf("location = %+v", svc.lastLoc)
	}
	var got struct {
		IsPeakHour bool `json:"isPeakHour"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || !got.IsPeakHour {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestPricing_Routes(t *testing.T) {
	classes := map[string]models.VehicleClass{"standard": {ID: "standard", BasePrice: 80}}

	tests := []struct {
		name   string
		err    error
		method string
		target string
		body   string
		want   int
	}{
		{"upsert config", nil, http.MethodPost, "/api/peak-hour/config", `{"country":"a","province":"b","municipality":"c","startTime":"08:00","endTime":"09:00","pricePerHour":15,"status":"active"}`, http.StatusOK},
		{"upsert config missing fields", types.NewValidation("all fields are required"), http.MethodPost, "/api/peak-hour/config", `{"country":"a"}`, http.StatusBadRequest},
		{"remove config without location", nil, http.MethodDelete, "/api/peak-hour/config?country=a", "", http.StatusBadRequest},
		{"remove unknown config", types.ErrPeakConfigNotFound, http.MethodDelete, "/api/peak-hour/config?country=a&province=b&municipality=c", "", http.StatusNotFound},
		{"remove config", nil, http.MethodDelete, "/api/peak-hour/config?country=a&province=b&municipality=c", "", http.StatusOK},
		{"list classes", nil, http.MethodGet, "/api/vehicle-classes", "", http.StatusOK},
		{"get class", nil, http.MethodGet, "/api/vehicle-classes/standard", "", http.StatusOK},
		{"get unknown class", nil, http.MethodGet, "/api/vehicle-classes/luxury", "", http.StatusNotFound},
		{"upsert class", nil, http.MethodPost, "/api/vehicle-classes", `{"id":"luxury","basePrice":200,"tarifaBase":20}`, http.StatusOK},
		{"upsert class without id", nil, http.MethodPost, "/api/vehicle-classes", `{"basePrice":200}`, http.StatusBadRequest},
		{"upsert class bad commission", nil, http.MethodPost, "/api/vehicle-classes", `{"id":"x","tarifaBase":120}`, http.StatusBadRequest},
		{"remove class", nil, http.MethodDelete, "/api/vehicle-classes/standard", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newPricingMux(&fakePricing{classes: classes, err: tt.err})
			rec := serve(mux, tt.method, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
