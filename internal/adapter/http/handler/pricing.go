package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/ride-dispatch/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-dispatch/pkg/validator"
)

type PricingService interface {
	Status(loc models.Location) models.PeakStatus
	UpsertConfig(ctx context.Context, cfg models.PeakHourConfig) (models.PeakHourConfig, error)
	RemoveConfig(ctx context.Context, loc models.Location) error

	VehicleClasses() []models.VehicleClass
	VehicleClass(id string) (models.VehicleClass, bool)
	UpsertVehicleClass(ctx context.Context, vc models.VehicleClass) (models.VehicleClass, error)
	RemoveVehicleClass(ctx context.Context, id string) error
}

// Pricing serves peak hour windows and vehicle classes.
type Pricing struct {
	service PricingService
	l       logger.Logger
}

func NewPricing(service PricingService, l logger.Logger) *Pricing {
	return &Pricing{service: service, l: l}
}

func (h *Pricing) respond(ctx context.Context, w http.ResponseWriter, status int, data any) {
	if err := writeJSON(w, status, data, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

func (h *Pricing) PeakStatus(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "peak_hour_status")
	h.respond(ctx, w, http.StatusOK, h.service.Status(locationFromQuery(r)))
}

func (h *Pricing) UpsertPeakConfig(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "upsert_peak_hour_config")

	var req dto.PeakHourConfigReq
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	cfg, err := h.service.UpsertConfig(ctx, req.ToModel())
	if err != nil {
		serviceErrorResponse(w, r, h.l, "failed to save peak hour config", err)
		return
	}
	h.respond(ctx, w, http.StatusOK, envelope{"message": "peak hour config updated", "config": cfg})
}

func (h *Pricing) RemovePeakConfig(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "remove_peak_hour_config")

	loc := locationFromQuery(r)
	if loc.Country == "" || loc.Province == "" || loc.Municipality == "" {
		badRequestResponse(w, "country, province and municipality are required")
		return
	}

	if err := h.service.RemoveConfig(ctx, loc); err != nil {
		serviceErrorResponse(w, r, h.l, "failed to remove peak hour config", err)
		return
	}
	h.respond(ctx, w, http.StatusOK, envelope{"message": "peak hour config removed"})
}

func (h *Pricing) ListVehicleClasses(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_vehicle_classes")
	h.respond(ctx, w, http.StatusOK, envelope{"vehicleClasses": h.service.VehicleClasses()})
}

func (h *Pricing) GetVehicleClass(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_vehicle_class")

	vc, ok := h.service.VehicleClass(r.PathValue("id"))
	if !ok {
		errorResponse(w, http.StatusNotFound, types.ErrVehicleClassNotFound.Message)
		return
	}
	h.respond(ctx, w, http.StatusOK, vc)
}

func (h *Pricing) UpsertVehicleClass(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "upsert_vehicle_class")

	var req dto.VehicleClassReq
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	vc, err := h.service.UpsertVehicleClass(ctx, req.ToModel())
	if err != nil {
		serviceErrorResponse(w, r, h.l, "failed to save vehicle class", err)
		return
	}
	h.respond(ctx, w, http.StatusOK, envelope{"message": "vehicle class updated", "vehicleClass": vc})
}

func (h *Pricing) RemoveVehicleClass(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "remove_vehicle_class")

	if err := h.service.RemoveVehicleClass(ctx, r.PathValue("id")); err != nil {
		serviceErrorResponse(w, r, h.l, "failed to remove vehicle class", err)
		return
	}
	h.respond(ctx, w, http.StatusOK, envelope{"message": "vehicle class removed"})
}
