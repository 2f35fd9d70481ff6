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

type TrackingService interface {
	Upsert(ctx context.Context, t models.Tracking) (models.Tracking, bool)
	Replace(ctx context.Context, id string, t models.Tracking) (models.Tracking, error)
	Get(id string) (models.Tracking, bool)
	List() []models.Tracking
	Remove(ctx context.Context, id string) bool
}

type Tracking struct {
	service TrackingService
	l       logger.Logger
}

func NewTracking(service TrackingService, l logger.Logger) *Tracking {
	return &Tracking{service: service, l: l}
}

// Upsert stores the telemetry of a vehicle, 201 for a new vehicle and 200 for an update.
func (h *Tracking) Upsert(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "upsert_tracking")

	var req dto.TrackingReq
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v, true)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data", "errors", v.Message())
		failedValidationResponse(w, v.Errors)
		return
	}

	stored, created := h.service.Upsert(ctx, req.ToModel())

	status, message := http.StatusOK, "tracking updated"
	if created {
		status, message = http.StatusCreated, "tracking created"
	}
	if err := writeJSON(w, status, envelope{"message": message, "tracking": stored}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Debug(ctx, message, "vehicle_id", stored.ID, "heading", stored.Heading)
}

func (h *Tracking) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_trackings")

	if err := writeJSON(w, http.StatusOK, envelope{"trackings": h.service.List()}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

func (h *Tracking) Get(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_tracking")

	t, ok := h.service.Get(r.PathValue("id"))
	if !ok {
		errorResponse(w, http.StatusNotFound, types.ErrTrackingNotFound.Message)
		return
	}
	if err := writeJSON(w, http.StatusOK, t, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

func (h *Tracking) Replace(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "replace_tracking")
	id := r.PathValue("id")

	var req dto.TrackingReq
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v, false)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	stored, err := h.service.Replace(ctx, id, req.ToModel())
	if err != nil {
		serviceErrorResponse(w, r, h.l, "failed to replace tracking", err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"message": "tracking updated", "tracking": stored}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

func (h *Tracking) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "delete_tracking")
	id := r.PathValue("id")

	if !h.service.Remove(ctx, id) {
		errorResponse(w, http.StatusNotFound, types.ErrTrackingNotFound.Message)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"message": "tracking deleted"}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "tracking deleted", "vehicle_id", id)
}
