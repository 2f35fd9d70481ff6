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

type RequestService interface {
	Create(ctx context.Context, in models.CreateRequestInput) (models.RideRequest, error)
	Get(ctx context.Context, id string) (models.RideRequest, error)
	Accept(ctx context.Context, id string, in models.AcceptInput) (models.RideRequest, error)
	Deny(ctx context.Context, id string) (models.RideRequest, error)
	Cancel(ctx context.Context, id, reason string) (models.RideRequest, error)
	Arrived(ctx context.Context, id string) (models.RideRequest, error)
	Start(ctx context.Context, id, vehicleID string) (models.RaceStarted, error)
	Finish(ctx context.Context, id string, pos models.Coordinate, token string) (models.FinishResult, error)
}

type RouteReader interface {
	RoutePoints(ctx context.Context, tripID string) ([]models.RoutePoint, error)
}

type Request struct {
	service RequestService
	routes  RouteReader
	l       logger.Logger
}

func NewRequest(service RequestService, routes RouteReader, l logger.Logger) *Request {
	return &Request{service: service, routes: routes, l: l}
}

// requestCtx tags the log context with the action and the request id of the path.
func requestCtx(r *http.Request, action string) (context.Context, string) {
	id := r.PathValue("id")
	ctx := wrap.WithAction(r.Context(), action)
	if id != "" {
		ctx = wrap.WithRideID(ctx, id)
	}
	return ctx, id
}

func (h *Request) respond(ctx context.Context, w http.ResponseWriter, data any) {
	if err := writeJSON(w, http.StatusOK, data, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

func (h *Request) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionCreateRequest)

	var req dto.CreateRequestReq
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data", "errors", v.Message())
		failedValidationResponse(w, v.Errors)
		return
	}

	ctx = wrap.WithRideID(ctx, req.RequestID)
	created, err := h.service.Create(ctx, req.ToInput())
	if err != nil {
		serviceErrorResponse(w, r.WithContext(ctx), h.l, "failed to create request", err)
		return
	}

	h.respond(ctx, w, envelope{"message": "request sent to driver", "request": created})
}

func (h *Request) Get(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestCtx(r, "get_request")

	req, err := h.service.Get(ctx, id)
	if err != nil {
		serviceErrorResponse(w, r, h.l, "failed to get request", err)
		return
	}
	h.respond(ctx, w, req)
}

func (h *Request) Accept(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestCtx(r, types.ActionAcceptRequest)

	var req dto.AcceptReq
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

	accepted, err := h.service.Accept(ctx, id, req.ToInput())
	if err != nil {
		serviceErrorResponse(w, r.WithContext(ctx), h.l, "failed to accept request", err)
		return
	}
	h.respond(ctx, w, envelope{"message": "request accepted", "result": accepted})
}

func (h *Request) Deny(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestCtx(r, types.ActionDenyRequest)

	if _, err := h.service.Deny(ctx, id); err != nil {
		serviceErrorResponse(w, r.WithContext(ctx), h.l, "failed to deny request", err)
		return
	}
	h.respond(ctx, w, envelope{"message": "request denied"})
}

func (h *Request) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestCtx(r, types.ActionCancelRequest)

	var req dto.CancelReq
	if err := readOptionalJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	cancelled, err := h.service.Cancel(ctx, id, req.Reason)
	if err != nil {
		serviceErrorResponse(w, r.WithContext(ctx), h.l, "failed to cancel request", err)
		return
	}
	h.respond(ctx, w, envelope{"message": "request cancelled", "request": cancelled})
}

func (h *Request) Arrived(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestCtx(r, types.ActionDriverArrived)

	if _, err := h.service.Arrived(ctx, id); err != nil {
		serviceErrorResponse(w, r.WithContext(ctx), h.l, "failed to mark driver arrived", err)
		return
	}
	h.respond(ctx, w, envelope{"message": "driver arrived"})
}

func (h *Request) Start(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestCtx(r, types.ActionStartRace)

	var req dto.StartReq
	if err := readOptionalJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	started, err := h.service.Start(ctx, id, req.VehicleID)
	if err != nil {
		serviceErrorResponse(w, r.WithContext(ctx), h.l, "failed to start race", err)
		return
	}
	h.respond(ctx, w, envelope{"message": "driver started the race and route recording began", "tripId": started.TripID})
}

func (h *Request) Finish(w http.ResponseWriter, r *http.Request) {
	ctx, id := requestCtx(r, types.ActionFinishRace)

	var req dto.FinishReq
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

	res, err := h.service.Finish(ctx, id, *req.CorrectPosition, bearerToken(r))
	if err != nil {
		serviceErrorResponse(w, r.WithContext(ctx), h.l, "failed to finish race", err)
		return
	}
	h.respond(ctx, w, envelope{"message": "ride finished", "result": res})
}

// TripRoute returns the recorded route points of a trip.
func (h *Request) TripRoute(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_trip_route")
	tripID := r.PathValue("id")

	points, err := h.routes.RoutePoints(ctx, tripID)
	if err != nil {
		serviceErrorResponse(w, r, h.l, "failed to load trip route", err)
		return
	}
	if points == nil {
		points = []models.RoutePoint{}
	}
	h.respond(ctx, w, envelope{"tripId": tripID, "points": points})
}
