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

type PushSender interface {
	Send(ctx context.Context, p models.Push) error
	SendBulk(ctx context.Context, p models.BulkPush) (models.BulkResult, error)
}

type Notification struct {
	sender PushSender
	l      logger.Logger
}

// NewNotification accepts a nil sender, the endpoints then answer with ErrFeatureDisabled.
func NewNotification(sender PushSender, l logger.Logger) *Notification {
	return &Notification{sender: sender, l: l}
}

func (h *Notification) Send(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "send_push")

	var req dto.PushReq
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

	if h.sender == nil {
		serviceErrorResponse(w, r, h.l, "push is not configured", types.ErrFeatureDisabled)
		return
	}
	if err := h.sender.Send(ctx, req.ToModel()); err != nil {
		serviceErrorResponse(w, r, h.l, "failed to send notification", err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"message": "notification sent"}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

func (h *Notification) SendBulk(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "send_bulk_push")

	var req dto.BulkPushReq
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

	if h.sender == nil {
		serviceErrorResponse(w, r, h.l, "push is not configured", types.ErrFeatureDisabled)
		return
	}
	res, err := h.sender.SendBulk(ctx, req.ToModel())
	if err != nil {
		serviceErrorResponse(w, r, h.l, "failed to send notifications", err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"message": "notifications sent", "result": res}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
