package handler

import (
	"net/http"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

func errorResponse(w http.ResponseWriter, status int, message any) {
	env := envelope{"error": message}

	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(500)
	}
}

// failedValidationResponse returns 400 with the per-field messages.
func failedValidationResponse(w http.ResponseWriter, errors map[string]string) {
	errorResponse(w, http.StatusBadRequest, errors)
}

func badRequestResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusBadRequest, message)
}

func internalErrorResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusInternalServerError, message)
}

// serviceErrorResponse answers with the status and public message of err.
// Server side failures are logged with the context they were raised in.
func serviceErrorResponse(w http.ResponseWriter, r *http.Request, l logger.Logger, msg string, err error) {
	status := GetCode(err)
	ctx := wrap.ErrorCtx(r.Context(), err)
	if status >= http.StatusInternalServerError {
		l.Error(ctx, msg, err)
	} else {
		l.Warn(ctx, msg, "error", err.Error())
	}
	errorResponse(w, status, types.PublicMessage(err))
}
