package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

// maxUploadBody leaves room for the multipart envelope around a 5MB file.
const maxUploadBody = 6 << 20

type ObjectStorage interface {
	Put(ctx context.Context, u models.Upload) (models.StoredObject, error)
	Info(ctx context.Context, key string) (models.StoredObject, error)
	Delete(ctx context.Context, key string) error
}

type Storage struct {
	store ObjectStorage
	l     logger.Logger
}

func NewStorage(store ObjectStorage, l logger.Logger) *Storage {
	return &Storage{store: store, l: l}
}

func (h *Storage) enabled(w http.ResponseWriter, r *http.Request) bool {
	if h.store == nil {
		serviceErrorResponse(w, r, h.l, "storage is not configured", types.ErrFeatureDisabled)
		return false
	}
	return true
}

// Upload stores the multipart field "file".
func (h *Storage) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "upload_file")
	if !h.enabled(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			badRequestResponse(w, "file exceeds the 5MB limit")
			return
		}
		badRequestResponse(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, "no file sent")
		return
	}
	defer file.Close()

	obj, err := h.store.Put(ctx, models.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		serviceErrorResponse(w, r, h.l, "failed to upload file", err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"message": "file saved", "file": obj}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
	h.l.Info(ctx, "file uploaded", "key", obj.Key, "size", obj.Size)
}

func (h *Storage) Info(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "file_info")
	if !h.enabled(w, r) {
		return
	}

	obj, err := h.store.Info(ctx, r.PathValue("key"))
	if err != nil {
		serviceErrorResponse(w, r, h.l, "failed to read file info", err)
		return
	}
	if err := writeJSON(w, http.StatusOK, obj, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

func (h *Storage) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "delete_file")
	if !h.enabled(w, r) {
		return
	}

	if err := h.store.Delete(ctx, r.PathValue("key")); err != nil {
		serviceErrorResponse(w, r, h.l, "failed to delete file", err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"message": "file deleted"}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
