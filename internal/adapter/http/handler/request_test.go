package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
)

type fakeRequests struct {
	err       error
	lastToken string
	lastPos   models.Coordinate
}

func (f *fakeRequests) Create(_ context.Context, in models.CreateRequestInput) (models.RideRequest, error) {
	return models.RideRequest{ID: in.RequestID, DriverID: in.DriverID, Status: types.StatusPending}, f.err
}

func (f *fakeRequests) Get(_ context.Context, id string) (models.RideRequest, error) {
	return models.RideRequest{ID: id}, f.err
}

func (f *fakeRequests) Accept(_ context.Context, id string, _ models.AcceptInput) (models.RideRequest, error) {
	return models.RideRequest{ID: id, Status: types.StatusAccepted}, f.err
}

func (f *fakeRequests) Deny(_ context.Context, id string) (models.RideRequest, error) {
	return models.RideRequest{ID: id}, f.err
}

func (f *fakeRequests) Cancel(_ context.Context, id, _ string) (models.RideRequest, error) {
	return models.RideRequest{ID: id}, f.err
}

func (f *fakeRequests) Arrived(_ context.Context, id string) (models.RideRequest, error) {
	return models.RideRequest{ID: id}, f.err
}

func (f *fakeRequests) Start(_ context.Context, id, _ string) (models.RaceStarted, error) {
	return models.RaceStarted{TripID: id}, f.err
}

func (f *fakeRequests) Finish(_ context.Context, id string, pos models.Coordinate, token string) (models.FinishResult, error) {
	f.lastPos, f.lastToken = pos, token
	return models.FinishResult{RequestID: id}, f.err
}

type fakeRoutes struct{ err error }

func (f fakeRoutes) RoutePoints(context.Context, string) ([]models.RoutePoint, error) {
	return nil, f.err
}

func newRequestMux(svc *fakeRequests, routes RouteReader) *http.ServeMux {
	h := NewRequest(svc, routes, logger.Nop())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /requests", h.Create)
	mux.HandleFunc("GET /requests/{id}", h.Get)
	mux.HandleFunc("POST /requests/{id}/accept", h.Accept)
	mux.HandleFunc("POST /requests/{id}/deny", h.Deny)
	mux.HandleFunc("POST /requests/{id}/cancel", h.Cancel)
	mux.HandleFunc("POST /requests/{id}/arrived", h.Arrived)
	mux.HandleFunc("POST /requests/{id}/startTheRace", h.Start)
	mux.HandleFunc("POST /requests/{id}/finish", h.Finish)
	mux.HandleFunc("GET /trips/{id}/route", h.TripRoute)
	return mux
}

func TestRequest_Routes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		method string
		target string
		body   string
		want   int
	}{
		{"create", nil, http.MethodPost, "/requests", `{"driverId":"d1","requestId":"r1","documentId":"doc1"}`, http.StatusOK},
		{"create missing ids", nil, http.MethodPost, "/requests", `{"driverId":"d1"}`, http.StatusBadRequest},
		{"create without tracking", types.ErrTrackingNotFound, http.MethodPost, "/requests", `{"driverId":"d1","requestId":"r1","documentId":"doc1"}`, http.StatusNotFound},
		{"create route failure", types.NewService("route lookup failed", errors.New("down")), http.MethodPost, "/requests", `{"driverId":"d1","requestId":"r1","documentId":"doc1"}`, http.StatusInternalServerError},
		{"get", nil, http.MethodGet, "/requests/r1", "", http.StatusOK},
		{"accept", nil, http.MethodPost, "/requests/r1/accept", `{"driverId":"d1"}`, http.StatusOK},
		{"accept without driver", nil, http.MethodPost, "/requests/r1/accept", `{}`, http.StatusBadRequest},
		{"accept twice", types.NewValidation("request is not pending"), http.MethodPost, "/requests/r1/accept", `{"driverId":"d1"}`, http.StatusBadRequest},
		{"deny", nil, http.MethodPost, "/requests/r1/deny", "", http.StatusOK},
		{"cancel without body", nil, http.MethodPost, "/requests/r1/cancel", "", http.StatusOK},
		{"arrived", nil, http.MethodPost, "/requests/r1/arrived", "", http.StatusOK},
		{"start", nil, http.MethodPost, "/requests/r1/startTheRace", `{"vehicleId":"car-1"}`, http.StatusOK},
		{"finish without position", nil, http.MethodPost, "/requests/r1/finish", `{}`, http.StatusBadRequest},
		{"finish", nil, http.MethodPost, "/requests/r1/finish", `{"correctPosition":{"latitude":-90,"longitude":180}}`, http.StatusOK},
		{"finish bad latitude", types.NewValidation("latitude must be between -90 and 90"), http.MethodPost, "/requests/r1/finish", `{"correctPosition":{"latitude":91,"longitude":0}}`, http.StatusBadRequest},
		{"trip route", nil, http.MethodGet, "/trips/r1/route", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newRequestMux(&fakeRequests{err: tt.err}, fakeRoutes{})
			rec := serve(mux, tt.method, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestRequest_FinishForwardsToken(t *testing.T) {
	svc := &fakeRequests{}
	mux := newRequestMux(svc, fakeRoutes{})

	req := newJSONRequest(http.MethodPost, "/requests/r1/finish", `{"correctPosition":{"latitude":1.5,"longitude":2.5}}`)
	req.Header.Set("Authorization", "Bearer rider-token")
	rec := record(mux, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.lastToken != "rider-token" {
		t.Fatalf("token = %q", svc.lastToken)
	}
	if svc.lastPos != (models.Coordinate{Latitude: 1.5, Longitude: 2.5}) {
		t.Fatalf("position = %+v", svc.lastPos)
	}
}

func TestRequest_InternalErrorHidesCause(t *testing.T) {
	mux := newRequestMux(&fakeRequests{}, fakeRoutes{err: types.NewDatabase(errors.New("pq: connection refused"))})
	rec := serve(mux, http.MethodGet, "/trips/r1/route", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); containsAny(body, "pq:", "refused") {
		t.Fatalf("cause leaked to client: %s", body)
	}
}
