package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Temutjin2k/ride-dispatch/internal/service/tracking"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
)

const trackingBody = `{
	"id": "car-1",
	"created": "2025-01-01T10:00:00Z",
	"startTime": "2025-01-01T10:00:00Z",
	"status": "online",
	"classVehicle": "standard",
	"position": {"latitude": 10, "longitude": 10, "speed": 30},
	"vehicle": {"id": "car-1", "driver": {"id": "driver-1"}}
}`

func newTrackingMux() *http.ServeMux {
	h := NewTracking(tracking.NewRegistry(nil, logger.Nop()), logger.Nop())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /trackings", h.Upsert)
	mux.HandleFunc("GET /trackings", h.List)
	mux.HandleFunc("GET /trackings/{id}", h.Get)
	mux.HandleFunc("PUT /trackings/{id}", h.Replace)
	mux.HandleFunc("DELETE /trackings/{id}", h.Delete)
	return mux
}

func newJSONRequest(method, target, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, target, nil)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func record(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	return record(h, newJSONRequest(method, target, body))
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func TestTracking_Lifecycle(t *testing.T) {
	mux := newTrackingMux()

	steps := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"create", http.MethodPost, "/trackings", trackingBody, http.StatusCreated},
		{"update", http.MethodPost, "/trackings", strings.Replace(trackingBody, `"longitude": 10,`, `"longitude": 10.01,`, 1), http.StatusOK},
		{"missing fields", http.MethodPost, "/trackings", `{"id":"car-2"}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/trackings", `{`, http.StatusBadRequest},
		{"get", http.MethodGet, "/trackings/car-1", "", http.StatusOK},
		{"get unknown", http.MethodGet, "/trackings/nope", "", http.StatusNotFound},
		{"replace unknown", http.MethodPut, "/trackings/nope", trackingBody, http.StatusNotFound},
		{"replace", http.MethodPut, "/trackings/car-1", trackingBody, http.StatusOK},
		{"delete", http.MethodDelete, "/trackings/car-1", "", http.StatusOK},
		{"delete again", http.MethodDelete, "/trackings/car-1", "", http.StatusNotFound},
	}
	for _, s := range steps {
		rec := serve(mux, s.method, s.target, s.body)
		if rec.Code != s.want {
			t.Fatalf("%s: status = %d, want %d, body %s", s.name, rec.Code, s.want, rec.Body.String())
		}
	}
}

func TestTracking_UpdateComputesHeading(t *testing.T) {
	mux := newTrackingMux()
	serve(mux, http.MethodPost, "/trackings", trackingBody)
	rec := serve(mux, http.MethodPost, "/trackings", strings.Replace(trackingBody, `"longitude": 10,`, `"longitude": 10.01,`, 1))

	var resp struct {
		Tracking struct {
			Heading float64 `json:"heading"`
		} `json:"tracking"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Tracking.Heading < 89 || resp.Tracking.Heading > 91 {
		t.Fatalf("heading = %f, want about 90", resp.Tracking.Heading)
	}

	rec = serve(mux, http.MethodGet, "/trackings", "")
	var list struct {
		Trackings []json.RawMessage `json:"trackings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list.Trackings) != 1 {
		t.Fatalf("list = %s (%v)", rec.Body.String(), err)
	}
}
