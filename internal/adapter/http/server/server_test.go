package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Temutjin2k/ride-dispatch/config"
	"github.com/Temutjin2k/ride-dispatch/internal/adapter/http/handler"
	wshandler "github.com/Temutjin2k/ride-dispatch/internal/adapter/http/ws"
	busws "github.com/Temutjin2k/ride-dispatch/internal/adapter/ws"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/internal/service/pricing"
	"github.com/Temutjin2k/ride-dispatch/internal/service/tracking"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	ws "github.com/Temutjin2k/ride-dispatch/pkg/wsHub"
)

type stubAuth struct{}

func (stubAuth) Verify(_ context.Context, token string) (*models.Principal, error) {
	switch token {
	case "admin":
		return &models.Principal{UserID: "admin-1", Role: types.RoleAdmin, Token: token}, nil
	case "rider":
		return &models.Principal{UserID: "rider-1", Role: types.RoleRider, Token: token}, nil
	}
	return nil, errors.New("bad token")
}

func (stubAuth) CheckAPIKey(string) (*models.Principal, error) {
	return nil, types.NewForbidden("invalid api key")
}

type memoryPricingRepo struct{}

func (memoryPricingRepo) ListPeakHours(context.Context) ([]models.PeakHourConfig, error) {
	return nil, nil
}
func (memoryPricingRepo) UpsertPeakHour(context.Context, models.PeakHourConfig) error { return nil }
func (memoryPricingRepo) DeletePeakHour(context.Context, models.Location) (bool, error) {
	return true, nil
}
func (memoryPricingRepo) ListVehicleClasses(context.Context) ([]models.VehicleClass, error) {
	return nil, nil
}
func (memoryPricingRepo) UpsertVehicleClass(context.Context, models.VehicleClass) error { return nil }
func (memoryPricingRepo) DeleteVehicleClass(context.Context, string) (bool, error)      { return true, nil }

type noRequests struct{ handler.RequestService }

type noRoutes struct{}

func (noRoutes) RoutePoints(context.Context, string) ([]models.RoutePoint, error) { return nil, nil }

func newTestAPI(t *testing.T) http.Handler {
	t.Helper()
	l := logger.Nop()
	hub := ws.NewConnHub(l)
	bus := busws.NewBus(hub, "test", l)
	registry := tracking.NewRegistry(bus, l)
	engine := pricing.NewEngine(memoryPricingRepo{}, nil, bus, l)

	handlers := &Handlers{
		Health:       handler.NewHealth("dispatch", "test", nil, l),
		Tracking:     handler.NewTracking(registry, l),
		Request:      handler.NewRequest(noRequests{}, noRoutes{}, l),
		Pricing:      handler.NewPricing(engine, l),
		Notification: handler.NewNotification(nil, l),
		Storage:      handler.NewStorage(nil, l),
		WS:           wshandler.New(hub, bus, registry, l),
	}
	cfg := config.ServerConfig{Host: "127.0.0.1", Port: "0", AllowedOrigins: []string{"https://app.example"}}

	api, err := New(cfg, "dispatch", handlers, stubAuth{}, l)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return api.Handler()
}

func TestNew_RequiresHandlers(t *testing.T) {
	if _, err := New(config.ServerConfig{}, "dispatch", &Handlers{}, stubAuth{}, logger.Nop()); err == nil {
		t.Fatal("expected an error for missing handlers")
	}
	if _, err := New(config.ServerConfig{}, "dispatch", nil, nil, logger.Nop()); err == nil {
		t.Fatal("expected an error for a missing auth service")
	}
}

func TestRoutes_Access(t *testing.T) {
	h := newTestAPI(t)
	classBody := `{"id":"standard","basePrice":80}`

	tests := []struct {
		name   string
		method string
		target string
		token  string
		body   string
		want   int
	}{
		{"health", http.MethodGet, "/health", "", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK},
		{"list trackings", http.MethodGet, "/trackings", "", "", http.StatusOK},
		{"peak status is public", http.MethodGet, "/api/peak-hour/status?country=a&province=b&municipality=c", "", "", http.StatusOK},
		{"vehicle class anonymous", http.MethodPost, "/api/vehicle-classes", "", classBody, http.StatusUnauthorized},
		{"vehicle class rider", http.MethodPost, "/api/vehicle-classes", "rider", classBody, http.StatusForbidden},
		{"vehicle class admin", http.MethodPost, "/api/vehicle-classes", "admin", classBody, http.StatusOK},
		{"bad token", http.MethodGet, "/trackings", "forged", "", http.StatusUnauthorized},
		{"finish needs auth", http.MethodPost, "/requests/r1/finish", "", `{}`, http.StatusUnauthorized},
		{"push disabled", http.MethodPost, "/notifications/send", "rider", `{"token":"t","title":"hi","body":"there"}`, http.StatusInternalServerError},
		{"unknown route", http.MethodGet, "/nope", "", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.want, rec.Body.String())
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Fatal("missing X-Request-ID header")
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/trackings", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("allow origin = %q", got)
	}
}
