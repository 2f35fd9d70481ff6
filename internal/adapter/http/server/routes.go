package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	// System Health
	a.mux.HandleFunc("GET /health", a.routes.Health.HealthCheck)
	a.mux.Handle("GET /metrics", promhttp.Handler())

	a.setupTrackingRoutes()
	a.setupRequestRoutes()
	a.setupPricingRoutes()
	a.setupNotificationRoutes()
	a.setupStorageRoutes()

	// Real-time channel, anonymous clients pass ?subscriber=
	a.mux.HandleFunc("GET /ws", a.routes.WS.ServeWS)
}

func (a *API) setupTrackingRoutes() {
	t := a.routes.Tracking
	a.mux.HandleFunc("POST /trackings", t.Upsert)
	a.mux.HandleFunc("GET /trackings", t.List)
	a.mux.HandleFunc("GET /trackings/{id}", t.Get)
	a.mux.HandleFunc("PUT /trackings/{id}", t.Replace)
	a.mux.HandleFunc("DELETE /trackings/{id}", t.Delete)
}

func (a *API) setupRequestRoutes() {
	r := a.routes.Request
	a.mux.HandleFunc("POST /requests", r.Create)
	a.mux.HandleFunc("GET /requests/{id}", r.Get)
	a.mux.HandleFunc("POST /requests/{id}/accept", r.Accept)
	a.mux.HandleFunc("POST /requests/{id}/deny", r.Deny)
	a.mux.HandleFunc("POST /requests/{id}/cancel", r.Cancel)
	a.mux.HandleFunc("POST /requests/{id}/arrived", r.Arrived)
	a.mux.HandleFunc("POST /requests/{id}/startTheRace", r.Start)
	a.mux.Handle("POST /requests/{id}/finish", a.m.RequireAuth(r.Finish)) // bearer token is forwarded to the wallet
	a.mux.HandleFunc("GET /trips/{id}/route", r.TripRoute)
}

func (a *API) setupPricingRoutes() {
	p := a.routes.Pricing
	a.mux.HandleFunc("GET /api/peak-hour/status", p.PeakStatus)
	a.mux.Handle("POST /api/peak-hour/config", a.m.RequireRoles(p.UpsertPeakConfig, types.RoleAdmin))
	a.mux.Handle("DELETE /api/peak-hour/config", a.m.RequireRoles(p.RemovePeakConfig, types.RoleAdmin))

	a.mux.HandleFunc("GET /api/vehicle-classes", p.ListVehicleClasses)
	a.mux.HandleFunc("GET /api/vehicle-classes/{id}", p.GetVehicleClass)
	a.mux.Handle("POST /api/vehicle-classes", a.m.RequireRoles(p.UpsertVehicleClass, types.RoleAdmin))
	a.mux.Handle("DELETE /api/vehicle-classes/{id}", a.m.RequireRoles(p.RemoveVehicleClass, types.RoleAdmin))
}

func (a *API) setupNotificationRoutes() {
	n := a.routes.Notification
	a.mux.Handle("POST /notifications/send", a.m.RequireAuth(n.Send))
	a.mux.Handle("POST /notifications/send-bulk", a.m.RequireRoles(n.SendBulk, types.RoleAdmin))
}

func (a *API) setupStorageRoutes() {
	s := a.routes.Storage
	a.mux.Handle("POST /api/storage/upload", a.m.RequireAuth(s.Upload))
	a.mux.HandleFunc("GET /api/storage/info/{key...}", s.Info)
	a.mux.Handle("DELETE /api/storage/{key...}", a.m.RequireAuth(s.Delete))
}
