package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

// Check probes one backend.
type Check func(ctx context.Context) error

type Health struct {
	serviceName string
	instanceID  string
	checks      map[string]Check
	log         logger.Logger
}

func NewHealth(serviceName, instanceID string, checks map[string]Check, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		instanceID:  instanceID,
		checks:      checks,
		log:         log,
	}
}

// HealthCheck reports 503 when any backend check fails.
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(a.checks))
	for name := range a.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status, code := "available", http.StatusOK
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := a.checks[name](probeCtx); err != nil {
			a.log.Warn(ctx, "health check failed", "dependency", name, "error", err.Error())
			deps[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	response := map[string]any{
		"status": status,
		"system_info": map[string]string{
			"service-name": a.serviceName,
			"instance-id":  a.instanceID,
		},
		"dependencies": deps,
	}

	if err := writeJSON(w, code, response, nil); err != nil {
		a.log.Error(ctx, "healthcheck", err)
		return
	}
}
