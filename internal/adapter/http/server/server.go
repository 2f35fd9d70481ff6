package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/justinas/alice"
	"github.com/rs/cors"

	"github.com/Temutjin2k/ride-dispatch/config"
	"github.com/Temutjin2k/ride-dispatch/internal/adapter/http/handler"
	"github.com/Temutjin2k/ride-dispatch/internal/adapter/http/middleware"
	wshandler "github.com/Temutjin2k/ride-dispatch/internal/adapter/http/ws"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *Handlers // routes/handlers
	m      *middleware.Middleware

	addr string
	cfg  config.ServerConfig
	name string
	log  logger.Logger
}

// Handlers groups every HTTP entry point. Tracking, Request, Pricing, WS and Health
// are required; the rest serve ErrFeatureDisabled when their backend is not set.
type Handlers struct {
	Health       *handler.Health
	Tracking     *handler.Tracking
	Request      *handler.Request
	Pricing      *handler.Pricing
	Notification *handler.Notification
	Storage      *handler.Storage
	WS           *wshandler.Handler
}

func (h *Handlers) validate() error {
	switch {
	case h == nil:
		return errors.New("handlers are required")
	case h.Health == nil:
		return errors.New("health handler is required")
	case h.Tracking == nil:
		return errors.New("tracking handler is required")
	case h.Request == nil:
		return errors.New("request handler is required")
	case h.Pricing == nil:
		return errors.New("pricing handler is required")
	case h.Notification == nil:
		return errors.New("notification handler is required")
	case h.Storage == nil:
		return errors.New("storage handler is required")
	case h.WS == nil:
		return errors.New("websocket handler is required")
	}
	return nil
}

func New(
	cfg config.ServerConfig,
	serviceName string,
	handlers *Handlers,
	authService middleware.AuthService,
	logger logger.Logger,
) (*API, error) {
	if authService == nil {
		return nil, errors.New("auth service is required")
	}
	if err := handlers.validate(); err != nil {
		return nil, err
	}

	api := &API{
		mux:    http.NewServeMux(),
		routes: handlers,
		m:      middleware.NewMiddleware(authService, logger),
		addr:   cfg.Addr(),
		cfg:    cfg,
		name:   serviceName,
		log:    logger,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:         api.addr,
		Handler:      api.withMiddleware(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  time.Minute,
	}

	return api, nil
}

// Handler exposes the full chain, mainly for tests.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

func (a *API) Stop(ctx context.Context) error {
	timeout := a.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ctx = wrap.WithAction(ctx, types.ActionServerStop)

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, types.ActionServerStart)
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux. Metrics sits right above the mux
// so the matched route pattern is visible to it.
func (a *API) withMiddleware() http.Handler {
	chain := alice.New(
		a.m.Recover,
		a.m.RequestID,
		a.m.Auth,
		a.m.Logging,
		a.m.Metrics(a.name),
	).Then(a.mux)

	c := cors.New(cors.Options{
		AllowedOrigins:   a.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	return c.Handler(chain)
}
