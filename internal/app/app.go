package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Temutjin2k/ride-dispatch/config"
	"github.com/Temutjin2k/ride-dispatch/internal/adapter/http/server"
	rabbitadapter "github.com/Temutjin2k/ride-dispatch/internal/adapter/rabbit"
	redisadapter "github.com/Temutjin2k/ride-dispatch/internal/adapter/redis"
	busws "github.com/Temutjin2k/ride-dispatch/internal/adapter/ws"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/internal/service/pricing"
	"github.com/Temutjin2k/ride-dispatch/internal/service/request"
	"github.com/Temutjin2k/ride-dispatch/internal/service/tracking"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-dispatch/pkg/postgres"
	"github.com/Temutjin2k/ride-dispatch/pkg/rabbit"
)

var ErrServiceNotInitialized = errors.New("service not initialized")

const wsPruneInterval = 30 * time.Second

// App owns every long lived component of the dispatch service.
type App struct {
	postgresDB *postgres.PostgreDB
	redis      *redis.Client
	rabbit     *rabbit.RabbitMQ
	httpServer *server.API

	bus      *busws.Bus
	relay    *rabbitadapter.EventRelay
	notifier *redisadapter.Notifier
	registry *tracking.Registry
	pricing  *pricing.Engine
	requests *request.Service

	cfg config.Config
	log logger.Logger
}

// NewApplication connects the backends and builds the services.
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}
	if err := a.build(ctx); err != nil {
		a.close(ctx)
		return nil, err
	}
	return a, nil
}

// Run starts the background loops and the HTTP server and blocks until a
// signal arrives, the server fails, or ctx ends.
func (a *App) Run(ctx context.Context) error {
	if a.httpServer == nil {
		return ErrServiceNotInitialized
	}
	ctx = wrap.WithAction(ctx, "app_run")

	loopCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		a.close(ctx)
		wg.Wait()
		a.log.Info(wrap.WithAction(ctx, types.ActionApplicationClosed), "dispatch service closed")
	}()

	a.startLoops(loopCtx, &wg)

	errCh := make(chan error, 1)
	a.httpServer.Run(ctx, errCh)

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	a.log.Info(ctx, "dispatch service started", "instance_id", a.cfg.InstanceID)

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (a *App) startLoops(ctx context.Context, wg *sync.WaitGroup) {
	goLoop := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	goLoop(func() { a.registry.Run(ctx) })
	goLoop(func() { a.bus.Hub().RunPruner(ctx, wsPruneInterval) })
	goLoop(func() { a.pricing.RunScanner(ctx, a.cfg.Pricing.ScanInterval) })

	if a.notifier != nil {
		goLoop(func() {
			if err := a.notifier.Listen(ctx, a.pricing); err != nil {
				a.log.Error(ctx, "config change listener stopped", err)
			}
		})
	}
	if a.relay != nil {
		goLoop(func() {
			if err := a.relay.Consume(ctx, a.bus); err != nil {
				a.log.Error(ctx, "event relay stopped", err)
			}
		})
	}
}

func (a *App) close(ctx context.Context) {
	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}
	if a.requests != nil {
		a.requests.Shutdown()
	}
	if a.bus != nil {
		a.bus.Hub().Close()
	}
	if a.rabbit != nil {
		if err := a.rabbit.Close(ctx); err != nil {
			a.log.Warn(ctx, "Failed to close rabbitmq connection", "error", err.Error())
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn(ctx, "Failed to close redis client", "error", err.Error())
		}
	}
	a.postgresDB.Close()
}
