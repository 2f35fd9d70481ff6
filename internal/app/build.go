package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Temutjin2k/ride-dispatch/internal/adapter/email"
	"github.com/Temutjin2k/ride-dispatch/internal/adapter/firebase"
	"github.com/Temutjin2k/ride-dispatch/internal/adapter/http/handler"
	"github.com/Temutjin2k/ride-dispatch/internal/adapter/http/server"
	wshandler "github.com/Temutjin2k/ride-dispatch/internal/adapter/http/ws"
	repo "github.com/Temutjin2k/ride-dispatch/internal/adapter/postgres"
	rabbitadapter "github.com/Temutjin2k/ride-dispatch/internal/adapter/rabbit"
	redisadapter "github.com/Temutjin2k/ride-dispatch/internal/adapter/redis"
	"github.com/Temutjin2k/ride-dispatch/internal/adapter/routing"
	"github.com/Temutjin2k/ride-dispatch/internal/adapter/s3"
	"github.com/Temutjin2k/ride-dispatch/internal/adapter/sms"
	"github.com/Temutjin2k/ride-dispatch/internal/adapter/wallet"
	busws "github.com/Temutjin2k/ride-dispatch/internal/adapter/ws"
	"github.com/Temutjin2k/ride-dispatch/internal/service/auth"
	"github.com/Temutjin2k/ride-dispatch/internal/service/pricing"
	"github.com/Temutjin2k/ride-dispatch/internal/service/request"
	"github.com/Temutjin2k/ride-dispatch/internal/service/tracking"
	"github.com/Temutjin2k/ride-dispatch/pkg/postgres"
	"github.com/Temutjin2k/ride-dispatch/pkg/rabbit"
	pkgredis "github.com/Temutjin2k/ride-dispatch/pkg/redis"
	"github.com/Temutjin2k/ride-dispatch/pkg/trm"
	ws "github.com/Temutjin2k/ride-dispatch/pkg/wsHub"
)

func (a *App) build(ctx context.Context) error {
	cfg := a.cfg
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
		a.cfg.InstanceID = cfg.InstanceID
	}

	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		a.log.Error(ctx, "Failed to setup database", err)
		return err
	}
	a.postgresDB = postgresDB
	pool := postgresDB.Pool

	races := repo.NewRaceRepo(pool)
	requests := repo.NewRequestRepo(pool)
	users := repo.NewUserRepo(pool)
	trips := repo.NewTripRepo(pool)
	chats := repo.NewChatRepo(pool)
	pricingRepo := repo.NewPricingRepo(pool)

	// fan-out bus, optionally relayed through rabbitmq
	hub := ws.NewConnHub(a.log)
	a.bus = busws.NewBus(hub, cfg.InstanceID, a.log)
	if cfg.RabbitMQ.Enabled {
		a.rabbit, err = rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), a.log)
		if err != nil {
			a.log.Error(ctx, "Failed to connect to rabbitmq", err)
			return err
		}
		a.relay = rabbitadapter.NewEventRelay(a.rabbit, cfg.RabbitMQ.Exchange, a.log)
		if err := a.relay.Setup(ctx); err != nil {
			return err
		}
		a.bus.SetRelay(a.relay)
	}

	a.registry = tracking.NewRegistry(a.bus, a.log,
		tracking.WithStaleAfter(cfg.Tracking.StaleAfter),
		tracking.WithSweepInterval(cfg.Tracking.SweepInterval),
	)

	pricingOpts := []pricing.Option{pricing.WithTimezone(cfg.Pricing.Location())}
	if cfg.Redis.Enabled {
		a.redis, err = pkgredis.New(ctx, pkgredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.log.Error(ctx, "Failed to connect to redis", err)
			return err
		}
		a.notifier = redisadapter.NewNotifier(a.redis, cfg.Redis.Channel, a.log)
		pricingOpts = append(pricingOpts, pricing.WithPublisher(a.notifier, cfg.InstanceID))
	}
	a.pricing = pricing.NewEngine(pricingRepo, races, a.bus, a.log, pricingOpts...)
	if err := a.pricing.Load(ctx); err != nil {
		a.log.Error(ctx, "Failed to load pricing reference data", err)
		return err
	}

	deps := request.Deps{
		Trackings: a.registry,
		Races:     races,
		Requests:  requests,
		Users:     users,
		Trips:     trips,
		Chats:     chats,
		Router:    a.routeChain(),
		Pricer:    a.pricing,
		Bus:       a.bus,
		Tx:        trm.New(pool),
		Recorder:  request.NewRecorder(a.registry, trips, a.log, cfg.Tracking.RecordInterval),
	}

	// optional collaborators stay nil interfaces when not configured
	if cfg.Wallet.URL != "" {
		deps.Wallet = wallet.NewClient(cfg.Wallet.URL, nil)
	}
	if cfg.SMS.APIKey != "" {
		deps.SMS = sms.NewClient(cfg.SMS.URL, cfg.SMS.APIKey, nil)
	}
	if cfg.SMTP.Host != "" {
		deps.Mailer = email.NewMailer(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	var pushSender handler.PushSender
	if cfg.Firebase.ProjectID != "" {
		pusher, err := firebase.New(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile, a.log)
		if err != nil {
			a.log.Error(ctx, "Failed to setup firebase messaging", err)
			return err
		}
		deps.Pusher = pusher
		pushSender = pusher
	}

	var objectStorage handler.ObjectStorage
	if cfg.S3.Endpoint != "" {
		store, err := s3.New(s3.Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PublicURL: cfg.S3.PublicURL,
		})
		if err != nil {
			a.log.Error(ctx, "Failed to setup object storage", err)
			return err
		}
		objectStorage = store
	}

	a.requests = request.NewService(deps, a.log)

	handlers := &server.Handlers{
		Health:       handler.NewHealth(cfg.ServiceName, cfg.InstanceID, a.healthChecks(), a.log),
		Tracking:     handler.NewTracking(a.registry, a.log),
		Request:      handler.NewRequest(a.requests, trips, a.log),
		Pricing:      handler.NewPricing(a.pricing, a.log),
		Notification: handler.NewNotification(pushSender, a.log),
		Storage:      handler.NewStorage(objectStorage, a.log),
		WS:           wshandler.New(hub, a.bus, a.registry, a.log),
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.APIKey)
	a.httpServer, err = server.New(cfg.Server, cfg.ServiceName, handlers, tokens, a.log)
	if err != nil {
		a.log.Error(ctx, "Failed to setup http server", err)
		return err
	}

	return nil
}

// routeChain asks Google first when a key is configured and falls back to OSRM.
func (a *App) routeChain() *routing.Chain {
	providers := make([]routing.Provider, 0, 2)
	if key := a.cfg.Routing.GoogleAPIKey; key != "" {
		google, err := routing.NewGoogle(key)
		if err != nil {
			a.log.Warn(context.Background(), "google directions disabled", "error", err.Error())
		} else {
			providers = append(providers, google)
		}
	}
	providers = append(providers, routing.NewOSRM(a.cfg.Routing.OSRMURL, nil))
	return routing.NewChain(a.log, providers...)
}

func (a *App) healthChecks() map[string]handler.Check {
	checks := map[string]handler.Check{
		"postgres": func(ctx context.Context) error { return a.postgresDB.Pool.Ping(ctx) },
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}
	if a.rabbit != nil {
		checks["rabbitmq"] = func(context.Context) error {
			if a.rabbit.IsConnectionClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	return checks
}

