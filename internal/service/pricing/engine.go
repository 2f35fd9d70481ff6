package pricing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-dispatch/pkg/validator"
)

// multiplierDivisor turns pricePerHour into a multiplier: 15 -> 1.5.
const multiplierDivisor = 10.0

type (
	ConfigRepository interface {
		ListPeakHours(ctx context.Context) ([]models.PeakHourConfig, error)
		UpsertPeakHour(ctx context.Context, cfg models.PeakHourConfig) error
		DeletePeakHour(ctx context.Context, loc models.Location) (bool, error)

		ListVehicleClasses(ctx context.Context) ([]models.VehicleClass, error)
		UpsertVehicleClass(ctx context.Context, vc models.VehicleClass) error
		DeleteVehicleClass(ctx context.Context, id string) (bool, error)
	}

	// RaceRepository updates in-flight races when a location flips.
	RaceRepository interface {
		ApplyPeakPricing(ctx context.Context, loc models.Location, isPeak bool, multiplier float64) (int64, error)
	}

	ChangePublisher interface {
		Publish(ctx context.Context, change models.ConfigChange) error
	}

	Broadcaster interface {
		Broadcast(ctx context.Context, event models.Event)
	}
)

// Engine caches peak hour windows and vehicle classes and prices rides with them.
type Engine struct {
	mu      sync.RWMutex
	configs map[string]models.PeakHourConfig
	classes map[string]models.VehicleClass

	scanMu    sync.Mutex
	lastState map[string]bool

	repo       ConfigRepository
	races      RaceRepository
	publisher  ChangePublisher
	bus        Broadcaster
	instanceID string

	now func() time.Time
	tz  *time.Location
	log logger.Logger
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTimezone sets the zone whose wall clock is compared with the windows.
func WithTimezone(tz *time.Location) Option {
	return func(e *Engine) {
		if tz != nil {
			e.tz = tz
		}
	}
}

func WithPublisher(p ChangePublisher, instanceID string) Option {
	return func(e *Engine) {
		e.publisher = p
		e.instanceID = instanceID
	}
}

func NewEngine(repo ConfigRepository, races RaceRepository, bus Broadcaster, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		configs:   make(map[string]models.PeakHourConfig),
		classes:   make(map[string]models.VehicleClass),
		lastState: make(map[string]bool),
		repo:      repo,
		races:     races,
		bus:       bus,
		now:       time.Now,
		tz:        time.Local,
		log:       log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load fills both caches from the store.
func (e *Engine) Load(ctx context.Context) error {
	const op = "Engine.Load"

	configs, err := e.repo.ListPeakHours(ctx)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: peak hours: %w", op, err))
	}
	classes, err := e.repo.ListVehicleClasses(ctx)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: vehicle classes: %w", op, err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range configs {
		e.configs[c.Key()] = c
	}
	for _, vc := range classes {
		e.classes[vc.ID] = vc
	}

	e.log.Info(ctx, "pricing data loaded", "peak_hours", len(configs), "vehicle_classes", len(classes))
	return nil
}

func (e *Engine) clock() string {
	return e.now().In(e.tz).Format("15:04")
}

// withinWindow compares "HH:MM" strings inclusively. Windows crossing midnight never match.
func withinWindow(cfg models.PeakHourConfig, hhmm string) bool {
	return hhmm >= cfg.StartTime && hhmm <= cfg.EndTime
}

func (e *Engine) config(loc models.Location) (models.PeakHourConfig, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.configs[loc.Key()]
	return c, ok
}

func (e *Engine) isWithin(loc models.Location, hhmm string) (models.PeakHourConfig, bool) {
	cfg, ok := e.config(loc)
	if !ok || !cfg.Active() {
		return cfg, false
	}
	return cfg, withinWindow(cfg, hhmm)
}

func (e *Engine) IsWithinPeakHours(loc models.Location) bool {
	_, ok := e.isWithin(loc, e.clock())
	return ok
}

// Multiplier returns the current multiplier for loc, 1 outside peak hours.
func (e *Engine) Multiplier(loc models.Location) (float64, bool) {
	cfg, ok := e.isWithin(loc, e.clock())
	if !ok {
		return 1, false
	}
	return cfg.PricePerHour / multiplierDivisor, true
}

// CalculatePrice applies the current peak multiplier to base. A zero base inside
// peak hours falls back to the base price of the given vehicle class.
func (e *Engine) CalculatePrice(base float64, loc models.Location, vehicleClassID string) models.Quote {
	multiplier, peak := e.Multiplier(loc)
	if !peak {
		return models.Quote{BasePrice: base, FinalPrice: base, Multiplier: 1}
	}

	if base == 0 && vehicleClassID != "" {
		if vc, ok := e.VehicleClass(vehicleClassID); ok {
			base = vc.BasePrice
		}
	}

	return models.Quote{
		BasePrice:  base,
		FinalPrice: base * multiplier,
		Multiplier: multiplier,
		IsPeakHour: true,
	}
}

func (e *Engine) Status(loc models.Location) models.PeakStatus {
	cfg, ok := e.config(loc)
	st := models.PeakStatus{
		IsPeakHour:  e.IsWithinPeakHours(loc),
		CurrentTime: e.now().In(e.tz).Format(time.RFC3339),
		AllConfigs:  e.Configs(),
	}
	if ok {
		st.Config = &cfg
	}
	return st
}

// Configs returns the cached windows ordered by key.
func (e *Engine) Configs() []models.PeakHourConfig {
	e.mu.RLock()
	out := make([]models.PeakHourConfig, 0, len(e.configs))
	for _, c := range e.configs {
		out = append(out, c)
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

func validateConfig(cfg models.PeakHourConfig) error {
	if strings.TrimSpace(cfg.Country) == "" || strings.TrimSpace(cfg.Province) == "" ||
		strings.TrimSpace(cfg.Municipality) == "" || cfg.StartTime == "" || cfg.EndTime == "" ||
		cfg.PricePerHour == 0 || cfg.Status == "" {
		return types.ErrMissingConfigFields
	}
	if !validator.Matches(cfg.StartTime, validator.HHMM) || !validator.Matches(cfg.EndTime, validator.HHMM) {
		return types.NewValidation("startTime and endTime must be HH:MM")
	}
	if cfg.PricePerHour < 0 {
		return types.NewValidation("pricePerHour must be positive")
	}
	if !validator.PermittedValue(cfg.Status, types.ConfigActive, types.ConfigInactive) {
		return types.NewValidation("status must be active or inactive")
	}
	return nil
}

// UpsertConfig validates, persists and caches a window, then notifies other instances.
func (e *Engine) UpsertConfig(ctx context.Context, cfg models.PeakHourConfig) (models.PeakHourConfig, error) {
	const op = "Engine.UpsertConfig"
	ctx = wrap.WithAction(ctx, "upsert_peak_hour_config")

	if err := validateConfig(cfg); err != nil {
		return models.PeakHourConfig{}, err
	}
	cfg.UpdatedAt = e.now()

	if err := e.repo.UpsertPeakHour(ctx, cfg); err != nil {
		return models.PeakHourConfig{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.NewDatabase(err)))
	}

	e.mu.Lock()
	e.configs[cfg.Key()] = cfg
	e.mu.Unlock()

	e.publish(ctx, models.ConfigChange{Op: models.ChangeUpsert, PeakHour: &cfg})
	e.log.Info(ctx, "peak hour config saved", "key", cfg.Key(), "status", cfg.Status)
	return cfg, nil
}

func (e *Engine) RemoveConfig(ctx context.Context, loc models.Location) error {
	const op = "Engine.RemoveConfig"
	ctx = wrap.WithAction(ctx, "remove_peak_hour_config")

	found, err := e.repo.DeletePeakHour(ctx, loc)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.NewDatabase(err)))
	}
	if !found {
		return types.ErrPeakConfigNotFound
	}

	e.evictConfig(loc)
	e.publish(ctx, models.ConfigChange{Op: models.ChangeDelete, PeakHour: &models.PeakHourConfig{Location: loc}})
	return nil
}

func (e *Engine) evictConfig(loc models.Location) {
	e.mu.Lock()
	delete(e.configs, loc.Key())
	e.mu.Unlock()

	e.scanMu.Lock()
	delete(e.lastState, loc.Key())
	e.scanMu.Unlock()
}

// ApplyChange applies a notification from another instance. Own notifications are ignored.
func (e *Engine) ApplyChange(ctx context.Context, change models.ConfigChange) {
	if change.Origin != "" && change.Origin == e.instanceID {
		return
	}
	ctx = wrap.WithAction(ctx, types.ActionConfigChange)

	if pc := change.PeakHour; pc != nil {
		if change.Op == models.ChangeDelete {
			e.evictConfig(pc.Location)
		} else {
			e.mu.Lock()
			e.configs[pc.Key()] = *pc
			e.mu.Unlock()
		}
		e.log.Debug(ctx, "peak hour config change applied", "key", pc.Key(), "op", change.Op)
	}

	if vc := change.VehicleClass; vc != nil {
		e.mu.Lock()
		if change.Op == models.ChangeDelete {
			delete(e.classes, vc.ID)
		} else {
			e.classes[vc.ID] = *vc
		}
		e.mu.Unlock()
		e.log.Debug(ctx, "vehicle class change applied", "id", vc.ID, "op", change.Op)
	}
}

func (e *Engine) publish(ctx context.Context, change models.ConfigChange) {
	if e.publisher == nil {
		return
	}
	change.Origin = e.instanceID
	if err := e.publisher.Publish(ctx, change); err != nil {
		e.log.Warn(ctx, "failed to publish config change", "error", err.Error())
	}
}
