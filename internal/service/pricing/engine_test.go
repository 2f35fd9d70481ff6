package pricing

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
)

type memRepo struct {
	mu      sync.Mutex
	peaks   map[string]models.PeakHourConfig
	classes map[string]models.VehicleClass
	failAll error
}

func newMemRepo() *memRepo {
	return &memRepo{peaks: map[string]models.PeakHourConfig{}, classes: map[string]models.VehicleClass{}}
}

func (m *memRepo) ListPeakHours(context.Context) ([]models.PeakHourConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PeakHourConfig
	for _, c := range m.peaks {
		out = append(out, c)
	}
	return out, m.failAll
}

func (m *memRepo) UpsertPeakHour(_ context.Context, cfg models.PeakHourConfig) error {
	if m.failAll != nil {
		return m.failAll
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.peaks[cfg.Key()] = cfg
	return nil
}

func (m *memRepo) DeletePeakHour(_ context.Context, loc models.Location) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.peaks[loc.Key()]
	delete(m.peaks, loc.Key())
	return ok, m.failAll
}

func (m *memRepo) ListVehicleClasses(context.Context) ([]models.VehicleClass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.VehicleClass
	for _, c := range m.classes {
		out = append(out, c)
	}
	return out, m.failAll
}

func (m *memRepo) UpsertVehicleClass(_ context.Context, vc models.VehicleClass) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes[vc.ID] = vc
	return m.failAll
}

func (m *memRepo) DeleteVehicleClass(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.classes[id]
	delete(m.classes, id)
	return ok, m.failAll
}

type repriceCall struct {
	key        string
	peak       bool
	multiplier float64
}

type fakeRaces struct {
	calls []repriceCall
	err   error
}

func (f *fakeRaces) ApplyPeakPricing(_ context.Context, loc models.Location, peak bool, m float64) (int64, error) {
	f.calls = append(f.calls, repriceCall{loc.Key(), peak, m})
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

type fakeBus struct {
	events []models.Event
}

func (b *fakeBus) Broadcast(_ context.Context, e models.Event) { b.events = append(b.events, e) }

type fakePublisher struct {
	changes []models.ConfigChange
}

func (p *fakePublisher) Publish(_ context.Context, c models.ConfigChange) error {
	p.changes = append(p.changes, c)
	return nil
}

var luanda = models.Location{Country: "Angola", Province: "Luanda", Municipality: "Belas"}

func clockAt(hh, mm int) func() time.Time {
	return func() time.Time { return time.Date(2025, 3, 4, hh, mm, 0, 0, time.UTC) }
}

func newTestEngine(t *testing.T, now func() time.Time, status types.ConfigStatus) (*Engine, *fakeRaces, *fakeBus) {
	t.Helper()
	races, bus := &fakeRaces{}, &fakeBus{}
	e := NewEngine(newMemRepo(), races, bus, logger.Nop(), WithClock(now), WithTimezone(time.UTC))
	_, err := e.UpsertConfig(context.Background(), models.PeakHourConfig{
		Location:     luanda,
		StartTime:    "08:00",
		EndTime:      "09:00",
		PricePerHour: 15,
		Status:       status,
	})
	if err != nil {
		t.Fatalf("upsert config: %v", err)
	}
	return e, races, bus
}

func TestIsWithinPeakHours(t *testing.T) {
	tests := []struct {
		name   string
		hh, mm int
		status types.ConfigStatus
		want   bool
	}{
		{"inside", 8, 30, types.ConfigActive, true},
		{"before start", 7, 59, types.ConfigActive, false},
		{"start inclusive", 8, 0, types.ConfigActive, true},
		{"end inclusive", 9, 0, types.ConfigActive, true},
		{"after end", 9, 1, types.ConfigActive, false},
		{"inactive", 8, 30, types.ConfigInactive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newTestEngine(t, clockAt(tt.hh, tt.mm), tt.status)
			if got := e.IsWithinPeakHours(luanda); got != tt.want {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestIsWithinPeakHours_KeyIsCaseInsensitive(t *testing.T) {
	e, _, _ := newTestEngine(t, clockAt(8, 30), types.ConfigActive)
	loc := models.Location{Country: "ANGOLA", Province: "luanda", Municipality: "BELAS"}
	if !e.IsWithinPeakHours(loc) {
		t.Fatalf("key lookup must ignore case")
	}
	if e.IsWithinPeakHours(models.Location{Country: "Angola", Province: "Luanda", Municipality: "Viana"}) {
		t.Fatalf("unknown location must not be peak")
	}
}

func TestCalculatePrice(t *testing.T) {
	tests := []struct {
		name    string
		hh, mm  int
		status  types.ConfigStatus
		base    float64
		classID string
		want    float64
	}{
		{"peak", 8, 30, types.ConfigActive, 100, "", 150},
		{"outside window", 10, 0, types.ConfigActive, 100, "", 100},
		{"inactive", 8, 30, types.ConfigInactive, 100, "", 100},
		{"zero base uses class price", 8, 30, types.ConfigActive, 0, "eco", 120},
		{"zero base unknown class", 8, 30, types.ConfigActive, 0, "nope", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newTestEngine(t, clockAt(tt.hh, tt.mm), tt.status)
			if _, err := e.UpsertVehicleClass(context.Background(), models.VehicleClass{ID: "eco", BasePrice: 80}); err != nil {
				t.Fatalf("upsert class: %v", err)
			}

			q := e.CalculatePrice(tt.base, luanda, tt.classID)
			if math.Abs(q.FinalPrice-tt.want) > 1e-9 {
				t.Fatalf("price = %v, want %v", q.FinalPrice, tt.want)
			}
			if q.IsPeakHour && q.Multiplier != 1.5 {
				t.Fatalf("multiplier = %v", q.Multiplier)
			}
			if !q.IsPeakHour && q.Multiplier != 1 {
				t.Fatalf("multiplier outside peak must be 1, got %v", q.Multiplier)
			}
		})
	}
}

func TestUpsertConfig_Validation(t *testing.T) {
	e := NewEngine(newMemRepo(), nil, nil, logger.Nop())
	valid := models.PeakHourConfig{Location: luanda, StartTime: "08:00", EndTime: "09:00", PricePerHour: 15, Status: types.ConfigActive}

	mutate := []struct {
		name string
		fn   func(*models.PeakHourConfig)
	}{
		{"country", func(c *models.PeakHourConfig) { c.Country = "" }},
		{"province", func(c *models.PeakHourConfig) { c.Province = "" }},
		{"municipality", func(c *models.PeakHourConfig) { c.Municipality = "" }},
		{"start", func(c *models.PeakHourConfig) { c.StartTime = "" }},
		{"end", func(c *models.PeakHourConfig) { c.EndTime = "" }},
		{"price", func(c *models.PeakHourConfig) { c.PricePerHour = 0 }},
		{"status", func(c *models.PeakHourConfig) { c.Status = "" }},
		{"bad time", func(c *models.PeakHourConfig) { c.StartTime = "8h" }},
		{"bad status", func(c *models.PeakHourConfig) { c.Status = "ativo" }},
	}

	for _, m := range mutate {
		t.Run(m.name, func(t *testing.T) {
			cfg := valid
			m.fn(&cfg)
			_, err := e.UpsertConfig(context.Background(), cfg)
			if types.KindOf(err) != types.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if len(e.Configs()) != 0 {
		t.Fatalf("rejected configs must not be cached")
	}
}

func TestUpsertConfig_StoreFailure(t *testing.T) {
	repo := newMemRepo()
	repo.failAll = errors.New("connection refused")
	e := NewEngine(repo, nil, nil, logger.Nop())

	_, err := e.UpsertConfig(context.Background(), models.PeakHourConfig{Location: luanda, StartTime: "08:00", EndTime: "09:00", PricePerHour: 15, Status: types.ConfigActive})
	if types.KindOf(err) != types.KindDatabase {
		t.Fatalf("expected database error, got %v", err)
	}
}

func TestRemoveConfig(t *testing.T) {
	pub := &fakePublisher{}
	e := NewEngine(newMemRepo(), nil, nil, logger.Nop(), WithClock(clockAt(8, 30)), WithPublisher(pub, "node-a"))
	ctx := context.Background()

	if err := e.RemoveConfig(ctx, luanda); !errors.Is(err, types.ErrPeakConfigNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, _ = e.UpsertConfig(ctx, models.PeakHourConfig{Location: luanda, StartTime: "08:00", EndTime: "09:00", PricePerHour: 15, Status: types.ConfigActive})
	if err := e.RemoveConfig(ctx, luanda); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if e.IsWithinPeakHours(luanda) {
		t.Fatalf("removed config must not apply")
	}
	if len(pub.changes) != 2 || pub.changes[1].Op != models.ChangeDelete || pub.changes[1].Origin != "node-a" {
		t.Fatalf("unexpected notifications: %+v", pub.changes)
	}
}

func TestApplyChange(t *testing.T) {
	e := NewEngine(newMemRepo(), nil, nil, logger.Nop(), WithClock(clockAt(8, 30)), WithPublisher(&fakePublisher{}, "node-a"))
	ctx := context.Background()
	cfg := models.PeakHourConfig{Location: luanda, StartTime: "08:00", EndTime: "09:00", PricePerHour: 20, Status: types.ConfigActive}

	e.ApplyChange(ctx, models.ConfigChange{Op: models.ChangeUpsert, PeakHour: &cfg, Origin: "node-a"})
	if e.IsWithinPeakHours(luanda) {
		t.Fatalf("own notifications must be ignored")
	}

	e.ApplyChange(ctx, models.ConfigChange{Op: models.ChangeUpsert, PeakHour: &cfg, Origin: "node-b"})
	if m, ok := e.Multiplier(luanda); !ok || m != 2 {
		t.Fatalf("remote change not applied: %v %v", m, ok)
	}
	// applying the same change twice is harmless
	e.ApplyChange(ctx, models.ConfigChange{Op: models.ChangeUpsert, PeakHour: &cfg, Origin: "node-b"})

	vc := models.VehicleClass{ID: "lux", BasePrice: 500}
	e.ApplyChange(ctx, models.ConfigChange{Op: models.ChangeUpsert, VehicleClass: &vc, Origin: "node-b"})
	if _, ok := e.VehicleClass("lux"); !ok {
		t.Fatalf("vehicle class not applied")
	}
	e.ApplyChange(ctx, models.ConfigChange{Op: models.ChangeDelete, VehicleClass: &models.VehicleClass{ID: "lux"}, Origin: "node-b"})
	if _, ok := e.VehicleClass("lux"); ok {
		t.Fatalf("vehicle class not removed")
	}
}

func TestLoad(t *testing.T) {
	repo := newMemRepo()
	repo.peaks[luanda.Key()] = models.PeakHourConfig{Location: luanda, StartTime: "08:00", EndTime: "09:00", PricePerHour: 15, Status: types.ConfigActive}
	repo.classes["eco"] = models.VehicleClass{ID: "eco", IsDefault: true}

	e := NewEngine(repo, nil, nil, logger.Nop(), WithClock(clockAt(8, 15)), WithTimezone(time.UTC))
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !e.IsWithinPeakHours(luanda) {
		t.Fatalf("loaded config must apply")
	}
	if vc, ok := e.DefaultVehicleClass(); !ok || vc.ID != "eco" {
		t.Fatalf("default class not loaded")
	}
}
