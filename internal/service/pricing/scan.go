package pricing

import (
	"context"
	"strconv"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-dispatch/pkg/metrics"
)

const DefaultScanInterval = time.Minute

// Scan compares every active window with its previous observation. A location seen
// for the first time counts as changed. On a change the started races of that
// location are repriced and the new state is broadcast. Returns the number of flips.
func (e *Engine) Scan(ctx context.Context) int {
	ctx = wrap.WithAction(ctx, types.ActionPeakHourScan)
	hhmm := e.clock()

	e.scanMu.Lock()
	defer e.scanMu.Unlock()

	flips := 0
	for _, cfg := range e.Configs() {
		if !cfg.Active() {
			continue
		}

		key := cfg.Key()
		peak := withinWindow(cfg, hhmm)
		prev, seen := e.lastState[key]
		e.lastState[key] = peak
		if seen && prev == peak {
			continue
		}
		flips++
		metrics.PeakFlipsTotal.WithLabelValues(key, strconv.FormatBool(peak)).Inc()

		multiplier := 1.0
		if peak {
			multiplier = cfg.PricePerHour / multiplierDivisor
		}

		var result *models.RepriceResult
		if e.races != nil {
			n, err := e.races.ApplyPeakPricing(ctx, cfg.Location, peak, multiplier)
			result = &models.RepriceResult{Success: err == nil, Updated: n}
			if err != nil {
				result.Updated = 0
				result.Error = "failed to update race prices"
				e.log.Error(wrap.ErrorCtx(ctx, err), "failed to reprice started races", err, "key", key)
			} else if n > 0 {
				e.log.Info(ctx, "started races repriced", "key", key, "races", n, "multiplier", multiplier)
			}
		}

		if e.bus != nil {
			e.bus.Broadcast(ctx, models.NewEvent(types.EventPeakHourStatusChanged, models.PeakHourChanged{
				Country:      cfg.Country,
				Province:     cfg.Province,
				Municipality: cfg.Municipality,
				IsPeakHour:   peak,
				Timestamp:    e.now(),
				UpdateResult: result,
			}))
		}
	}
	return flips
}

// RunScanner scans on every tick until ctx is done.
func (e *Engine) RunScanner(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultScanInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Scan(ctx)
		}
	}
}
