package request

import (
	"context"
	"errors"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
	"github.com/Temutjin2k/ride-dispatch/pkg/metrics"
)

const (
	debitAttempts   = 3
	debitBaseDelay  = time.Second
	debitMaxBackoff = 5 * time.Second
)

// debitBackoff is the wait after the given failed attempt: 1s, 2s, 4s, capped at 5s.
func debitBackoff(attempt int) time.Duration {
	d := debitBaseDelay << (attempt - 1)
	if d > debitMaxBackoff || d <= 0 {
		return debitMaxBackoff
	}
	return d
}

// debitWithRetry retries only while the wallet reports itself unavailable.
func (s *Service) debitWithRetry(ctx context.Context, token string, d models.Debit) error {
	ctx = wrap.WithAction(ctx, types.ActionWalletDebit)

	var err error
	for attempt := 1; attempt <= debitAttempts; attempt++ {
		err = s.wallet.Debit(ctx, token, d)
		if err == nil || !errors.Is(err, types.ErrWalletUnavailable) || attempt == debitAttempts {
			break
		}

		s.log.Warn(ctx, "wallet debit failed, retrying", "attempt", attempt, "error", err.Error())
		if serr := s.sleep(ctx, debitBackoff(attempt)); serr != nil {
			err = serr
			break
		}
	}
	metrics.RecordDebit(err)
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
