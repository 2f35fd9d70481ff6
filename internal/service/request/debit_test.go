package request

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

func TestDebitBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second},
		{10, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := debitBackoff(tt.attempt); got != tt.want {
			t.Errorf("debitBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDebitWithRetry(t *testing.T) {
	unavailable := errors.Join(types.ErrWalletUnavailable, errors.New("503"))

	tests := []struct {
		name       string
		errs       []error
		wantErr    error
		wantCalls  int
		wantSleeps []time.Duration
	}{
		{
			name:      "first attempt succeeds",
			wantCalls: 1,
		},
		{
			name:       "recovers after two outages",
			errs:       []error{unavailable, unavailable},
			wantCalls:  3,
			wantSleeps: []time.Duration{time.Second, 2 * time.Second},
		},
		{
			name:       "gives up after three attempts",
			errs:       []error{unavailable, unavailable, unavailable},
			wantErr:    types.ErrWalletUnavailable,
			wantCalls:  3,
			wantSleeps: []time.Duration{time.Second, 2 * time.Second},
		},
		{
			name:      "rejection is not retried",
			errs:      []error{types.ErrWalletRejected},
			wantErr:   types.ErrWalletRejected,
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.wallet.errs = tt.errs

			err := f.svc.debitWithRetry(context.Background(), "token", models.Debit{UserID: "driver-1", Amount: 30})
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(f.wallet.debits) != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", len(f.wallet.debits), tt.wantCalls)
			}
			if len(f.sleeps) != len(tt.wantSleeps) {
				t.Fatalf("sleeps = %v, want %v", f.sleeps, tt.wantSleeps)
			}
			for i := range tt.wantSleeps {
				if f.sleeps[i] != tt.wantSleeps[i] {
					t.Fatalf("sleeps = %v, want %v", f.sleeps, tt.wantSleeps)
				}
			}
		})
	}
}

func TestFinish_DebitFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	f.startRide(t)
	f.wallet.errs = []error{types.ErrWalletRejected}
	f.now = t0.Add(3 * time.Minute)

	res, err := f.svc.Finish(context.Background(), "req-1", models.Coordinate{Latitude: 10, Longitude: 10.01}, "token")
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if res.FinalPrice == 0 || f.races.status("doc-1") != types.StatusFinished {
		t.Fatalf("ride should finish despite the debit failure: %+v", res)
	}
}
