package pricing

import (
	"errors"
	"testing"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

func TestRoundUpTo50(t *testing.T) {
	tests := map[float64]float64{
		237:   250,
		250:   250,
		250.1: 300,
		1:     50,
		0:     0,
	}
	for in, want := range tests {
		if got := RoundUpTo50(in); got != want {
			t.Errorf("RoundUpTo50(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestFare(t *testing.T) {
	vc := models.VehicleClass{BasePrice: 100, BasePricePerKm: 20, BasePriceMin: 5}

	// 100 + 20*3.5 + 5*13 = 235 -> 250
	if got := Fare(vc, 3.5, 13); got != 250 {
		t.Fatalf("fare = %v, want 250", got)
	}
}

func TestSplit(t *testing.T) {
	commission, payout, err := Split(1000, 20)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if commission != 200 || payout != 800 {
		t.Fatalf("got commission %v payout %v", commission, payout)
	}

	for _, tc := range []struct{ fare, rate float64 }{{0, 10}, {-5, 10}, {100, -1}, {100, 101}} {
		if _, _, err := Split(tc.fare, tc.rate); !errors.Is(err, types.ErrInvalidFare) {
			t.Errorf("Split(%v, %v) expected ErrInvalidFare, got %v", tc.fare, tc.rate, err)
		}
	}
}
