package models

import (
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

// Race is the durable ride document created by the rider app.
type Race struct {
	ID             string
	RiderID        string
	RiderFCMToken  string
	RiderPhone     string
	RiderEmail     string
	Origin         *Coordinate
	Destination    *Coordinate
	Location       Location
	VehicleClassID string
	BasePrice      float64
	Status         types.RequestStatus

	DriverID   string
	DriverName string
	Vehicle    *Vehicle
	Assigned   bool
	TripID     string

	StartTime *time.Time
	EndTime   *time.Time

	FinalPrice        float64
	IsPeakHour        bool
	PriceMultiplier   float64
	TravelTimeMinutes int
	DistanceKm        float64
	DriverPayout      float64
	Commission        float64
	CancelReason      string

	UpdatedAt time.Time
}

// FinishResult rebuilds the stored outcome of a finished race.
func (r Race) FinishResult(requestID string) FinishResult {
	res := FinishResult{
		RequestID:         requestID,
		TravelTimeMinutes: r.TravelTimeMinutes,
		DistanceKm:        r.DistanceKm,
		FinalPrice:        r.FinalPrice,
		IsPeakHour:        r.IsPeakHour,
		PriceMultiplier:   r.PriceMultiplier,
		DriverPayout:      r.DriverPayout,
		Commission:        r.Commission,
	}
	if r.EndTime != nil {
		res.EndTime = *r.EndTime
	}
	return res
}

// RaceAssignment is written when a driver accepts.
type RaceAssignment struct {
	DriverID   string
	DriverName string
	Vehicle    *Vehicle
	TripID     string
}

// DriverProfile is the driver's user document.
type DriverProfile struct {
	ID              string
	Name            string
	Phone           string
	VehicleSelected *Vehicle
	TripID          string
}
