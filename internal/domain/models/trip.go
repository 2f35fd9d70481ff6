package models

import (
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

type Trip struct {
	ID        string
	RequestID string
	DriverID  string
	VehicleID string
	Status    types.TripStatus
	StartTime time.Time
	EndTime   *time.Time
}

type RoutePoint struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	Timestamp time.Time `json:"timestamp"`
}
