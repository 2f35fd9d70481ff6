package models

import (
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

// DriverDetails is what the dispatcher tells the driver app about the offer.
type DriverDetails struct {
	Name     string  `json:"name,omitempty"`
	Phone    string  `json:"phone,omitempty"`
	Photo    string  `json:"photo,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}

// RideRequest is the transient dispatch record of one ride.
type RideRequest struct {
	ID              string              `json:"requestId"`
	DriverID        string              `json:"driverId"`
	DocumentID      string              `json:"documentId"`
	Status          types.RequestStatus `json:"status"`
	DriverDetails   DriverDetails       `json:"driverDetails"`
	Origin          Coordinate          `json:"origin"`
	Polyline        string              `json:"polyline"`
	AssignedVehicle *Vehicle            `json:"vehicle,omitempty"`
	TripID          string              `json:"tripId,omitempty"`
	CancelReason    string              `json:"cancelReason,omitempty"`
	FinalPrice      float64             `json:"finalPrice,omitempty"`
	IsPeakHour      bool                `json:"isPeakHour"`
	PriceMultiplier float64             `json:"priceMultiplier,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// RaceID is the durable document the request belongs to.
func (r RideRequest) RaceID() string {
	if r.DocumentID != "" {
		return r.DocumentID
	}
	return r.ID
}

type CreateRequestInput struct {
	RequestID     string
	DriverID      string
	DocumentID    string
	DriverDetails DriverDetails
}

type AcceptInput struct {
	DriverID string
	TripID   string
	Vehicle  *Vehicle
}

// FinishResult is stored on the race and returned again on repeated finish calls.
type FinishResult struct {
	RequestID         string    `json:"requestId"`
	EndTime           time.Time `json:"endTime"`
	TravelTimeMinutes int       `json:"travelTimeMinutes"`
	DistanceKm        float64   `json:"distanceKm"`
	FinalPrice        float64   `json:"finalPrice"`
	IsPeakHour        bool      `json:"isPeakHour"`
	PriceMultiplier   float64   `json:"priceMultiplier"`
	DriverPayout      float64   `json:"driverPayout"`
	Commission        float64   `json:"commission"`
	AlreadyFinished   bool      `json:"alreadyFinished,omitempty"`
}

// Debit is a balance deduction requested from the wallet service.
type Debit struct {
	UserID      string  `json:"userId"`
	Amount      float64 `json:"amount"`
	Reference   string  `json:"reference"`
	Description string  `json:"description"`
}
