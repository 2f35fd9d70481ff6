package models

import "time"

// Event is one frame of the real-time channel.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

func NewEvent(name string, data any) Event {
	return Event{Name: name, Data: data}
}

// Envelope carries an event between instances. Target selects the receivers:
// empty for everyone, a subscriber id, or a connection id.
type Envelope struct {
	Origin string `json:"origin"`
	Target string `json:"target,omitempty"`
	Scope  string `json:"scope"`
	Event  Event  `json:"event"`
}

const (
	ScopeAll        = "all"
	ScopeSubscriber = "subscriber"
	ScopeConnection = "connection"
)

type RequestResponse struct {
	RequestID string   `json:"requestId"`
	Response  string   `json:"response"`
	DriverID  string   `json:"assigned,omitempty"`
	TripID    string   `json:"tripId,omitempty"`
	Vehicle   *Vehicle `json:"vehicle,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

type RaceStarted struct {
	RequestID string `json:"requestId"`
	TripID    string `json:"tripId,omitempty"`
}

type RideFinished struct {
	RequestID         string    `json:"requestId"`
	EndTime           time.Time `json:"endTime"`
	TravelTimeMinutes int       `json:"travelTimeMinutes"`
	FinalPrice        float64   `json:"finalPrice"`
	IsPeakHour        bool      `json:"isPeakHour"`
	PriceMultiplier   float64   `json:"priceMultiplier"`
}

func (r FinishResult) Event() RideFinished {
	return RideFinished{
		RequestID:         r.RequestID,
		EndTime:           r.EndTime,
		TravelTimeMinutes: r.TravelTimeMinutes,
		FinalPrice:        r.FinalPrice,
		IsPeakHour:        r.IsPeakHour,
		PriceMultiplier:   r.PriceMultiplier,
	}
}
