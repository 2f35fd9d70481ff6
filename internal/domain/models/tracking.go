package models

import "time"

type VehicleDriver struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Vehicle describes a tracked car and optionally who is driving it.
type Vehicle struct {
	ID           string         `json:"id,omitempty"`
	Brand        string         `json:"brand,omitempty"`
	Model        string         `json:"model,omitempty"`
	Color        string         `json:"color,omitempty"`
	Registration string         `json:"registration,omitempty"`
	Year         int            `json:"year,omitempty"`
	Driver       *VehicleDriver `json:"driver,omitempty"`
}

// DriverID returns the id of the driver in the descriptor, if any.
func (v *Vehicle) DriverID() string {
	if v == nil || v.Driver == nil {
		return ""
	}
	return v.Driver.ID
}

// Tracking is the last known telemetry of one vehicle.
type Tracking struct {
	ID           string     `json:"id"`
	Created      time.Time  `json:"created"`
	StartTime    *time.Time `json:"startTime,omitempty"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	Status       string     `json:"status,omitempty"`
	Position     *Position  `json:"position,omitempty"`
	Vehicle      *Vehicle   `json:"vehicle,omitempty"`
	ClassVehicle string     `json:"classVehicle,omitempty"`
	Heading      float64    `json:"heading"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TrackingUpdate is the full snapshot pushed on every registry change.
type TrackingUpdate struct {
	Type      string     `json:"type"`
	Trackings []Tracking `json:"trackings"`
}
