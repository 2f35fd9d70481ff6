package models

import (
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

// PeakHourConfig is a demand pricing window for one location.
// StartTime and EndTime are "HH:MM" and compared as strings.
type PeakHourConfig struct {
	Location
	StartTime    string             `json:"startTime"`
	EndTime      string             `json:"endTime"`
	PricePerHour float64            `json:"pricePerHour"`
	Status       types.ConfigStatus `json:"status"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

func (c PeakHourConfig) Active() bool {
	return c.Status == types.ConfigActive
}

type VehicleClass struct {
	ID             string  `json:"id"`
	Description    string  `json:"description"`
	Designation    string  `json:"designation"`
	BasePrice      float64 `json:"basePrice"`
	BasePriceMin   float64 `json:"basePriceMin"`
	BasePricePerKm float64 `json:"basePricePerKm"`
	Passengers     int     `json:"passengers"`
	IconCategory   string  `json:"iconCategory,omitempty"`
	IconMap        string  `json:"iconMap,omitempty"`
	Percentage     float64 `json:"percentage"`
	TarifaBase     float64 `json:"tarifaBase"`
	IsDefault      bool    `json:"isDefault"`
}

// Quote is the outcome of applying peak pricing to a base price.
type Quote struct {
	BasePrice  float64 `json:"basePrice"`
	FinalPrice float64 `json:"finalPrice"`
	Multiplier float64 `json:"multiplier"`
	IsPeakHour bool    `json:"isPeakHour"`
}

type PeakStatus struct {
	IsPeakHour  bool             `json:"isPeakHour"`
	CurrentTime string           `json:"currentTime"`
	Config      *PeakHourConfig  `json:"config"`
	AllConfigs  []PeakHourConfig `json:"allConfigs"`
}

// PeakHourChanged is broadcast when a location enters or leaves its window.
type PeakHourChanged struct {
	Country      string    `json:"country"`
	Province     string    `json:"province"`
	Municipality string    `json:"municipality"`
	IsPeakHour   bool      `json:"isPeakHour"`
	Timestamp    time.Time `json:"timestamp"`

	UpdateResult *RepriceResult `json:"updateResult,omitempty"`
}

// RepriceResult reports how many started races took the new multiplier.
type RepriceResult struct {
	Success bool   `json:"success"`
	Updated int64  `json:"updated"`
	Error   string `json:"error,omitempty"`
}

type ChangeOp string

const (
	ChangeUpsert ChangeOp = "upsert"
	ChangeDelete ChangeOp = "delete"
)

// ConfigChange notifies other instances that pricing reference data changed.
type ConfigChange struct {
	Op           ChangeOp        `json:"op"`
	PeakHour     *PeakHourConfig `json:"peakHour,omitempty"`
	VehicleClass *VehicleClass   `json:"vehicleClass,omitempty"`
	Origin       string          `json:"origin"`
}
