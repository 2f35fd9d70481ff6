package dto

import (
	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/validator"
)

type PeakHourConfigReq struct {
	Country      string  `json:"country"`
	Province     string  `json:"province"`
	Municipality string  `json:"municipality"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	PricePerHour float64 `json:"pricePerHour"`
	Status       string  `json:"status"`
}

func (r *PeakHourConfigReq) ToModel() models.PeakHourConfig {
	return models.PeakHourConfig{
		Location: models.Location{
			Country:      r.Country,
			Province:     r.Province,
			Municipality: r.Municipality,
		},
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		PricePerHour: r.PricePerHour,
		Status:       types.ConfigStatus(r.Status),
	}
}

type VehicleClassReq struct {
	ID             string  `json:"id"`
	Description    string  `json:"description"`
	Designation    string  `json:"designation"`
	BasePrice      float64 `json:"basePrice"`
	BasePriceMin   float64 `json:"basePriceMin"`
	BasePricePerKm float64 `json:"basePricePerKm"`
	Passengers     int     `json:"passengers"`
	IconCategory   string  `json:"iconCategory"`
	IconMap        string  `json:"iconMap"`
	Percentage     float64 `json:"percentage"`
	TarifaBase     float64 `json:"tarifaBase"`
	IsDefault      bool    `json:"isDefault"`
}

func (r *VehicleClassReq) Validate(v *validator.Validator) {
	v.Check(r.ID != "", "id", "must be provided")
	v.Check(r.BasePrice >= 0, "basePrice", "must not be negative")
	v.Check(r.BasePriceMin >= 0, "basePriceMin", "must not be negative")
	v.Check(r.BasePricePerKm >= 0, "basePricePerKm", "must not be negative")
	v.Check(r.Passengers >= 0, "passengers", "must not be negative")
	v.Check(r.TarifaBase >= 0 && r.TarifaBase <= 100, "tarifaBase", "must be between 0 and 100")
}

func (r *VehicleClassReq) ToModel() models.VehicleClass {
	return models.VehicleClass{
		ID:             r.ID,
		Description:    r.Description,
		Designation:    r.Designation,
		BasePrice:      r.BasePrice,
		BasePriceMin:   r.BasePriceMin,
		BasePricePerKm: r.BasePricePerKm,
		Passengers:     r.Passengers,
		IconCategory:   r.IconCategory,
		IconMap:        r.IconMap,
		Percentage:     r.Percentage,
		TarifaBase:     r.TarifaBase,
		IsDefault:      r.IsDefault,
	}
}
