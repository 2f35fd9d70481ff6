package dto

import (
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/pkg/validator"
)

type TrackingReq struct {
	ID           string           `json:"id"`
	Created      *time.Time       `json:"created"`
	StartTime    *time.Time       `json:"startTime"`
	EndTime      *time.Time       `json:"endTime"`
	Status       string           `json:"status"`
	Position     *models.Position `json:"position"`
	Vehicle      *models.Vehicle  `json:"vehicle"`
	ClassVehicle string           `json:"classVehicle"`
}

// Validate checks the fields every write needs. Creation also needs id and class.
func (r *TrackingReq) Validate(v *validator.Validator, creating bool) {
	if creating {
		v.Check(r.ID != "", "id", "must be provided")
		v.Check(r.ClassVehicle != "", "classVehicle", "must be provided")
	}
	v.Check(r.Created != nil, "created", "must be provided")
	v.Check(r.StartTime != nil, "startTime", "must be provided")
	v.Check(r.Status != "", "status", "must be provided")
	v.Check(r.Vehicle != nil, "vehicle", "must be provided")

	if r.Position == nil {
		v.AddError("position", "must be provided")
		return
	}
	v.Check(r.Position.Latitude >= -90 && r.Position.Latitude <= 90, "position.latitude", "must be between -90 and 90")
	v.Check(r.Position.Longitude >= -180 && r.Position.Longitude <= 180, "position.longitude", "must be between -180 and 180")
}

func (r *TrackingReq) ToModel() models.Tracking {
	t := models.Tracking{
		ID:           r.ID,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Status:       r.Status,
		Position:     r.Position,
		Vehicle:      r.Vehicle,
		ClassVehicle: r.ClassVehicle,
	}
	if r.Created != nil {
		t.Created = *r.Created
	}
	return t
}
