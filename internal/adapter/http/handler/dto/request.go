package dto

import (
	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/pkg/validator"
)

type CreateRequestReq struct {
	DriverID      string               `json:"driverId"`
	RequestID     string               `json:"requestId"`
	DocumentID    string               `json:"documentId"`
	DriverDetails models.DriverDetails `json:"driverDetails"`
}

func (r *CreateRequestReq) Validate(v *validator.Validator) {
	v.Check(r.DriverID != "", "driverId", "must be provided")
	v.Check(r.RequestID != "", "requestId", "must be provided")
	v.Check(r.DocumentID != "", "documentId", "must be provided")
}

func (r *CreateRequestReq) ToInput() models.CreateRequestInput {
	return models.CreateRequestInput{
		RequestID:     r.RequestID,
		DriverID:      r.DriverID,
		DocumentID:    r.DocumentID,
		DriverDetails: r.DriverDetails,
	}
}

type AcceptReq struct {
	DriverID string          `json:"driverId"`
	TripID   string          `json:"tripId"`
	Vehicle  *models.Vehicle `json:"vehicle"`
}

func (r *AcceptReq) Validate(v *validator.Validator) {
	v.Check(r.DriverID != "", "driverId", "must be provided")
}

func (r *AcceptReq) ToInput() models.AcceptInput {
	return models.AcceptInput{DriverID: r.DriverID, TripID: r.TripID, Vehicle: r.Vehicle}
}

type CancelReq struct {
	Reason string `json:"reason"`
}

type StartReq struct {
	VehicleID string `json:"vehicleId"`
}

type FinishReq struct {
	CorrectPosition *models.Coordinate `json:"correctPosition"`
}

func (r *FinishReq) Validate(v *validator.Validator) {
	v.Check(r.CorrectPosition != nil, "correctPosition", "must be provided")
}
