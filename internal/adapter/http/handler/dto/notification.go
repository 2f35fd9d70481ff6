package dto

import (
	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/pkg/validator"
)

type PushReq struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

func (r *PushReq) Validate(v *validator.Validator) {
	v.Check(r.Token != "", "token", "must be provided")
	v.Check(r.Title != "", "title", "must be provided")
	v.Check(r.Body != "", "body", "must be provided")
}

func (r *PushReq) ToModel() models.Push {
	return models.Push{Token: r.Token, Title: r.Title, Body: r.Body, Data: r.Data}
}

type BulkPushReq struct {
	Tokens []string          `json:"tokens"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data"`
}

func (r *BulkPushReq) Validate(v *validator.Validator) {
	v.Check(len(r.Tokens) > 0, "tokens", "must contain at least one token")
	v.Check(r.Title != "", "title", "must be provided")
	v.Check(r.Body != "", "body", "must be provided")
}

func (r *BulkPushReq) ToModel() models.BulkPush {
	return models.BulkPush{Tokens: r.Tokens, Title: r.Title, Body: r.Body, Data: r.Data}
}
