package auth

import "github.com/Temutjin2k/ride-dispatch/internal/domain/types"

var (
	ErrInvalidToken  = &types.Error{Kind: types.KindAuthentication, Message: "invalid token"}
	ErrExpiredToken  = &types.Error{Kind: types.KindAuthentication, Message: "expired token"}
	ErrInvalidAPIKey = types.NewForbidden("invalid api key")
)
