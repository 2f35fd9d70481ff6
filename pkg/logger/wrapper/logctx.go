package wrap

import (
	"context"
)

type (
	// LogCtx holds contextual information for logging
	LogCtx struct {
		Action    string
		UserID    string
		RequestID string // http request id
		RideID    string // ride request id
		DriverID  string
	}

	logCtxKeyStruct struct{}
)

var LogCtxKey = &logCtxKeyStruct{}

func fromCtx(ctx context.Context) LogCtx {
	lc, _ := ctx.Value(LogCtxKey).(LogCtx)
	return lc
}

// WithLogCtx merges the non-empty fields of newLc into the context's LogCtx.
func WithLogCtx(ctx context.Context, newLc LogCtx) context.Context {
	lc := fromCtx(ctx)
	if newLc.Action != "" {
		lc.Action = newLc.Action
	}
	if newLc.UserID != "" {
		lc.UserID = newLc.UserID
	}
	if newLc.RequestID != "" {
		lc.RequestID = newLc.RequestID
	}
	if newLc.RideID != "" {
		lc.RideID = newLc.RideID
	}
	if newLc.DriverID != "" {
		lc.DriverID = newLc.DriverID
	}
	return context.WithValue(ctx, LogCtxKey, lc)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	lc := fromCtx(ctx)
	lc.UserID = userID
	return context.WithValue(ctx, LogCtxKey, lc)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	lc := fromCtx(ctx)
	lc.RequestID = requestID
	return context.WithValue(ctx, LogCtxKey, lc)
}

func WithRideID(ctx context.Context, rideID string) context.Context {
	lc := fromCtx(ctx)
	lc.RideID = rideID
	return context.WithValue(ctx, LogCtxKey, lc)
}

func WithDriverID(ctx context.Context, driverID string) context.Context {
	lc := fromCtx(ctx)
	lc.DriverID = driverID
	return context.WithValue(ctx, LogCtxKey, lc)
}

func WithAction(ctx context.Context, action string) context.Context {
	lc := fromCtx(ctx)
	lc.Action = action
	return context.WithValue(ctx, LogCtxKey, lc)
}

// RequestIDFrom returns the http request id stored in ctx.
func RequestIDFrom(ctx context.Context) string {
	return fromCtx(ctx).RequestID
}
