package wrap

import (
	"context"
)

// Error attaches the LogCtx of ctx to err. Wrapping twice keeps both layers,
// ErrorCtx reports the outer one.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &errorWithLogCtx{
		err:    err,
		logCtx: fromCtx(ctx),
	}
}
