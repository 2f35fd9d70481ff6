package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

type Provider interface {
	Name() string
	Polyline(ctx context.Context, from, to models.Coordinate) (string, error)
}

// Chain tries its providers in order and returns the first route found.
type Chain struct {
	providers []Provider
	log       logger.Logger
}

func NewChain(log logger.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, log: log}
}

func (c *Chain) Polyline(ctx context.Context, from, to models.Coordinate) (string, error) {
	ctx = wrap.WithAction(ctx, types.ActionRouteLookup)

	var errs []error
	for _, p := range c.providers {
		line, err := p.Polyline(ctx, from, to)
		if err == nil {
			return line, nil
		}
		c.log.Warn(ctx, "route provider failed", "provider", p.Name(), "error", err.Error())
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	if len(errs) == 0 {
		return "", ErrNoRoute
	}
	return "", errors.Join(errs...)
}
