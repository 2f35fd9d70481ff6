package routing

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
)

var ErrNoRoute = errors.New("no route found")

// Google asks the Directions API for a driving route.
type Google struct {
	client *maps.Client
}

// NewGoogle creates the client. Extra options are used by tests to point at a fake server.
func NewGoogle(apiKey string, opts ...maps.ClientOption) (*Google, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Google{client: client}, nil
}

func (g *Google) Name() string { return "google" }

// Polyline returns the encoded overview polyline of the first route.
func (g *Google) Polyline(ctx context.Context, from, to models.Coordinate) (string, error) {
	r := &maps.DirectionsRequest{
		Origin:      latLng(from),
		Destination: latLng(to),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := g.client.Directions(ctx, r)
	if err != nil {
		return "", fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || routes[0].OverviewPolyline.Points == "" {
		return "", ErrNoRoute
	}
	return routes[0].OverviewPolyline.Points, nil
}

func latLng(c models.Coordinate) string {
	return fmt.Sprintf("%f,%f", c.Latitude, c.Longitude)
}
