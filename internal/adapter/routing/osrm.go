package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
)

const DefaultOSRMURL = "http://router.project-osrm.org"

// OSRM queries an OSRM routing server.
type OSRM struct {
	baseURL string
	client  *http.Client
}

func NewOSRM(baseURL string, client *http.Client) *OSRM {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &OSRM{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (o *OSRM) Name() string { return "osrm" }

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

func (o *OSRM) Polyline(ctx context.Context, from, to models.Coordinate) (string, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=polyline",
		o.baseURL, from.Longitude, from.Latitude, to.Longitude, to.Latitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("osrm request: %w", err)
	}
	defer resp.Body.Close()

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("osrm decode (status %d): %w", resp.StatusCode, err)
	}
	if body.Code != "Ok" {
		return "", fmt.Errorf("osrm: %s %s", body.Code, body.Message)
	}
	if len(body.Routes) == 0 || body.Routes[0].Geometry == "" {
		return "", ErrNoRoute
	}
	return body.Routes[0].Geometry, nil
}
