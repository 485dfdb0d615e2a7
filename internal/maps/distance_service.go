package maps

import (
	"context"
	"fmt"
	"math"

	"googlemaps.github.io/maps"
)

const metersPerMile = 1609.34

// Trip is a resolved driving distance between two free-text locations.
type Trip struct {
	Miles               float64
	ResolvedOrigin      string
	ResolvedDestination string
}

// DistanceService handles interactions with the Google Distance Matrix API.
type DistanceService struct {
	client *maps.Client
}

// NewDistanceService creates a new DistanceService with the given API Key.
func NewDistanceService(apiKey string) (*DistanceService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &DistanceService{client: client}, nil
}

// Distance returns driving miles (one decimal) and Google's canonical addresses.
func (s *DistanceService) Distance(ctx context.Context, origin, destination string) (Trip, error) {
	r := &maps.DistanceMatrixRequest{
		Origins:      []string{origin},
		Destinations: []string{destination},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsImperial,
	}

	resp, err := s.client.DistanceMatrix(ctx, r)
	if err != nil {
		return Trip{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return Trip{}, fmt.Errorf("no route found")
	}

	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return Trip{}, fmt.Errorf("element status %s for %q -> %q", el.Status, origin, destination)
	}

	return Trip{
		Miles:               milesFromMeters(el.Distance.Meters),
		ResolvedOrigin:      first(resp.OriginAddresses),
		ResolvedDestination: first(resp.DestinationAddresses),
	}, nil
}

func milesFromMeters(m int) float64 {
	return math.Round(float64(m)/metersPerMile*10) / 10
}

func first(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}
