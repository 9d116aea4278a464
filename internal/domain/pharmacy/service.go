package pharmacy

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/places"
)

type Service struct {
	client places.Client
	logger zerolog.Logger
}

// NewService builds the locator. A nil client makes every lookup fail with
// places.ErrNotConfigured.
func NewService(client places.Client, logger zerolog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

func (s *Service) Nearby(ctx context.Context, lat, lng float64, radius int) (*SearchResult, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, envelope.Invalidf("latitude must be within ±90 and longitude within ±180")
	}
	if radius < 1 || radius > MaxRadiusMeters {
		return nil, envelope.Invalidf("radius must be between 1 and %d meters", MaxRadiusMeters)
	}
	if s.client == nil {
		return nil, places.ErrNotConfigured
	}

	origin := places.LatLng{Lat: lat, Lng: lng}
	found, err := s.client.NearbyPharmacies(ctx, origin, radius)
	if err != nil {
		return nil, err
	}

	out := make([]Pharmacy, 0, len(found))
	for _, p := range found {
		out = append(out, Pharmacy{Place: p, DistanceKm: round2(places.DistanceKm(origin, p.Location))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })

	s.logger.Debug().Int("radius", radius).Int("found", len(out)).Msg("pharmacy search")
	return &SearchResult{
		Pharmacies:     out,
		SearchLocation: SearchLocation{Latitude: lat, Longitude: lng},
		TotalFound:     len(out),
	}, nil
}

func (s *Service) Details(ctx context.Context, placeID string) (*places.Details, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, envelope.Invalidf("place_id required")
	}
	if s.client == nil {
		return nil, places.ErrNotConfigured
	}
	return s.client.Details(ctx, placeID)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
