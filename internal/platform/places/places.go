// Package places looks up pharmacies through the Google Places API, with an
// optional Redis cache in front of nearby searches.
package places

import (
	"context"
	"errors"
	"fmt"
	"math"

	"googlemaps.github.io/maps"
)

var ErrNotConfigured = errors.New("places provider is not configured")

// EarthRadiusKm is the mean Earth radius used for Haversine distances.
const EarthRadiusKm = 6371.0

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Photo struct {
	Reference string `json:"reference"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Place is one nearby search result.
type Place struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	Location         LatLng   `json:"location"`
	Photos           []Photo  `json:"photos"`
	OpenNow          *bool    `json:"open_now"`
	Types            []string `json:"types"`
	PriceLevel       int      `json:"price_level"`
}

type OpeningHours struct {
	OpenNow     *bool    `json:"open_now"`
	WeekdayText []string `json:"weekday_text"`
}

// Details is the detail view of one place.
type Details struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Address      string        `json:"address"`
	Phone        string        `json:"phone"`
	Website      string        `json:"website"`
	OpeningHours *OpeningHours `json:"opening_hours"`
	Photos       []Photo       `json:"photos"`
}

// Client finds pharmacies.
type Client interface {
	NearbyPharmacies(ctx context.Context, at LatLng, radiusMeters int) ([]Place, error)
	Details(ctx context.Context, placeID string) (*Details, error)
}

// DistanceKm returns the great-circle distance between a and b.
func DistanceKm(a, b LatLng) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(b.Lat - a.Lat)
	dLng := rad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// MapsAPI is the subset of the Google Maps client used here.
type MapsAPI interface {
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
	PlaceDetails(ctx context.Context, r *maps.PlaceDetailsRequest) (maps.PlaceDetailsResult, error)
}

// GoogleClient implements Client over the Places API.
type GoogleClient struct {
	api MapsAPI
}

func NewGoogleClient(apiKey string) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleClient{api: c}, nil
}

// NewGoogleClientWithAPI is used by tests to inject a fake API.
func NewGoogleClientWithAPI(api MapsAPI) *GoogleClient {
	return &GoogleClient{api: api}
}

func (g *GoogleClient) NearbyPharmacies(ctx context.Context, at LatLng, radiusMeters int) ([]Place, error) {
	resp, err := g.api.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: at.Lat, Lng: at.Lng},
		Radius:   uint(radiusMeters),
		Type:     maps.PlaceTypePharmacy,
	})
	if err != nil {
		return nil, fmt.Errorf("places nearby search: %w", err)
	}

	out := make([]Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		p := Place{
			ID:               r.PlaceID,
			Name:             r.Name,
			Address:          r.Vicinity,
			Rating:           float64(r.Rating),
			UserRatingsTotal: r.UserRatingsTotal,
			Location:         LatLng{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			Photos:           convertPhotos(r.Photos),
			Types:            r.Types,
			PriceLevel:       r.PriceLevel,
		}
		if p.Address == "" {
			p.Address = r.FormattedAddress
		}
		if r.OpeningHours != nil {
			p.OpenNow = r.OpeningHours.OpenNow
		}
		out = append(out, p)
	}
	return out, nil
}

func (g *GoogleClient) Details(ctx context.Context, placeID string) (*Details, error) {
	r, err := g.api.PlaceDetails(ctx, &maps.PlaceDetailsRequest{PlaceID: placeID})
	if err != nil {
		return nil, fmt.Errorf("place details %s: %w", placeID, err)
	}

	d := &Details{
		ID:      placeID,
		Name:    r.Name,
		Address: r.FormattedAddress,
		Phone:   r.FormattedPhoneNumber,
		Website: r.Website,
		Photos:  convertPhotos(r.Photos),
	}
	if r.OpeningHours != nil {
		d.OpeningHours = &OpeningHours{
			OpenNow:     r.OpeningHours.OpenNow,
			WeekdayText: r.OpeningHours.WeekdayText,
		}
	}
	return d, nil
}

func convertPhotos(in []maps.Photo) []Photo {
	out := make([]Photo, 0, len(in))
	for _, ph := range in {
		out = append(out, Photo{Reference: ph.PhotoReference, Width: ph.Width, Height: ph.Height})
	}
	return out
}
