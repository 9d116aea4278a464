package pharmacy

import "github.com/bptrack/bptrack/internal/platform/places"

const (
	DefaultRadiusMeters = 5000
	MaxRadiusMeters     = 50000
)

// Pharmacy is a nearby search result with its distance from the search point.
type Pharmacy struct {
	places.Place
	DistanceKm float64 `json:"distance_km"`
}

type SearchLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SearchResult lists pharmacies nearest first.
type SearchResult struct {
	Pharmacies     []Pharmacy     `json:"pharmacies"`
	SearchLocation SearchLocation `json:"search_location"`
	TotalFound     int            `json:"total_found"`
}

type DetailsRequest struct {
	PlaceID string `json:"place_id"`
}
