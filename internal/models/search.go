package models

import (
	"fmt"
	"math"
	"strings"
)

// Default and boundary values for search queries.
const (
	PlaceLimitMax         = 10
	RecommendLimitDefault = 10
	RecommendLimitMax     = 20
	RecommendRadiusMin    = 1.0
	RecommendRadiusMax    = 5.0
	DefaultBiasRadius     = 2.0 // km
	DefaultPOIQuery       = "restaurants"
)

// Bias is an optional search bias: a center point plus a radius in
// kilometers that is translated into a hard bounding-box filter.
type Bias struct {
	Lat      float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon      float64 `json:"lon" validate:"gte=-180,lte=180"`
	RadiusKm float64 `json:"radius_km" validate:"gte=0"`
}

// PlaceQuery is the immutable input of a Place Resolver call.
type PlaceQuery struct {
	Query         string `json:"query" validate:"required"`
	Limit         int    `json:"limit,omitempty"`
	CountryCodes  string `json:"country_codes,omitempty"`
	PreferPolygon *bool  `json:"prefer_polygon,omitempty"`
	Locale        string `json:"locale,omitempty"`
	Bias          *Bias  `json:"bias,omitempty"`
}

// Normalized returns a copy with defaults applied: trimmed query, limit
// clamped to [1,10], polygon preference defaulting to true, and the bias
// radius defaulting to 2 km.
func (q PlaceQuery) Normalized() PlaceQuery {
	q.Query = strings.TrimSpace(q.Query)
	q.Limit = clampInt(q.Limit, 1, PlaceLimitMax)
	if q.PreferPolygon == nil {
		t := true
		q.PreferPolygon = &t
	}
	if q.Bias != nil {
		b := *q.Bias
		if b.RadiusKm <= 0 {
			b.RadiusKm = DefaultBiasRadius
		}
		q.Bias = &b
	}
	return q
}

// CacheKey builds the canonical cache key for the query. Bias coordinates
// are rounded to 4 decimal degrees and the radius to 0.1 km so repeated
// calls with float-precision noise in "the same" center still hit.
func (q PlaceQuery) CacheKey() string {
	n := q.Normalized()
	bias := "-"
	if n.Bias != nil {
		bias = fmt.Sprintf("%.4f,%.4f,%.1f", n.Bias.Lat, n.Bias.Lon, n.Bias.RadiusKm)
	}
	return fmt.Sprintf("place|%s|%d|%s|%t|%s|%s",
		strings.ToLower(n.Query), n.Limit, strings.ToLower(n.CountryCodes),
		*n.PreferPolygon, strings.ToLower(n.Locale), bias)
}

// RecommendQuery is the immutable input of a Chained Recommendation
// Resolver call: resolve a place, then search for POIs around it.
type RecommendQuery struct {
	Place     string   `json:"place" validate:"required"`
	Query     string   `json:"query,omitempty"`
	RadiusKm  float64  `json:"radius_km,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	MinRating *float64 `json:"min_rating,omitempty" validate:"omitempty,gte=0,lte=10"`
}

// Normalized returns a copy with defaults applied: query defaulting to
// "restaurants", radius defaulting to 2 km and clamped to [1,5], limit
// defaulting to 10 and clamped to [1,20].
func (q RecommendQuery) Normalized() RecommendQuery {
	q.Place = strings.TrimSpace(q.Place)
	if strings.TrimSpace(q.Query) == "" {
		q.Query = DefaultPOIQuery
	}
	if q.RadiusKm == 0 {
		q.RadiusKm = DefaultBiasRadius
	}
	q.RadiusKm = math.Min(math.Max(q.RadiusKm, RecommendRadiusMin), RecommendRadiusMax)
	if q.Limit == 0 {
		q.Limit = RecommendLimitDefault
	}
	q.Limit = clampInt(q.Limit, 1, RecommendLimitMax)
	return q
}

// CacheKey builds the canonical cache key for the query.
func (q RecommendQuery) CacheKey() string {
	n := q.Normalized()
	rating := "-"
	if n.MinRating != nil {
		rating = fmt.Sprintf("%.1f", *n.MinRating)
	}
	return fmt.Sprintf("recommend|%s|%s|%.1f|%d|%s",
		strings.ToLower(n.Place), strings.ToLower(n.Query), n.RadiusKm, n.Limit, rating)
}

// NearbyCategory values accepted by the category-based POI provider.
const (
	CategoryHotels      = "hotels"
	CategoryRestaurants = "restaurants"
	CategoryAttractions = "attractions"
)

// NearbyQuery is the input of a category-based nearby search against the
// secondary POI provider.
type NearbyQuery struct {
	Lat      float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon      float64 `json:"lon" validate:"gte=-180,lte=180"`
	Category string  `json:"category" validate:"required,oneof=hotels restaurants attractions"`
	RadiusKm float64 `json:"radius_km,omitempty"`
}

// CacheKey builds the canonical cache key for the query.
func (q NearbyQuery) CacheKey() string {
	radius := q.RadiusKm
	if radius <= 0 {
		radius = DefaultBiasRadius
	}
	return fmt.Sprintf("nearby|%.4f,%.4f|%s|%.1f", q.Lat, q.Lon, strings.ToLower(q.Category), radius)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
