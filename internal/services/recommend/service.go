// Package recommend implements the chained recommendation resolver: a place
// name is resolved to a geometry, collapsed to a centroid, and used as the
// center of a radius-bounded POI search. The resolved place's original
// geometry is kept as a synthetic search-center feature so polygons stay
// visible alongside POI pins.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/carto/internal/geo"
	"github.com/ternarybob/carto/internal/geocache"
	"github.com/ternarybob/carto/internal/interfaces"
	"github.com/ternarybob/carto/internal/models"
	"github.com/ternarybob/carto/internal/services/foursquare"
)

// SearchCenterCategory tags the synthetic first feature of a chained result.
const SearchCenterCategory = "search-center"

// Service implements the RecommendService interface.
type Service struct {
	resolver   interfaces.PlaceResolver
	poi        *foursquare.Client
	cache      *geocache.Cache[*models.ToolResult]
	failureTTL time.Duration
	logger     arbor.ILogger
}

// NewService creates a chained recommendation resolver.
func NewService(resolver interfaces.PlaceResolver, poi *foursquare.Client, cache *geocache.Cache[*models.ToolResult], failureTTL time.Duration, logger arbor.ILogger) *Service {
	if failureTTL <= 0 {
		failureTTL = geocache.DefaultFailureTTL
	}
	return &Service{
		resolver:   resolver,
		poi:        poi,
		cache:      cache,
		failureTTL: failureTTL,
		logger:     logger,
	}
}

// Recommend resolves the place, reduces it to a centroid, and searches for
// POIs around it. The centroid-resolution step strictly precedes the nearby
// search; a failure in either step is fatal to the call.
func (s *Service) Recommend(ctx context.Context, query models.RecommendQuery) *models.ToolResult {
	q := query.Normalized()
	key := q.CacheKey()

	if cached, ok := s.cache.Get(key); ok {
		s.logger.Debug().Str("place", q.Place).Msg("Recommendation served from cache")
		return cached
	}

	placeResult := s.resolver.Resolve(ctx, models.PlaceQuery{Query: q.Place, Limit: 1})
	if !placeResult.OK || placeResult.Collection == nil || len(placeResult.Collection.Features) == 0 {
		result := models.FailureResult(fmt.Sprintf("could not locate place %q", q.Place))
		s.cache.SetWithTTL(key, result, s.failureTTL)
		return result
	}

	center := placeResult.Collection.Features[0]
	centroid, ok := geo.Centroid(center.Geometry)
	if !ok {
		result := models.FailureResult(fmt.Sprintf("no usable centroid for place %q", q.Place))
		s.cache.SetWithTTL(key, result, s.failureTTL)
		return result
	}

	rows, err := s.poi.SearchNearby(ctx, foursquare.SearchRequest{
		Lat:          centroid[1],
		Lon:          centroid[0],
		RadiusMeters: int(q.RadiusKm * 1000),
		Limit:        q.Limit,
		Query:        q.Query,
	})
	if err != nil {
		var result *models.ToolResult
		if code, ok := foursquare.StatusCode(err); ok {
			result = models.FailureStatusResult("nearby search failed: "+err.Error(), code)
			s.cache.SetWithTTL(key, result, s.failureTTL)
		} else if errors.Is(err, foursquare.ErrMissingAPIKey) {
			// Config state, not a transient upstream condition: surfaced
			// immediately and not cached so a fixed key takes effect at once.
			result = models.FailureResult(err.Error())
		} else {
			result = models.FailureResult("nearby search failed: " + err.Error())
			s.cache.SetWithTTL(key, result, s.failureTTL)
		}
		s.logger.Warn().Err(err).Str("place", q.Place).Msg("Nearby search failed")
		return result
	}

	collection := normalizePOIRows(rows)
	if q.MinRating != nil {
		collection = filterByRating(collection, *q.MinRating)
	}

	// The search center carries the place's original geometry, not the
	// centroid, so a resolved polygon still renders under the POI pins.
	collection.Prepend(models.NewFeature(center.Geometry, map[string]any{
		"source":       models.SourceNominatim,
		"category":     SearchCenterCategory,
		"display_name": center.Properties["display_name"],
	}))

	result := models.SuccessResult(models.SourcePOI, collection)
	s.cache.Set(key, result)

	s.logger.Info().
		Str("place", q.Place).
		Str("query", q.Query).
		Int("features", len(collection.Features)).
		Msg("Recommendation completed")
	return result
}

// normalizePOIRows projects provider rows into Point features. Rows without
// a main geocode are skipped rather than failing the batch.
func normalizePOIRows(rows []foursquare.Place) *models.FeatureCollection {
	collection := models.NewFeatureCollection()
	for _, row := range rows {
		if row.Geocodes == nil || row.Geocodes.Main == nil {
			continue
		}
		props := map[string]any{
			"source":       "foursquare",
			"id":           row.FsqID,
			"display_name": row.Name,
			"categories":   categoryNames(row.Categories),
		}
		if row.Location != nil && row.Location.FormattedAddress != "" {
			props["address"] = row.Location.FormattedAddress
		}
		if row.Distance > 0 {
			props["distance"] = row.Distance
		}
		if row.Rating != nil {
			props["rating"] = *row.Rating
		}
		collection.Append(models.NewFeature(
			models.NewPoint(row.Geocodes.Main.Longitude, row.Geocodes.Main.Latitude), props))
	}
	return collection
}

// filterByRating keeps features whose rating meets the threshold. Features
// lacking a rating property do not meet any threshold and are dropped.
func filterByRating(collection *models.FeatureCollection, minRating float64) *models.FeatureCollection {
	filtered := models.NewFeatureCollection()
	for _, f := range collection.Features {
		rating, ok := f.Properties["rating"].(float64)
		if !ok || rating < minRating {
			continue
		}
		filtered.Append(f)
	}
	return filtered
}

func categoryNames(categories []foursquare.Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}

// Ensure Service implements the RecommendService interface
var _ interfaces.RecommendService = (*Service)(nil)
