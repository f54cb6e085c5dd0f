// Package places implements the place resolver: free-text place name to
// best-match geometry, with bias-box filtering and a shared result cache.
package places

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/carto/internal/geo"
	"github.com/ternarybob/carto/internal/geocache"
	"github.com/ternarybob/carto/internal/interfaces"
	"github.com/ternarybob/carto/internal/models"
	"github.com/ternarybob/carto/internal/services/nominatim"
)

// minQueryLength is the minimum trimmed query length accepted.
const minQueryLength = 2

// ErrQueryTooShort is the user-facing message for rejected queries.
const ErrQueryTooShort = "Query too short"

// Service implements the PlaceResolver interface on top of Nominatim.
type Service struct {
	client     *nominatim.Client
	cache      *geocache.Cache[*models.ToolResult]
	failureTTL time.Duration
	validate   *validator.Validate
	logger     arbor.ILogger
}

// NewService creates a place resolver sharing the given result cache.
func NewService(client *nominatim.Client, cache *geocache.Cache[*models.ToolResult], failureTTL time.Duration, logger arbor.ILogger) *Service {
	if failureTTL <= 0 {
		failureTTL = geocache.DefaultFailureTTL
	}
	return &Service{
		client:     client,
		cache:      cache,
		failureTTL: failureTTL,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Resolve executes a geocoding lookup. All failure modes are folded into
// the ToolResult failure variant; upstream failures are cached with the
// short failure TTL so retry storms are dampened without delaying recovery.
func (s *Service) Resolve(ctx context.Context, query models.PlaceQuery) *models.ToolResult {
	q := query.Normalized()
	key := q.CacheKey()

	if cached, ok := s.cache.Get(key); ok {
		s.logger.Debug().Str("query", q.Query).Msg("Place lookup served from cache")
		return cached
	}

	// Validation failures are negative-cached with the default TTL: no
	// network cost, but it keeps repeated bad calls off the hot path.
	if len(q.Query) < minQueryLength {
		result := models.FailureResult(ErrQueryTooShort)
		s.cache.Set(key, result)
		return result
	}
	if err := s.validate.Struct(q); err != nil {
		result := models.FailureResult("invalid place query: " + err.Error())
		s.cache.Set(key, result)
		return result
	}

	req := nominatim.SearchRequest{
		Query:          q.Query,
		Limit:          q.Limit,
		CountryCodes:   q.CountryCodes,
		Locale:         q.Locale,
		PolygonGeoJSON: *q.PreferPolygon,
	}
	if q.Bias != nil {
		box := geo.BoxAround(q.Bias.Lat, q.Bias.Lon, q.Bias.RadiusKm)
		req.ViewBox = &nominatim.ViewBox{
			MinLon: box.MinLon, MinLat: box.MinLat,
			MaxLon: box.MaxLon, MaxLat: box.MaxLat,
		}
	}

	rows, err := s.client.Search(ctx, req)
	if err != nil {
		var result *models.ToolResult
		if code, ok := nominatim.StatusCode(err); ok {
			result = models.FailureStatusResult("geocoding lookup failed: "+err.Error(), code)
		} else {
			result = models.FailureResult("geocoding lookup failed: " + err.Error())
		}
		s.cache.SetWithTTL(key, result, s.failureTTL)
		s.logger.Warn().Err(err).Str("query", q.Query).Msg("Place lookup failed")
		return result
	}

	collection := normalizeRows(rows, *q.PreferPolygon)
	result := models.SuccessResult(models.SourceNominatim, collection)
	s.cache.Set(key, result)

	s.logger.Info().
		Str("query", q.Query).
		Int("features", len(collection.Features)).
		Msg("Place lookup completed")
	return result
}

// normalizeRows projects provider rows into the fixed Feature schema. A row
// contributes its native polygon when present and requested, else a point
// from its lon/lat pair; rows with unparseable coordinates and no polygon
// are dropped.
func normalizeRows(rows []nominatim.SearchResult, preferPolygon bool) *models.FeatureCollection {
	collection := models.NewFeatureCollection()
	for _, row := range rows {
		geometry := rowGeometry(row, preferPolygon)
		if geometry == nil {
			continue
		}
		collection.Append(models.NewFeature(geometry, map[string]any{
			"source":       models.SourceNominatim,
			"display_name": row.DisplayName,
			"name":         row.Name,
			"category":     row.Category,
			"type":         row.Type,
			"importance":   row.Importance,
			"osm_type":     row.OSMType,
			"osm_id":       row.OSMID,
			"place_id":     row.PlaceID,
		}))
	}
	return collection
}

func rowGeometry(row nominatim.SearchResult, preferPolygon bool) *models.Geometry {
	if preferPolygon && row.GeoJSON != nil {
		// Malformed provider polygons fall through to the point path.
		switch row.GeoJSON.Type {
		case models.GeometryPolygon:
			if _, err := row.GeoJSON.Rings(); err == nil {
				return row.GeoJSON
			}
		case models.GeometryMultiPolygon:
			if _, err := row.GeoJSON.Polygons(); err == nil {
				return row.GeoJSON
			}
		}
	}
	coord, err := row.Coordinate()
	if err != nil {
		return nil
	}
	return models.NewPoint(coord[0], coord[1])
}

// Ensure Service implements the PlaceResolver interface
var _ interfaces.PlaceResolver = (*Service)(nil)
