package tripadvisor

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/carto/internal/geocache"
	"github.com/ternarybob/carto/internal/interfaces"
	"github.com/ternarybob/carto/internal/models"
)

// fallbackBiasRadius bounds the viewbox used when geocoding a POI address:
// the address should resolve near the nearby-search center.
const fallbackBiasRadius = 5.0 // km

// AddressGeocoder resolves a free-text address to a [lon, lat] coordinate.
// A (nil, nil) return means no match; the caller skips that row.
type AddressGeocoder interface {
	GeocodeOnce(ctx context.Context, address string, bias *models.Bias) ([]float64, error)
}

// Service implements the NearbyService interface. POI rows lacking
// coordinates are geocoded from their address through a dedicated 24-hour
// address cache; uncached geocodes are spaced out by the pause limiter to
// honor the geocoder's free-tier rate limit.
type Service struct {
	client       *Client
	geocoder     AddressGeocoder
	resultCache  *geocache.Cache[*models.ToolResult]
	addressCache *geocache.Cache[[]float64]
	pause        *rate.Limiter
	failureTTL   time.Duration
	validate     *validator.Validate
	logger       arbor.ILogger
}

// NewService creates a category-based nearby service.
func NewService(
	client *Client,
	geocoder AddressGeocoder,
	resultCache *geocache.Cache[*models.ToolResult],
	addressCache *geocache.Cache[[]float64],
	geocodePause time.Duration,
	failureTTL time.Duration,
	logger arbor.ILogger,
) *Service {
	if geocodePause <= 0 {
		geocodePause = 1100 * time.Millisecond
	}
	if failureTTL <= 0 {
		failureTTL = geocache.DefaultFailureTTL
	}
	return &Service{
		client:       client,
		geocoder:     geocoder,
		resultCache:  resultCache,
		addressCache: addressCache,
		pause:        rate.NewLimiter(rate.Every(geocodePause), 1),
		failureTTL:   failureTTL,
		validate:     validator.New(),
		logger:       logger,
	}
}

// NearbyByCategory searches for POIs of a fixed category around a center.
// The per-row fallback geocoding is sequential by construction; rows that
// cannot be located are dropped without failing the batch.
func (s *Service) NearbyByCategory(ctx context.Context, query models.NearbyQuery) *models.ToolResult {
	if err := s.validate.Struct(query); err != nil {
		return models.FailureResult("invalid nearby query: " + err.Error())
	}

	key := query.CacheKey()
	if cached, ok := s.resultCache.Get(key); ok {
		s.logger.Debug().Str("category", query.Category).Msg("Nearby lookup served from cache")
		return cached
	}

	radius := query.RadiusKm
	if radius <= 0 {
		radius = models.DefaultBiasRadius
	}

	rows, err := s.client.NearbySearch(ctx, query.Lat, query.Lon, query.Category, radius)
	if err != nil {
		if errors.Is(err, ErrMissingAPIKey) {
			return models.FailureResult(err.Error())
		}
		var result *models.ToolResult
		if code, ok := StatusCode(err); ok {
			result = models.FailureStatusResult("nearby search failed: "+err.Error(), code)
		} else {
			result = models.FailureResult("nearby search failed: " + err.Error())
		}
		s.resultCache.SetWithTTL(key, result, s.failureTTL)
		s.logger.Warn().Err(err).Str("category", query.Category).Msg("Nearby search failed")
		return result
	}

	bias := &models.Bias{Lat: query.Lat, Lon: query.Lon, RadiusKm: fallbackBiasRadius}
	collection := models.NewFeatureCollection()
	for _, row := range rows {
		coord := s.rowCoordinate(ctx, row, bias)
		if coord == nil {
			continue
		}
		props := map[string]any{
			"source":       "tripadvisor",
			"id":           row.LocationID,
			"display_name": row.Name,
			"category":     query.Category,
		}
		if row.AddressObj != nil && row.AddressObj.AddressString != "" {
			props["address"] = row.AddressObj.AddressString
		}
		if row.Distance != "" {
			props["distance"] = row.Distance
		}
		collection.Append(models.NewFeature(models.NewPoint(coord[0], coord[1]), props))
	}

	result := models.SuccessResult(models.SourcePOI, collection)
	s.resultCache.Set(key, result)

	s.logger.Info().
		Str("category", query.Category).
		Int("rows", len(rows)).
		Int("features", len(collection.Features)).
		Msg("Nearby lookup completed")
	return result
}

// rowCoordinate resolves a row to [lon, lat]: native coordinates first,
// then the cached fallback geocoder. The pause applies only to genuinely
// fresh lookups; cache hits cost nothing.
func (s *Service) rowCoordinate(ctx context.Context, row LocationRow, bias *models.Bias) []float64 {
	if lat, err := strconv.ParseFloat(row.Latitude, 64); err == nil {
		if lon, err := strconv.ParseFloat(row.Longitude, 64); err == nil {
			return []float64{lon, lat}
		}
	}

	if row.AddressObj == nil || row.AddressObj.AddressString == "" {
		return nil
	}
	address := row.AddressObj.AddressString

	if coord, ok := s.addressCache.Get(address); ok {
		return coord
	}

	if err := s.pause.Wait(ctx); err != nil {
		return nil
	}
	coord, err := s.geocoder.GeocodeOnce(ctx, address, bias)
	if err != nil || coord == nil {
		s.logger.Debug().Str("address", address).Msg("Fallback geocode found no match, skipping row")
		return nil
	}

	s.addressCache.SetWithTTL(address, coord, geocache.AddressTTL)
	return coord
}

// Ensure Service implements the NearbyService interface
var _ interfaces.NearbyService = (*Service)(nil)
