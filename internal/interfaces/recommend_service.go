package interfaces

import (
	"context"

	"github.com/ternarybob/carto/internal/models"
)

// RecommendService chains a place resolution into a nearby POI search:
// resolve the place, collapse its geometry to a centroid, search around it.
type RecommendService interface {
	// Recommend returns POI point features around the resolved place, with a
	// synthetic search-center feature prepended carrying the place's
	// original geometry.
	Recommend(ctx context.Context, query models.RecommendQuery) *models.ToolResult
}

// NearbyService is the secondary, category-based POI lookup. Rows lacking
// coordinates are geocoded from their address via the fallback geocoder;
// rows with neither coordinates nor address are skipped.
type NearbyService interface {
	NearbyByCategory(ctx context.Context, query models.NearbyQuery) *models.ToolResult
}
