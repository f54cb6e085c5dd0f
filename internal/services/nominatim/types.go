package nominatim

import (
	"github.com/ternarybob/carto/internal/models"
)

// SearchResult represents a single row of the Nominatim /search response
// (format=jsonv2). Lat/Lon arrive as strings; GeoJSON is present only when
// polygon_geojson=1 was requested and the object has a polygon.
type SearchResult struct {
	PlaceID     int64             `json:"place_id"`
	OSMType     string            `json:"osm_type"`
	OSMID       int64             `json:"osm_id"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Category    string            `json:"category"`
	Type        string            `json:"type"`
	Importance  float64           `json:"importance"`
	DisplayName string            `json:"display_name"`
	Name        string            `json:"name"`
	Address     map[string]string `json:"address,omitempty"`
	BoundingBox []string          `json:"boundingbox,omitempty"`
	GeoJSON     *models.Geometry  `json:"geojson,omitempty"`
}

// SearchRequest holds the parameters of a Nominatim /search call.
type SearchRequest struct {
	Query          string
	Limit          int
	CountryCodes   string // comma-separated ISO codes, passed as countrycodes
	Locale         string // sent as Accept-Language header
	PolygonGeoJSON bool
	ViewBox        *ViewBox // hard filter: viewbox + bounded=1
}

// ViewBox is a bounding box in degrees, lon/lat order as Nominatim expects.
type ViewBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}
