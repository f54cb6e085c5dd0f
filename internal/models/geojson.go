package models

import (
	"encoding/json"
	"fmt"
)

// GeoJSON geometry type names.
const (
	GeometryPoint           = "Point"
	GeometryMultiPoint      = "MultiPoint"
	GeometryLineString      = "LineString"
	GeometryMultiLineString = "MultiLineString"
	GeometryPolygon         = "Polygon"
	GeometryMultiPolygon    = "MultiPolygon"
)

// Geometry represents a GeoJSON geometry. Coordinates are kept raw because
// the nesting depth depends on Type; use the typed accessors to decode.
// Positions are [longitude, latitude] per the GeoJSON convention.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// NewPoint builds a Point geometry from a longitude/latitude pair.
func NewPoint(lon, lat float64) *Geometry {
	coords, _ := json.Marshal([]float64{lon, lat})
	return &Geometry{Type: GeometryPoint, Coordinates: coords}
}

// Point decodes a Point geometry's position.
func (g *Geometry) Point() ([]float64, error) {
	if g.Type != GeometryPoint {
		return nil, fmt.Errorf("geometry is %s, not Point", g.Type)
	}
	var pos []float64
	if err := json.Unmarshal(g.Coordinates, &pos); err != nil {
		return nil, fmt.Errorf("failed to decode Point coordinates: %w", err)
	}
	if len(pos) < 2 {
		return nil, fmt.Errorf("Point has %d ordinates, need 2", len(pos))
	}
	return pos, nil
}

// Positions decodes MultiPoint or LineString coordinates.
func (g *Geometry) Positions() ([][]float64, error) {
	if g.Type != GeometryMultiPoint && g.Type != GeometryLineString {
		return nil, fmt.Errorf("geometry is %s, not MultiPoint/LineString", g.Type)
	}
	var pts [][]float64
	if err := json.Unmarshal(g.Coordinates, &pts); err != nil {
		return nil, fmt.Errorf("failed to decode %s coordinates: %w", g.Type, err)
	}
	if err := validatePositions(g.Type, pts); err != nil {
		return nil, err
	}
	return pts, nil
}

// Rings decodes Polygon or MultiLineString coordinates. For a Polygon the
// first ring is the outer boundary and any remaining rings are holes.
func (g *Geometry) Rings() ([][][]float64, error) {
	if g.Type != GeometryPolygon && g.Type != GeometryMultiLineString {
		return nil, fmt.Errorf("geometry is %s, not Polygon/MultiLineString", g.Type)
	}
	var rings [][][]float64
	if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
		return nil, fmt.Errorf("failed to decode %s coordinates: %w", g.Type, err)
	}
	for _, ring := range rings {
		if err := validatePositions(g.Type, ring); err != nil {
			return nil, err
		}
	}
	return rings, nil
}

// Polygons decodes MultiPolygon coordinates.
func (g *Geometry) Polygons() ([][][][]float64, error) {
	if g.Type != GeometryMultiPolygon {
		return nil, fmt.Errorf("geometry is %s, not MultiPolygon", g.Type)
	}
	var polys [][][][]float64
	if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
		return nil, fmt.Errorf("failed to decode MultiPolygon coordinates: %w", err)
	}
	for _, poly := range polys {
		for _, ring := range poly {
			if err := validatePositions(g.Type, ring); err != nil {
				return nil, err
			}
		}
	}
	return polys, nil
}

// validatePositions rejects positions with fewer than two ordinates, so
// malformed provider coordinates surface as decode errors rather than
// out-of-range faults in the geometry math downstream.
func validatePositions(geometryType string, positions [][]float64) error {
	for _, pos := range positions {
		if len(pos) < 2 {
			return fmt.Errorf("%s position has %d ordinates, need 2", geometryType, len(pos))
		}
	}
	return nil
}

// Feature is a GeoJSON feature: a geometry plus an open property mapping.
// Every normalizer sets a "source" property identifying provider origin.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// NewFeature builds a Feature with the conventional type tag.
func NewFeature(geometry *Geometry, properties map[string]any) Feature {
	if properties == nil {
		properties = map[string]any{}
	}
	return Feature{Type: "Feature", Geometry: geometry, Properties: properties}
}

// FeatureCollection is an ordered sequence of features. Insertion order is
// meaningful: for chained queries the first feature is the search center.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection builds an empty collection with the type tag set.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

// Append adds a feature to the end of the collection. Features with a nil
// geometry are dropped, preserving the non-null geometry invariant.
func (fc *FeatureCollection) Append(f Feature) {
	if f.Geometry == nil {
		return
	}
	fc.Features = append(fc.Features, f)
}

// Prepend inserts a feature at the head of the collection.
func (fc *FeatureCollection) Prepend(f Feature) {
	if f.Geometry == nil {
		return
	}
	fc.Features = append([]Feature{f}, fc.Features...)
}
