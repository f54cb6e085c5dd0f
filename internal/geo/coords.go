package geo

import (
	"math"

	"github.com/ternarybob/carto/internal/models"
)

// minCosLat floors the cosine magnitude used in the longitude-degree
// conversion so bias boxes near the poles stay finite.
const minCosLat = 0.01

// kmPerDegree is the approximate length of one degree of latitude.
const kmPerDegree = 111.0

// BoundingBox is a geographic rectangle in degrees.
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// BoxAround converts a center plus a radius in kilometers into a bounding
// box, using 111 km per degree of latitude and scaling longitude by the
// cosine of the latitude.
func BoxAround(lat, lon, radiusKm float64) BoundingBox {
	dLat := radiusKm / kmPerDegree
	cos := math.Cos(lat * math.Pi / 180)
	if math.Abs(cos) < minCosLat {
		cos = minCosLat
	}
	dLon := radiusKm / (kmPerDegree * math.Abs(cos))
	return BoundingBox{
		MinLon: lon - dLon,
		MinLat: lat - dLat,
		MaxLon: lon + dLon,
		MaxLat: lat + dLat,
	}
}

// FitBounds computes the bounding box enclosing every coordinate of the
// collection. The second return is false when the collection holds no
// coordinates at all.
func FitBounds(fc *models.FeatureCollection) (BoundingBox, bool) {
	coords := CollectCoordinates(fc)
	if len(coords) == 0 {
		return BoundingBox{}, false
	}
	box := BoundingBox{
		MinLon: coords[0][0], MaxLon: coords[0][0],
		MinLat: coords[0][1], MaxLat: coords[0][1],
	}
	for _, c := range coords[1:] {
		box.MinLon = math.Min(box.MinLon, c[0])
		box.MaxLon = math.Max(box.MaxLon, c[0])
		box.MinLat = math.Min(box.MinLat, c[1])
		box.MaxLat = math.Max(box.MaxLat, c[1])
	}
	return box, true
}

// CollectCoordinates flattens every coordinate from every feature's
// geometry, across all six geometry kinds, preserving feature insertion
// order and feature-internal order. The renderer uses the result to compute
// a fit-to-bounds viewport.
func CollectCoordinates(fc *models.FeatureCollection) [][]float64 {
	if fc == nil {
		return nil
	}
	var out [][]float64
	for _, f := range fc.Features {
		g := f.Geometry
		if g == nil {
			continue
		}
		switch g.Type {
		case models.GeometryPoint:
			if pos, err := g.Point(); err == nil {
				out = append(out, pos)
			}
		case models.GeometryMultiPoint, models.GeometryLineString:
			if pts, err := g.Positions(); err == nil {
				out = append(out, pts...)
			}
		case models.GeometryPolygon, models.GeometryMultiLineString:
			if rings, err := g.Rings(); err == nil {
				out = append(out, flatten(rings)...)
			}
		case models.GeometryMultiPolygon:
			if polys, err := g.Polygons(); err == nil {
				for _, poly := range polys {
					out = append(out, flatten(poly)...)
				}
			}
		}
	}
	return out
}
