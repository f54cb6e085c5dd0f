// Package geo provides the pure geometry math used to collapse resolved
// places into search anchor points and to compute fit-to-bounds viewports.
package geo

import (
	"github.com/ternarybob/carto/internal/models"
)

// RingCentroid computes the signed area and the area-weighted centroid of a
// ring using the shoelace formula. The ring does not need to be pre-closed;
// the last coordinate wraps to the first. When the signed area is zero
// (collinear or duplicate points) the returned centroid is not usable and
// the caller should fall back to MeanPosition.
func RingCentroid(ring [][]float64) (centroid []float64, area float64) {
	if len(ring) < 3 {
		return nil, 0
	}

	var sumX, sumY, signedArea float64
	n := len(ring)
	for i := 0; i < n; i++ {
		x0, y0 := ring[i][0], ring[i][1]
		x1, y1 := ring[(i+1)%n][0], ring[(i+1)%n][1]
		cross := x0*y1 - x1*y0
		signedArea += cross
		sumX += (x0 + x1) * cross
		sumY += (y0 + y1) * cross
	}
	signedArea /= 2

	if signedArea == 0 {
		return nil, 0
	}
	return []float64{sumX / (6 * signedArea), sumY / (6 * signedArea)}, signedArea
}

// MeanPosition returns the arithmetic mean of a coordinate sequence, or the
// first coordinate when fewer than 3 points are present. Returns nil for an
// empty sequence.
func MeanPosition(positions [][]float64) []float64 {
	if len(positions) == 0 {
		return nil
	}
	if len(positions) < 3 {
		return []float64{positions[0][0], positions[0][1]}
	}
	var sumX, sumY float64
	for _, p := range positions {
		sumX += p[0]
		sumY += p[1]
	}
	n := float64(len(positions))
	return []float64{sumX / n, sumY / n}
}

// NormalizeRing drops an explicit closing coordinate (first == last) so the
// shoelace wrap and the mean fallback both see each vertex exactly once.
func NormalizeRing(ring [][]float64) [][]float64 {
	if len(ring) >= 2 {
		first, last := ring[0], ring[len(ring)-1]
		if first[0] == last[0] && first[1] == last[1] {
			return ring[:len(ring)-1]
		}
	}
	return ring
}

// ringAnchor resolves a ring to a single point: shoelace centroid when the
// ring has area, MeanPosition otherwise.
func ringAnchor(ring [][]float64) ([]float64, float64) {
	ring = NormalizeRing(ring)
	if c, area := RingCentroid(ring); c != nil {
		return c, area
	}
	return MeanPosition(ring), 0
}

// Centroid resolves a geometry to a single [lon, lat] anchor point:
//
//   - Point: the point itself.
//   - MultiPoint / LineString / MultiLineString: mean of all coordinates.
//   - Polygon: shoelace centroid of the outer ring (holes ignored), falling
//     back to the outer ring's mean when degenerate.
//   - MultiPolygon: average of each member polygon's outer-ring centroid
//     weighted by absolute area; mean of every coordinate when the total
//     area is zero.
//
// Returns false for any other kind or an empty/absent geometry.
func Centroid(g *models.Geometry) ([]float64, bool) {
	if g == nil {
		return nil, false
	}

	switch g.Type {
	case models.GeometryPoint:
		pos, err := g.Point()
		if err != nil {
			return nil, false
		}
		return []float64{pos[0], pos[1]}, true

	case models.GeometryMultiPoint, models.GeometryLineString:
		pts, err := g.Positions()
		if err != nil {
			return nil, false
		}
		if c := meanOfAll(pts); c != nil {
			return c, true
		}
		return nil, false

	case models.GeometryMultiLineString:
		lines, err := g.Rings()
		if err != nil {
			return nil, false
		}
		if c := meanOfAll(flatten(lines)); c != nil {
			return c, true
		}
		return nil, false

	case models.GeometryPolygon:
		rings, err := g.Rings()
		if err != nil || len(rings) == 0 || len(rings[0]) == 0 {
			return nil, false
		}
		c, _ := ringAnchor(rings[0])
		return c, c != nil

	case models.GeometryMultiPolygon:
		polys, err := g.Polygons()
		if err != nil || len(polys) == 0 {
			return nil, false
		}
		var sumX, sumY, totalArea float64
		var all [][]float64
		for _, poly := range polys {
			if len(poly) == 0 || len(poly[0]) == 0 {
				continue
			}
			all = append(all, poly[0]...)
			c, area := ringAnchor(poly[0])
			if c == nil {
				continue
			}
			w := abs(area)
			sumX += c[0] * w
			sumY += c[1] * w
			totalArea += w
		}
		if totalArea > 0 {
			return []float64{sumX / totalArea, sumY / totalArea}, true
		}
		if c := meanOfAll(all); c != nil {
			return c, true
		}
		return nil, false
	}

	return nil, false
}

// meanOfAll is a plain average over every position, without the short-ring
// first-coordinate rule used for degenerate polygon rings.
func meanOfAll(positions [][]float64) []float64 {
	if len(positions) == 0 {
		return nil
	}
	var sumX, sumY float64
	for _, p := range positions {
		sumX += p[0]
		sumY += p[1]
	}
	n := float64(len(positions))
	return []float64{sumX / n, sumY / n}
}

func flatten(groups [][][]float64) [][]float64 {
	var out [][]float64
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
