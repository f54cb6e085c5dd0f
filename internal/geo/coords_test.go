package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/carto/internal/models"
)

func TestBoxAround(t *testing.T) {
	box := BoxAround(0, 0, 111)

	assert.InDelta(t, -1.0, box.MinLat, 1e-9)
	assert.InDelta(t, 1.0, box.MaxLat, 1e-9)
	assert.InDelta(t, -1.0, box.MinLon, 1e-9)
	assert.InDelta(t, 1.0, box.MaxLon, 1e-9)
}

func TestBoxAround_NarrowsWithLatitude(t *testing.T) {
	equator := BoxAround(0, 0, 10)
	north := BoxAround(60, 0, 10)

	// Same latitude span, wider longitude span away from the equator.
	assert.InDelta(t, equator.MaxLat-equator.MinLat, north.MaxLat-north.MinLat, 1e-9)
	assert.Greater(t, north.MaxLon-north.MinLon, equator.MaxLon-equator.MinLon)
}

func TestBoxAround_PoleStaysFinite(t *testing.T) {
	box := BoxAround(90, 0, 10)

	assert.False(t, box.MaxLon-box.MinLon > 2*10/(kmPerDegree*minCosLat)+1e-6)
	assert.Greater(t, box.MaxLon, box.MinLon)
}

func TestCollectCoordinates_OrderAndKinds(t *testing.T) {
	fc := models.NewFeatureCollection()
	fc.Append(models.NewFeature(models.NewPoint(1, 1), nil))
	fc.Append(models.NewFeature(geom(t, models.GeometryLineString, [][]float64{{2, 2}, {3, 3}}), nil))
	fc.Append(models.NewFeature(geom(t, models.GeometryPolygon, [][][]float64{{{4, 4}, {5, 4}, {5, 5}}}), nil))
	fc.Append(models.NewFeature(geom(t, models.GeometryMultiPolygon, [][][][]float64{{{{6, 6}, {7, 6}, {7, 7}}}}), nil))

	coords := CollectCoordinates(fc)
	require.Len(t, coords, 9)
	assert.Equal(t, []float64{1, 1}, coords[0])
	assert.Equal(t, []float64{2, 2}, coords[1])
	assert.Equal(t, []float64{4, 4}, coords[3])
	assert.Equal(t, []float64{6, 6}, coords[6])
}

func TestCollectCoordinates_Empty(t *testing.T) {
	assert.Nil(t, CollectCoordinates(nil))
	assert.Empty(t, CollectCoordinates(models.NewFeatureCollection()))
}

func TestFitBounds(t *testing.T) {
	fc := models.NewFeatureCollection()
	fc.Append(models.NewFeature(models.NewPoint(2, 48), nil))
	fc.Append(models.NewFeature(geom(t, models.GeometryLineString, [][]float64{{4, 50}, {3, 49}}), nil))

	box, ok := FitBounds(fc)
	require.True(t, ok)
	assert.Equal(t, BoundingBox{MinLon: 2, MinLat: 48, MaxLon: 4, MaxLat: 50}, box)
}

func TestFitBounds_NoCoordinates(t *testing.T) {
	_, ok := FitBounds(models.NewFeatureCollection())
	assert.False(t, ok)
}

func TestFitBounds_SkipsTruncatedPositions(t *testing.T) {
	fc := models.NewFeatureCollection()
	fc.Append(models.NewFeature(geom(t, models.GeometryPolygon, [][][]float64{{{2.0}, {3.0}, {4.0}}}), nil))
	fc.Append(models.NewFeature(models.NewPoint(2, 48), nil))

	box, ok := FitBounds(fc)
	require.True(t, ok)
	assert.Equal(t, BoundingBox{MinLon: 2, MinLat: 48, MaxLon: 2, MaxLat: 48}, box)
}
