package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceQuery_Normalized(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		n := PlaceQuery{Query: "  Paris  "}.Normalized()

		assert.Equal(t, "Paris", n.Query)
		assert.Equal(t, 1, n.Limit)
		require.NotNil(t, n.PreferPolygon)
		assert.True(t, *n.PreferPolygon)
		assert.Nil(t, n.Bias)
	})

	t.Run("clamps limit to provider maximum", func(t *testing.T) {
		n := PlaceQuery{Query: "Paris", Limit: 50}.Normalized()
		assert.Equal(t, PlaceLimitMax, n.Limit)
	})

	t.Run("defaults bias radius without mutating the input", func(t *testing.T) {
		bias := &Bias{Lat: 48.85, Lon: 2.35}
		q := PlaceQuery{Query: "Paris", Bias: bias}

		n := q.Normalized()

		assert.Equal(t, DefaultBiasRadius, n.Bias.RadiusKm)
		assert.Zero(t, bias.RadiusKm, "caller's bias must not be modified")
	})

	t.Run("keeps explicit polygon preference", func(t *testing.T) {
		f := false
		n := PlaceQuery{Query: "Paris", PreferPolygon: &f}.Normalized()
		assert.False(t, *n.PreferPolygon)
	})
}

func TestPlaceQuery_CacheKey(t *testing.T) {
	t.Run("case insensitive", func(t *testing.T) {
		a := PlaceQuery{Query: "Paris", CountryCodes: "FR"}.CacheKey()
		b := PlaceQuery{Query: "paris", CountryCodes: "fr"}.CacheKey()
		assert.Equal(t, a, b)
	})

	t.Run("absorbs float precision noise in the bias", func(t *testing.T) {
		a := PlaceQuery{Query: "cafe", Bias: &Bias{Lat: 48.85660001, Lon: 2.3522, RadiusKm: 2}}.CacheKey()
		b := PlaceQuery{Query: "cafe", Bias: &Bias{Lat: 48.85660004, Lon: 2.3522, RadiusKm: 2}}.CacheKey()
		assert.Equal(t, a, b)
	})

	t.Run("distinct bias means distinct key", func(t *testing.T) {
		a := PlaceQuery{Query: "cafe"}.CacheKey()
		b := PlaceQuery{Query: "cafe", Bias: &Bias{Lat: 48.85, Lon: 2.35}}.CacheKey()
		assert.NotEqual(t, a, b)
	})
}

func TestRecommendQuery_Normalized(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		n := RecommendQuery{Place: " Montmartre "}.Normalized()

		assert.Equal(t, "Montmartre", n.Place)
		assert.Equal(t, DefaultPOIQuery, n.Query)
		assert.Equal(t, DefaultBiasRadius, n.RadiusKm, "omitted radius takes the advertised 2 km default")
		assert.Equal(t, RecommendLimitDefault, n.Limit, "omitted limit takes the advertised default")
	})

	t.Run("clamps radius into provider bounds", func(t *testing.T) {
		low := RecommendQuery{Place: "x", RadiusKm: 0.2}.Normalized()
		high := RecommendQuery{Place: "x", RadiusKm: 12}.Normalized()

		assert.Equal(t, RecommendRadiusMin, low.RadiusKm)
		assert.Equal(t, RecommendRadiusMax, high.RadiusKm)
	})

	t.Run("clamps limit", func(t *testing.T) {
		n := RecommendQuery{Place: "x", Limit: 100}.Normalized()
		assert.Equal(t, RecommendLimitMax, n.Limit)
	})
}

func TestRecommendQuery_CacheKey(t *testing.T) {
	t.Run("rating participates in the key", func(t *testing.T) {
		rating := 8.0
		a := RecommendQuery{Place: "Paris"}.CacheKey()
		b := RecommendQuery{Place: "Paris", MinRating: &rating}.CacheKey()
		assert.NotEqual(t, a, b)
	})

	t.Run("normalization collapses equivalent queries", func(t *testing.T) {
		a := RecommendQuery{Place: "Paris", Query: "restaurants"}.CacheKey()
		b := RecommendQuery{Place: " paris "}.CacheKey()
		assert.Equal(t, a, b)
	})
}

func TestNearbyQuery_CacheKey(t *testing.T) {
	t.Run("defaults radius", func(t *testing.T) {
		a := NearbyQuery{Lat: 48.85, Lon: 2.35, Category: "hotels"}.CacheKey()
		b := NearbyQuery{Lat: 48.85, Lon: 2.35, Category: "Hotels", RadiusKm: DefaultBiasRadius}.CacheKey()
		assert.Equal(t, a, b)
	})

	t.Run("coordinates rounded to 4 decimals", func(t *testing.T) {
		a := NearbyQuery{Lat: 48.85660001, Lon: 2.3522, Category: "hotels"}.CacheKey()
		b := NearbyQuery{Lat: 48.85660004, Lon: 2.3522, Category: "hotels"}.CacheKey()
		assert.Equal(t, a, b)
	})
}
