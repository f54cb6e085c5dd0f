package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/carto/internal/common"
	"github.com/ternarybob/carto/internal/geocache"
	"github.com/ternarybob/carto/internal/models"
	"github.com/ternarybob/carto/internal/services/nominatim"
)

const polygonRow = `[{
	"place_id": 298285509,
	"osm_type": "relation",
	"osm_id": 71525,
	"lat": "48.8588897",
	"lon": "2.3200410",
	"category": "boundary",
	"type": "administrative",
	"importance": 0.96,
	"display_name": "Paris, Ile-de-France, France",
	"name": "Paris",
	"geojson": {"type": "Polygon", "coordinates": [[[2.0,48.0],[3.0,48.0],[3.0,49.0],[2.0,49.0],[2.0,48.0]]]}
}]`

type fakeNominatim struct {
	mu       sync.Mutex
	requests []*http.Request
	status   int
	body     string
	server   *httptest.Server
}

func newFakeNominatim(t *testing.T, body string) *fakeNominatim {
	t.Helper()
	f := &fakeNominatim{status: http.StatusOK, body: body}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests = append(f.requests, r.Clone(r.Context()))
		w.WriteHeader(f.status)
		w.Write([]byte(f.body))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeNominatim) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeNominatim) respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.body = body
}

func newTestService(t *testing.T, fake *fakeNominatim, now *time.Time) *Service {
	t.Helper()
	client, err := nominatim.NewClient("carto-test/1.0",
		nominatim.WithBaseURL(fake.server.URL),
		nominatim.WithRequestSpacing(time.Millisecond),
	)
	require.NoError(t, err)

	cache := geocache.New[*models.ToolResult](10, geocache.DefaultTTL,
		geocache.WithClock[*models.ToolResult](func() time.Time { return *now }))
	return NewService(client, cache, geocache.DefaultFailureTTL, common.GetLogger())
}

func TestResolve_PrefersPolygonGeometry(t *testing.T) {
	fake := newFakeNominatim(t, polygonRow)
	now := time.Now()
	svc := newTestService(t, fake, &now)

	result := svc.Resolve(context.Background(), models.PlaceQuery{Query: "Paris"})

	require.True(t, result.OK)
	assert.Equal(t, models.SourceNominatim, result.Source)
	require.Len(t, result.Collection.Features, 1)

	feature := result.Collection.Features[0]
	assert.Equal(t, models.GeometryPolygon, feature.Geometry.Type)
	assert.Equal(t, "Paris, Ile-de-France, France", feature.Properties["display_name"])
	assert.Equal(t, models.SourceNominatim, feature.Properties["source"])
}

func TestResolve_PointWhenPolygonNotPreferred(t *testing.T) {
	fake := newFakeNominatim(t, polygonRow)
	now := time.Now()
	svc := newTestService(t, fake, &now)

	preferPolygon := false
	result := svc.Resolve(context.Background(), models.PlaceQuery{
		Query:         "Paris",
		PreferPolygon: &preferPolygon,
	})

	require.True(t, result.OK)
	require.Len(t, result.Collection.Features, 1)
	coord, err := result.Collection.Features[0].Geometry.Point()
	require.NoError(t, err)
	assert.InDelta(t, 2.3200410, coord[0], 1e-9)
	assert.InDelta(t, 48.8588897, coord[1], 1e-9)
}

func TestResolve_MalformedPolygonFallsBackToPoint(t *testing.T) {
	// Polygon positions missing an ordinate must not reach consumers; the
	// row still resolves through its lat/lon pair.
	malformedRow := `[{
		"place_id": 1,
		"lat": "48.8588897",
		"lon": "2.3200410",
		"display_name": "Paris, Ile-de-France, France",
		"geojson": {"type": "Polygon", "coordinates": [[[2.0],[3.0],[4.0]]]}
	}]`
	fake := newFakeNominatim(t, malformedRow)
	now := time.Now()
	svc := newTestService(t, fake, &now)

	result := svc.Resolve(context.Background(), models.PlaceQuery{Query: "Paris"})

	require.True(t, result.OK)
	require.Len(t, result.Collection.Features, 1)
	feature := result.Collection.Features[0]
	assert.Equal(t, models.GeometryPoint, feature.Geometry.Type)
	coord, err := feature.Geometry.Point()
	require.NoError(t, err)
	assert.InDelta(t, 2.3200410, coord[0], 1e-9)
	assert.InDelta(t, 48.8588897, coord[1], 1e-9)
}

func TestResolve_ShortQueryNeverReachesNetwork(t *testing.T) {
	fake := newFakeNominatim(t, "[]")
	now := time.Now()
	svc := newTestService(t, fake, &now)

	for i := 0; i < 3; i++ {
		result := svc.Resolve(context.Background(), models.PlaceQuery{Query: "  a  "})
		require.False(t, result.OK)
		assert.Equal(t, ErrQueryTooShort, result.Error)
	}
	assert.Equal(t, 0, fake.count())
}

func TestResolve_CachesSuccess(t *testing.T) {
	fake := newFakeNominatim(t, polygonRow)
	now := time.Now()
	svc := newTestService(t, fake, &now)

	query := models.PlaceQuery{Query: "Paris"}
	first := svc.Resolve(context.Background(), query)
	second := svc.Resolve(context.Background(), query)

	require.True(t, first.OK)
	assert.Same(t, first, second)
	assert.Equal(t, 1, fake.count())
}

func TestResolve_BiasNoiseHitsSameCacheEntry(t *testing.T) {
	fake := newFakeNominatim(t, polygonRow)
	now := time.Now()
	svc := newTestService(t, fake, &now)

	first := svc.Resolve(context.Background(), models.PlaceQuery{
		Query: "Paris",
		Bias:  &models.Bias{Lat: 48.85660001, Lon: 2.35220002, RadiusKm: 2},
	})
	second := svc.Resolve(context.Background(), models.PlaceQuery{
		Query: "Paris",
		Bias:  &models.Bias{Lat: 48.85660004, Lon: 2.35219998, RadiusKm: 2},
	})

	require.True(t, first.OK)
	assert.Same(t, first, second)
	assert.Equal(t, 1, fake.count())
}

func TestResolve_BiasSendsBoundedViewbox(t *testing.T) {
	fake := newFakeNominatim(t, polygonRow)
	now := time.Now()
	svc := newTestService(t, fake, &now)

	result := svc.Resolve(context.Background(), models.PlaceQuery{
		Query: "cafe",
		Bias:  &models.Bias{Lat: 48.8566, Lon: 2.3522, RadiusKm: 2},
	})
	require.True(t, result.OK)

	require.Equal(t, 1, fake.count())
	params := fake.requests[0].URL.Query()
	assert.Equal(t, "1", params.Get("bounded"))
	assert.NotEmpty(t, params.Get("viewbox"))
	assert.Equal(t, "carto-test/1.0", fake.requests[0].Header.Get("User-Agent"))
}

func TestResolve_UpstreamFailureCachedWithShortTTL(t *testing.T) {
	fake := newFakeNominatim(t, "")
	fake.respond(http.StatusServiceUnavailable, "overloaded")
	now := time.Now()
	svc := newTestService(t, fake, &now)

	query := models.PlaceQuery{Query: "Berlin"}
	first := svc.Resolve(context.Background(), query)
	require.False(t, first.OK)
	assert.Equal(t, http.StatusServiceUnavailable, first.Status)

	// within the failure TTL the cached failure is returned unchanged
	second := svc.Resolve(context.Background(), query)
	assert.Same(t, first, second)
	assert.Equal(t, 1, fake.count())

	// once it expires and the provider has recovered, the next call refetches
	fake.respond(http.StatusOK, polygonRow)
	now = now.Add(geocache.DefaultFailureTTL + time.Second)

	third := svc.Resolve(context.Background(), query)
	require.True(t, third.OK)
	assert.Equal(t, 2, fake.count())
}

func TestResolve_DropsRowsWithoutUsableGeometry(t *testing.T) {
	fake := newFakeNominatim(t, `[
		{"place_id": 1, "lat": "not-a-number", "lon": "2.0", "display_name": "Broken"},
		{"place_id": 2, "lat": "48.0", "lon": "2.0", "display_name": "Fine"}
	]`)
	now := time.Now()
	svc := newTestService(t, fake, &now)

	result := svc.Resolve(context.Background(), models.PlaceQuery{Query: "whatever"})

	require.True(t, result.OK)
	require.Len(t, result.Collection.Features, 1)
	assert.Equal(t, "Fine", result.Collection.Features[0].Properties["display_name"])
}
