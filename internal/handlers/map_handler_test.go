package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/carto/internal/models"
)

type stubPlaceResolver struct {
	result *models.ToolResult
	last   models.PlaceQuery
}

func (s *stubPlaceResolver) Resolve(_ context.Context, query models.PlaceQuery) *models.ToolResult {
	s.last = query
	return s.result
}

type stubRecommendService struct {
	result *models.ToolResult
}

func (s *stubRecommendService) Recommend(context.Context, models.RecommendQuery) *models.ToolResult {
	return s.result
}

func placeResult() *models.ToolResult {
	collection := models.NewFeatureCollection()
	collection.Append(models.NewFeature(models.NewPoint(2.3522, 48.8566), map[string]any{
		"display_name": "Paris",
	}))
	return models.SuccessResult(models.SourceNominatim, collection)
}

func TestPlaceSearchHandler_ReturnsResult(t *testing.T) {
	resolver := &stubPlaceResolver{result: placeResult()}
	h := NewMapHandler(resolver, &stubRecommendService{}, nil, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/places/search", strings.NewReader(`{"query":"Paris","limit":3}`))
	rec := httptest.NewRecorder()
	h.PlaceSearchHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Paris", resolver.last.Query)
	assert.Equal(t, 3, resolver.last.Limit)

	var result models.ToolResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.OK)
	require.Len(t, result.Collection.Features, 1)
}

func TestPlaceSearchHandler_FailureIsStillHTTP200(t *testing.T) {
	resolver := &stubPlaceResolver{result: models.FailureResult("Query too short")}
	h := NewMapHandler(resolver, &stubRecommendService{}, nil, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/places/search", strings.NewReader(`{"query":"x"}`))
	rec := httptest.NewRecorder()
	h.PlaceSearchHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ToolResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.OK)
	assert.Equal(t, "Query too short", result.Error)
}

func TestPlaceSearchHandler_RejectsBadBody(t *testing.T) {
	h := NewMapHandler(&stubPlaceResolver{}, &stubRecommendService{}, nil, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/places/search", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.PlaceSearchHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceSearchHandler_RejectsGet(t *testing.T) {
	h := NewMapHandler(&stubPlaceResolver{}, &stubRecommendService{}, nil, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/places/search", nil)
	rec := httptest.NewRecorder()
	h.PlaceSearchHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNearbyHandler_UnconfiguredProvider(t *testing.T) {
	h := NewMapHandler(&stubPlaceResolver{}, &stubRecommendService{}, nil, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/nearby", strings.NewReader(`{"lat":48.85,"lon":2.35,"category":"hotels"}`))
	rec := httptest.NewRecorder()
	h.NearbyHandler(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
