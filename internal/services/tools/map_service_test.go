package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/carto/internal/common"
	"github.com/ternarybob/carto/internal/models"
)

type stubResolver struct {
	lastQuery models.PlaceQuery
	result    *models.ToolResult
}

func (s *stubResolver) Resolve(_ context.Context, query models.PlaceQuery) *models.ToolResult {
	s.lastQuery = query
	return s.result
}

type stubRecommender struct {
	lastQuery models.RecommendQuery
	result    *models.ToolResult
}

func (s *stubRecommender) Recommend(_ context.Context, query models.RecommendQuery) *models.ToolResult {
	s.lastQuery = query
	return s.result
}

type recordingRenderer struct {
	layers      []string
	collections []*models.FeatureCollection
	errors      []string
}

func (r *recordingRenderer) RenderLayer(layer string, collection *models.FeatureCollection) {
	r.layers = append(r.layers, layer)
	r.collections = append(r.collections, collection)
}

func (r *recordingRenderer) RenderError(message string) {
	r.errors = append(r.errors, message)
}

func singleFeatureResult(source, displayName string) *models.ToolResult {
	collection := models.NewFeatureCollection()
	collection.Append(models.NewFeature(models.NewPoint(2.35, 48.85), map[string]any{
		"source":       source,
		"display_name": displayName,
	}))
	return models.SuccessResult(source, collection)
}

func TestCallTool_FindPlaceRendersPlacesLayer(t *testing.T) {
	resolver := &stubResolver{result: singleFeatureResult(models.SourceNominatim, "Paris, France")}
	renderer := &recordingRenderer{}
	svc := NewMapService(resolver, &stubRecommender{}, nil, renderer, common.GetLogger())

	result, err := svc.CallTool(context.Background(), "find_place", map[string]interface{}{
		"query": "Paris",
		"limit": 3,
	})
	require.NoError(t, err)

	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, "Paris, France")
	assert.Contains(t, result.Content[0].Text, "lat 48.85000")

	assert.Equal(t, "Paris", resolver.lastQuery.Query)
	assert.Equal(t, 3, resolver.lastQuery.Limit)
	require.Equal(t, []string{LayerPlaces}, renderer.layers)
	assert.Len(t, renderer.collections[0].Features, 1)
}

func TestCallTool_FailureStaysOffMapLayers(t *testing.T) {
	resolver := &stubResolver{result: models.FailureResult("Query too short")}
	renderer := &recordingRenderer{}
	svc := NewMapService(resolver, &stubRecommender{}, nil, renderer, common.GetLogger())

	result, err := svc.CallTool(context.Background(), "find_place", map[string]interface{}{
		"query": "x",
	})
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "Query too short")
	assert.Empty(t, renderer.layers, "failures must not touch the map")
	require.Len(t, renderer.errors, 1)
	assert.Equal(t, "Query too short", renderer.errors[0])
}

func TestCallTool_RecommendRendersRecommendationsLayer(t *testing.T) {
	recommender := &stubRecommender{result: singleFeatureResult("foursquare", "Cafe de Flore")}
	renderer := &recordingRenderer{}
	svc := NewMapService(&stubResolver{}, recommender, nil, renderer, common.GetLogger())

	result, err := svc.CallTool(context.Background(), "recommend_nearby", map[string]interface{}{
		"place":      "Saint-Germain",
		"query":      "coffee",
		"radius_km":  2.5,
		"min_rating": 8.0,
	})
	require.NoError(t, err)

	assert.False(t, result.IsError)
	assert.Equal(t, "Saint-Germain", recommender.lastQuery.Place)
	assert.Equal(t, "coffee", recommender.lastQuery.Query)
	assert.Equal(t, 2.5, recommender.lastQuery.RadiusKm)
	require.NotNil(t, recommender.lastQuery.MinRating)
	assert.Equal(t, 8.0, *recommender.lastQuery.MinRating)
	assert.Equal(t, []string{LayerRecommendations}, renderer.layers)
}

func TestCallTool_UnknownTool(t *testing.T) {
	svc := NewMapService(&stubResolver{}, &stubRecommender{}, nil, nil, common.GetLogger())

	_, err := svc.CallTool(context.Background(), "teleport", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestListTools_NearbyHiddenWithoutService(t *testing.T) {
	svc := NewMapService(&stubResolver{}, &stubRecommender{}, nil, nil, common.GetLogger())

	list, err := svc.ListTools(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(list.Tools))
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"find_place", "recommend_nearby"}, names)
}

func TestFormatPOIResult_SeparatesSearchCenter(t *testing.T) {
	collection := models.NewFeatureCollection()
	rating := 8.7
	collection.Append(models.NewFeature(models.NewPoint(2.35, 48.85), map[string]any{
		"source":       "foursquare",
		"display_name": "Le Comptoir",
		"rating":       rating,
		"address":      "9 Carrefour de l'Odeon",
	}))
	collection.Prepend(models.NewFeature(models.NewPoint(2.34, 48.85), map[string]any{
		"source":       models.SourceNominatim,
		"category":     "search-center",
		"display_name": "Odeon",
	}))

	text := formatPOIResult(models.SuccessResult(models.SourcePOI, collection))

	assert.Contains(t, text, "Found 1 result(s)")
	assert.Contains(t, text, "Search center: Odeon")
	assert.Contains(t, text, "Le Comptoir - rated 8.7")
	assert.Contains(t, text, "Carrefour de l'Odeon")
}

func TestExecuteTool_WrapsDispatchErrors(t *testing.T) {
	svc := NewMapService(&stubResolver{}, &stubRecommender{}, nil, nil, common.GetLogger())
	router := NewToolRouter(svc, common.GetLogger())

	response := router.ExecuteTool(context.Background(), &ToolUse{ID: "t1", Name: "teleport"})

	assert.True(t, response.IsError)
	assert.Equal(t, "t1", response.ToolUseID)
	assert.Contains(t, response.Content, "unknown tool")
}

func TestFormatToolsForPrompt_IncludesSchemas(t *testing.T) {
	svc := NewMapService(&stubResolver{}, &stubRecommender{}, nil, nil, common.GetLogger())
	router := NewToolRouter(svc, common.GetLogger())

	prompt, err := router.FormatToolsForPrompt(context.Background())
	require.NoError(t, err)

	assert.Contains(t, prompt, "## find_place")
	assert.Contains(t, prompt, "## recommend_nearby")
	assert.Contains(t, prompt, `"tool_use"`)
	assert.Contains(t, prompt, "Input Schema")
}
