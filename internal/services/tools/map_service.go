// Package tools exposes the geometry resolvers as agent-callable map tools
// and routes tool calls from the chat agent loop. Successful results are
// pushed to the map renderer as a side effect; the agent only sees a text
// summary.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/carto/internal/interfaces"
	"github.com/ternarybob/carto/internal/models"
)

// Map layer names used by the renderer. Each tool owns one layer; a new
// result replaces the previous contents of that layer.
const (
	LayerPlaces          = "places"
	LayerRecommendations = "recommendations"
	LayerNearby          = "nearby"
)

// MapService implements the map tool surface for the agent
type MapService struct {
	places    interfaces.PlaceResolver
	recommend interfaces.RecommendService
	nearby    interfaces.NearbyService
	renderer  interfaces.Renderer
	logger    arbor.ILogger
}

// NewMapService creates the tool surface. renderer and nearby may be nil;
// rendering is skipped and the nearby tool is not advertised.
func NewMapService(
	places interfaces.PlaceResolver,
	recommend interfaces.RecommendService,
	nearby interfaces.NearbyService,
	renderer interfaces.Renderer,
	logger arbor.ILogger,
) *MapService {
	return &MapService{
		places:    places,
		recommend: recommend,
		nearby:    nearby,
		renderer:  renderer,
		logger:    logger,
	}
}

// ListTools returns the available map tools
func (s *MapService) ListTools(ctx context.Context) (*ToolList, error) {
	tools := []Tool{
		{
			Name:        "find_place",
			Description: "Find a place by name and show it on the map. Returns the best matches with their coordinates; administrative areas come back as polygons.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Free-text place name, e.g. 'Paris' or 'Eiffel Tower'",
					},
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "Maximum number of matches (1-10, default 1)",
					},
					"country_codes": map[string]interface{}{
						"type":        "string",
						"description": "Comma-separated ISO country codes to restrict the search, e.g. 'fr,be'",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "recommend_nearby",
			Description: "Recommend points of interest near a named place and show them on the map. Resolves the place first, then searches around its center.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"place": map[string]interface{}{
						"type":        "string",
						"description": "Place to search around, e.g. 'Montmartre'",
					},
					"query": map[string]interface{}{
						"type":        "string",
						"description": "What to look for (default 'restaurants')",
					},
					"radius_km": map[string]interface{}{
						"type":        "number",
						"description": "Search radius in kilometers (1-5, default 2)",
					},
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "Maximum number of results (1-20, default 10)",
					},
					"min_rating": map[string]interface{}{
						"type":        "number",
						"description": "Only keep results rated at least this value (0-10)",
					},
				},
				"required": []string{"place"},
			},
		},
	}

	if s.nearby != nil {
		tools = append(tools, Tool{
			Name:        "nearby_category",
			Description: "Search for hotels, restaurants or attractions around a coordinate and show them on the map.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"lat": map[string]interface{}{
						"type":        "number",
						"description": "Latitude of the search center",
					},
					"lon": map[string]interface{}{
						"type":        "number",
						"description": "Longitude of the search center",
					},
					"category": map[string]interface{}{
						"type":        "string",
						"description": "One of: hotels, restaurants, attractions",
					},
					"radius_km": map[string]interface{}{
						"type":        "number",
						"description": "Search radius in kilometers (default 2)",
					},
				},
				"required": []string{"lat", "lon", "category"},
			},
		})
	}

	return &ToolList{Tools: tools}, nil
}

// CallTool executes a named tool with the given arguments
func (s *MapService) CallTool(ctx context.Context, name string, args map[string]interface{}) (*CallResult, error) {
	switch name {
	case "find_place":
		return s.findPlace(ctx, args)
	case "recommend_nearby":
		return s.recommendNearby(ctx, args)
	case "nearby_category":
		if s.nearby == nil {
			return nil, fmt.Errorf("tool not available: %s", name)
		}
		return s.nearbyCategory(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *MapService) findPlace(ctx context.Context, args map[string]interface{}) (*CallResult, error) {
	var query models.PlaceQuery
	if err := decodeArguments(args, &query); err != nil {
		return nil, fmt.Errorf("invalid find_place arguments: %w", err)
	}

	result := s.places.Resolve(ctx, query)
	return s.finish(LayerPlaces, result, formatPlaceResult(result)), nil
}

func (s *MapService) recommendNearby(ctx context.Context, args map[string]interface{}) (*CallResult, error) {
	var query models.RecommendQuery
	if err := decodeArguments(args, &query); err != nil {
		return nil, fmt.Errorf("invalid recommend_nearby arguments: %w", err)
	}

	result := s.recommend.Recommend(ctx, query)
	return s.finish(LayerRecommendations, result, formatPOIResult(result)), nil
}

func (s *MapService) nearbyCategory(ctx context.Context, args map[string]interface{}) (*CallResult, error) {
	var query models.NearbyQuery
	if err := decodeArguments(args, &query); err != nil {
		return nil, fmt.Errorf("invalid nearby_category arguments: %w", err)
	}

	result := s.nearby.NearbyByCategory(ctx, query)
	return s.finish(LayerNearby, result, formatPOIResult(result)), nil
}

// finish renders a successful result onto its map layer and wraps the text
// summary. Failures are returned as in-band error results, never Go errors,
// so the agent can relay the message and try something else.
func (s *MapService) finish(layer string, result *models.ToolResult, summary string) *CallResult {
	if s.renderer != nil {
		if result.OK {
			s.renderer.RenderLayer(layer, result.Collection)
		} else {
			s.renderer.RenderError(result.Error)
		}
	}
	return &CallResult{
		Content: []ContentBlock{{Type: "text", Text: summary}},
		IsError: !result.OK,
	}
}

// decodeArguments converts the loosely-typed argument map into a query
// struct via its JSON tags.
func decodeArguments(args map[string]interface{}, target interface{}) error {
	data, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
