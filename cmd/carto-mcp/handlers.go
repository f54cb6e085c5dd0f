package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/carto/internal/interfaces"
	"github.com/ternarybob/carto/internal/models"
	"github.com/ternarybob/carto/internal/services/nominatim"
)

// handleFindPlace implements the find_place tool
func handleFindPlace(resolver interfaces.PlaceResolver, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Parse query parameter (required)
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: query parameter is required"),
				},
			}, nil
		}

		preferPolygon := request.GetBool("prefer_polygon", true)

		result := resolver.Resolve(ctx, models.PlaceQuery{
			Query:         query,
			Limit:         request.GetInt("limit", 1),
			CountryCodes:  request.GetString("country_codes", ""),
			PreferPolygon: &preferPolygon,
		})
		if !result.OK {
			logger.Warn().Str("query", query).Str("error", result.Error).Msg("Place resolution failed")
		}

		// Format result as markdown with the GeoJSON payload attached
		markdown := formatPlaceResult(query, result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
			IsError: !result.OK,
		}, nil
	}
}

// handleRecommendNearby implements the recommend_nearby tool
func handleRecommendNearby(recommender interfaces.RecommendService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Parse place parameter (required)
		place, err := request.RequireString("place")
		if err != nil || place == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: place parameter is required"),
				},
			}, nil
		}

		query := models.RecommendQuery{
			Place:    place,
			Query:    request.GetString("query", ""),
			RadiusKm: request.GetFloat("radius_km", 0),
			Limit:    request.GetInt("limit", 0),
		}
		if rating := request.GetFloat("min_rating", -1); rating >= 0 {
			query.MinRating = &rating
		}

		result := recommender.Recommend(ctx, query)
		if !result.OK {
			logger.Warn().Str("place", place).Str("error", result.Error).Msg("Recommendation failed")
		}

		markdown := formatPOIResult(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
			IsError: !result.OK,
		}, nil
	}
}

// handleGeocodeAddress implements the geocode_address tool
func handleGeocodeAddress(geocoder *nominatim.Client, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		address, err := request.RequireString("address")
		if err != nil || address == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: address parameter is required"),
				},
			}, nil
		}

		var bias *models.Bias
		if lat := request.GetFloat("near_lat", 0); lat != 0 {
			bias = &models.Bias{Lat: lat, Lon: request.GetFloat("near_lon", 0)}
		}

		coord, err := geocoder.GeocodeOnce(ctx, address, bias)
		if err != nil {
			logger.Warn().Err(err).Str("address", address).Msg("Geocode failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Geocode failed: %v", err)),
				},
				IsError: true,
			}, nil
		}
		if coord == nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("No coordinate found for \"%s\"", address)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(fmt.Sprintf("%s resolves to lat %.5f, lon %.5f", address, coord[1], coord[0])),
			},
		}, nil
	}
}

// handleNearbyCategory implements the nearby_category tool
func handleNearbyCategory(nearby interfaces.NearbyService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		lat, err := request.RequireFloat("lat")
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: lat parameter is required"),
				},
			}, nil
		}
		lon, err := request.RequireFloat("lon")
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: lon parameter is required"),
				},
			}, nil
		}
		category, err := request.RequireString("category")
		if err != nil || category == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: category parameter is required"),
				},
			}, nil
		}

		result := nearby.NearbyByCategory(ctx, models.NearbyQuery{
			Lat:      lat,
			Lon:      lon,
			Category: category,
			RadiusKm: request.GetFloat("radius_km", 0),
		})
		if !result.OK {
			logger.Warn().Str("category", category).Str("error", result.Error).Msg("Nearby search failed")
		}

		markdown := formatPOIResult(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
			IsError: !result.OK,
		}, nil
	}
}
