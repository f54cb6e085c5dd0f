package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createFindPlaceTool returns the find_place tool definition
func createFindPlaceTool() mcp.Tool {
	return mcp.NewTool("find_place",
		mcp.WithDescription("Resolve a free-text place name to its geometry (polygon boundary when available, point otherwise)"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Place name to resolve (city, landmark, address)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum matches to return (default: 1, max: 10)"),
		),
		mcp.WithString("country_codes",
			mcp.Description("Comma-separated ISO country codes to restrict the search (e.g. fr,de)"),
		),
		mcp.WithBoolean("prefer_polygon",
			mcp.Description("Prefer polygon boundaries over point geometries (default: true)"),
		),
	)
}

// createRecommendNearbyTool returns the recommend_nearby tool definition
func createRecommendNearbyTool() mcp.Tool {
	return mcp.NewTool("recommend_nearby",
		mcp.WithDescription("Resolve a place, then search for points of interest around its center"),
		mcp.WithString("place",
			mcp.Required(),
			mcp.Description("Place to search around (city, neighborhood, landmark)"),
		),
		mcp.WithString("query",
			mcp.Description("What to look for (default: restaurants)"),
		),
		mcp.WithNumber("radius_km",
			mcp.Description("Search radius in kilometers (default: 2, max: 5)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default: 10, max: 20)"),
		),
		mcp.WithNumber("min_rating",
			mcp.Description("Only keep results rated at least this (0-10 scale)"),
		),
	)
}

// createGeocodeAddressTool returns the geocode_address tool definition
func createGeocodeAddressTool() mcp.Tool {
	return mcp.NewTool("geocode_address",
		mcp.WithDescription("Resolve a street address to a single coordinate"),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("Street address to geocode"),
		),
		mcp.WithNumber("near_lat",
			mcp.Description("Optional latitude to bias the search toward"),
		),
		mcp.WithNumber("near_lon",
			mcp.Description("Optional longitude to bias the search toward"),
		),
	)
}

// createNearbyCategoryTool returns the nearby_category tool definition
func createNearbyCategoryTool() mcp.Tool {
	return mcp.NewTool("nearby_category",
		mcp.WithDescription("Search for hotels, restaurants or attractions around a coordinate"),
		mcp.WithNumber("lat",
			mcp.Required(),
			mcp.Description("Latitude of the search center"),
		),
		mcp.WithNumber("lon",
			mcp.Required(),
			mcp.Description("Longitude of the search center"),
		),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("One of: hotels, restaurants, attractions"),
		),
		mcp.WithNumber("radius_km",
			mcp.Description("Search radius in kilometers (default: 2)"),
		),
	)
}
