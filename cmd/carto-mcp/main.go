package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/carto/internal/common"
	"github.com/ternarybob/carto/internal/geocache"
	"github.com/ternarybob/carto/internal/models"
	"github.com/ternarybob/carto/internal/services/foursquare"
	"github.com/ternarybob/carto/internal/services/nominatim"
	"github.com/ternarybob/carto/internal/services/places"
	"github.com/ternarybob/carto/internal/services/recommend"
	"github.com/ternarybob/carto/internal/services/tripadvisor"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CARTO_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("carto.toml"); err == nil {
			configPath = "carto.toml"
		}
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize minimal logger for MCP server (console only, no file output)
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn") // Minimal logging to avoid cluttering MCP stdio

	// Initialize geometry resolvers
	nominatimClient, err := nominatim.NewClient(config.Nominatim.UserAgent,
		nominatim.WithBaseURL(config.Nominatim.BaseURL),
		nominatim.WithRequestSpacing(config.Nominatim.RateLimit),
		nominatim.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize geocoding client")
	}

	foursquareClient := foursquare.NewClient(config.Foursquare.APIKey,
		foursquare.WithBaseURL(config.Foursquare.BaseURL),
		foursquare.WithAPIVersion(config.Foursquare.APIVersion),
		foursquare.WithLogger(logger),
	)

	placesService := places.NewService(
		nominatimClient,
		geocache.New[*models.ToolResult](config.Cache.Capacity, config.Cache.TTL),
		config.Cache.FailureTTL,
		logger,
	)

	recommendService := recommend.NewService(
		placesService,
		foursquareClient,
		geocache.New[*models.ToolResult](config.Cache.Capacity, config.Cache.TTL),
		config.Cache.FailureTTL,
		logger,
	)

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"carto",
		common.GetVersion(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	// Register map tools
	mcpServer.AddTool(createFindPlaceTool(), handleFindPlace(placesService, logger))
	mcpServer.AddTool(createRecommendNearbyTool(), handleRecommendNearby(recommendService, logger))
	mcpServer.AddTool(createGeocodeAddressTool(), handleGeocodeAddress(nominatimClient, logger))

	// The category search tool is only offered when credentials are present.
	if config.TripAdvisor.APIKey != "" {
		tripadvisorClient := tripadvisor.NewClient(config.TripAdvisor.APIKey,
			tripadvisor.WithBaseURL(config.TripAdvisor.BaseURL),
			tripadvisor.WithLogger(logger),
		)
		nearbyService := tripadvisor.NewService(
			tripadvisorClient,
			nominatimClient,
			geocache.New[*models.ToolResult](config.Cache.Capacity, config.Cache.TTL),
			geocache.New[[]float64](config.Cache.Capacity, config.Cache.AddressTTL),
			config.TripAdvisor.GeocodePause,
			config.Cache.FailureTTL,
			logger,
		)
		mcpServer.AddTool(createNearbyCategoryTool(), handleNearbyCategory(nearbyService, logger))
	}

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
