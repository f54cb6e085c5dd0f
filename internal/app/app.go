// Package app wires configuration, provider clients, resolvers, the chat
// agent, and HTTP handlers into one runnable application.
package app

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/carto/internal/common"
	"github.com/ternarybob/carto/internal/geocache"
	"github.com/ternarybob/carto/internal/handlers"
	"github.com/ternarybob/carto/internal/interfaces"
	"github.com/ternarybob/carto/internal/models"
	"github.com/ternarybob/carto/internal/services/chat"
	"github.com/ternarybob/carto/internal/services/foursquare"
	"github.com/ternarybob/carto/internal/services/llm"
	"github.com/ternarybob/carto/internal/services/nominatim"
	"github.com/ternarybob/carto/internal/services/places"
	"github.com/ternarybob/carto/internal/services/recommend"
	"github.com/ternarybob/carto/internal/services/tools"
	"github.com/ternarybob/carto/internal/services/tripadvisor"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Provider clients
	NominatimClient   *nominatim.Client
	FoursquareClient  *foursquare.Client
	TripAdvisorClient *tripadvisor.Client

	// Geometry resolvers
	PlacesService    interfaces.PlaceResolver
	RecommendService interfaces.RecommendService
	NearbyService    interfaces.NearbyService

	// Chat agent
	LLMService  interfaces.LLMService
	ChatService interfaces.ChatService

	// Tool surface shared by the chat agent and the MCP server
	MapService *tools.MapService
	ToolRouter *tools.ToolRouter

	// HTTP handlers
	APIHandler  *handlers.APIHandler
	WSHandler   *handlers.WebSocketHandler
	ChatHandler *handlers.ChatHandler
	MapHandler  *handlers.MapHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// WebSocket handler first: it is the renderer every tool call pushes to
	app.WSHandler = handlers.NewWebSocketHandler(logger)

	if err := app.initResolvers(); err != nil {
		return nil, fmt.Errorf("failed to initialize resolvers: %w", err)
	}

	app.MapService = tools.NewMapService(
		app.PlacesService,
		app.RecommendService,
		app.NearbyService,
		app.WSHandler,
		logger,
	)
	app.ToolRouter = tools.NewToolRouter(app.MapService, logger)

	app.initChat()

	app.APIHandler = handlers.NewAPIHandler(logger)
	app.ChatHandler = handlers.NewChatHandler(app.ChatService, logger)
	app.MapHandler = handlers.NewMapHandler(app.PlacesService, app.RecommendService, app.NearbyService, logger)

	logger.Info().Msg("Application initialized")
	return app, nil
}

// initResolvers builds the provider clients and the resolver services on
// top of them. Each resolver gets its own bounded result cache.
func (a *App) initResolvers() error {
	cfg := a.Config

	nominatimClient, err := nominatim.NewClient(cfg.Nominatim.UserAgent,
		nominatim.WithBaseURL(cfg.Nominatim.BaseURL),
		nominatim.WithRequestSpacing(cfg.Nominatim.RateLimit),
		nominatim.WithLogger(a.Logger),
	)
	if err != nil {
		return err
	}
	a.NominatimClient = nominatimClient

	a.FoursquareClient = foursquare.NewClient(cfg.Foursquare.APIKey,
		foursquare.WithBaseURL(cfg.Foursquare.BaseURL),
		foursquare.WithAPIVersion(cfg.Foursquare.APIVersion),
		foursquare.WithLogger(a.Logger),
	)

	a.PlacesService = places.NewService(
		nominatimClient,
		newResultCache(cfg),
		cfg.Cache.FailureTTL,
		a.Logger,
	)

	a.RecommendService = recommend.NewService(
		a.PlacesService,
		a.FoursquareClient,
		newResultCache(cfg),
		cfg.Cache.FailureTTL,
		a.Logger,
	)

	// The secondary provider is optional; without credentials the nearby
	// tool is simply not offered.
	if cfg.TripAdvisor.APIKey != "" {
		a.TripAdvisorClient = tripadvisor.NewClient(cfg.TripAdvisor.APIKey,
			tripadvisor.WithBaseURL(cfg.TripAdvisor.BaseURL),
			tripadvisor.WithLogger(a.Logger),
		)

		addressCache := geocache.New[[]float64](cfg.Cache.Capacity, cfg.Cache.AddressTTL)
		a.NearbyService = tripadvisor.NewService(
			a.TripAdvisorClient,
			nominatimClient,
			newResultCache(cfg),
			addressCache,
			cfg.TripAdvisor.GeocodePause,
			cfg.Cache.FailureTTL,
			a.Logger,
		)
	} else {
		a.Logger.Warn().Msg("TripAdvisor API key not configured, nearby category search disabled")
	}

	return nil
}

// initChat wires the Claude-backed agent loop, or a disabled stand-in when
// no credentials are present.
func (a *App) initChat() {
	if a.Config.Claude.APIKey == "" {
		a.Logger.Warn().Msg("Anthropic API key not configured, chat agent disabled")
		a.ChatService = chat.NewDisabledService("no Anthropic API key configured")
		return
	}

	llmService, err := llm.NewClaudeService(&a.Config.Claude, a.Logger)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to initialize Claude service, chat agent disabled")
		a.ChatService = chat.NewDisabledService(err.Error())
		return
	}
	a.LLMService = llmService

	agentConfig := chat.DefaultAgentConfig()
	if a.Config.Claude.MaxTurns > 0 {
		agentConfig.MaxTurns = a.Config.Claude.MaxTurns
	}
	if timeout, err := time.ParseDuration(a.Config.Claude.Timeout); err == nil && timeout > 0 {
		agentConfig.Timeout = timeout
	}

	agentLoop := chat.NewAgentLoop(a.ToolRouter, llmService, a.Logger, agentConfig)
	a.ChatService = chat.NewChatService(agentLoop, llmService, a.Config.Claude.Model, a.Logger)
}

// Close releases application resources
func (a *App) Close() error {
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}
	a.Logger.Info().Msg("Application closed")
	return nil
}

func newResultCache(cfg *common.Config) *geocache.Cache[*models.ToolResult] {
	return geocache.New[*models.ToolResult](cfg.Cache.Capacity, cfg.Cache.TTL)
}
