package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/carto/internal/common"
	"github.com/ternarybob/carto/internal/geo"
	"github.com/ternarybob/carto/internal/interfaces"
	"github.com/ternarybob/carto/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is the envelope of every message pushed to map clients
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// MapLayerUpdate replaces the contents of a named map layer with a new
// feature collection. Clients re-render the layer and fit the viewport to
// its coordinates.
type MapLayerUpdate struct {
	Layer      string                    `json:"layer"`
	Collection *models.FeatureCollection `json:"collection"`
	Bounds     []float64                 `json:"bounds,omitempty"` // [minLon, minLat, maxLon, maxLat]
	Timestamp  time.Time                 `json:"timestamp"`
}

// StatusUpdate is sent on connect and on demand
type StatusUpdate struct {
	Service          string `json:"service"`
	Version          string `json:"version"`
	Status           string `json:"status"`
	ServerInstanceID string `json:"serverInstanceId"` // Unique ID per server startup - clients clear layers on change
}

// WebSocketHandler pushes map layer updates to connected clients. It is the
// process-wide Renderer implementation: tool successes flow through
// RenderLayer onto every open map.
type WebSocketHandler struct {
	logger           arbor.ILogger
	clients          map[*websocket.Conn]bool
	clientMutex      map[*websocket.Conn]*sync.Mutex
	mu               sync.RWMutex
	serverInstanceID string
}

// NewWebSocketHandler creates the WebSocket hub
func NewWebSocketHandler(logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:           logger,
		clients:          make(map[*websocket.Conn]bool),
		clientMutex:      make(map[*websocket.Conn]*sync.Mutex),
		serverInstanceID: uuid.New().String(),
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized with server instance ID")

	return h
}

// HandleWebSocket handles WebSocket connections
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = &sync.Mutex{}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Msgf("WebSocket client connected (total: %d)", clientCount)

	// Send initial status
	h.sendStatus(conn)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		delete(h.clientMutex, conn)
		remaining := len(h.clients)
		h.mu.Unlock()

		conn.Close()
		h.logger.Debug().Msgf("WebSocket client disconnected (remaining: %d)", remaining)
	}()

	// Read messages from client (keep connection alive)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}
	}
}

// RenderLayer broadcasts a map layer replacement to all connected clients.
func (h *WebSocketHandler) RenderLayer(layer string, collection *models.FeatureCollection) {
	update := MapLayerUpdate{
		Layer:      layer,
		Collection: collection,
		Timestamp:  time.Now(),
	}
	if box, ok := geo.FitBounds(collection); ok {
		update.Bounds = []float64{box.MinLon, box.MinLat, box.MaxLon, box.MaxLat}
	}

	h.logger.Debug().
		Str("layer", layer).
		Int("features", len(collection.Features)).
		Msg("Broadcasting map layer update")

	h.broadcast(WSMessage{Type: "map_layer", Payload: update})
}

// RenderError surfaces a lookup failure to all connected clients so the map
// UI can display it next to the chat transcript.
func (h *WebSocketHandler) RenderError(message string) {
	h.logger.Debug().Str("error", message).Msg("Broadcasting chat error")
	h.broadcast(WSMessage{Type: "chat_error", Payload: map[string]string{"message": message}})
}

// BroadcastStatus sends status updates to all connected clients
func (h *WebSocketHandler) BroadcastStatus(status string) {
	h.broadcast(WSMessage{Type: "status", Payload: h.statusPayload(status)})
}

// ClientCount returns the number of connected clients
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *WebSocketHandler) statusPayload(status string) StatusUpdate {
	return StatusUpdate{
		Service:          "carto",
		Version:          common.Version,
		Status:           status,
		ServerInstanceID: h.serverInstanceID,
	}
}

func (h *WebSocketHandler) sendStatus(conn *websocket.Conn) {
	msg := WSMessage{Type: "status", Payload: h.statusPayload("running")}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal status message")
		return
	}

	h.mu.RLock()
	mutex := h.clientMutex[conn]
	h.mu.RUnlock()
	if mutex == nil {
		return
	}

	mutex.Lock()
	defer mutex.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to send status to client")
	}
}

// broadcast writes a message to every client, serialized per connection so
// concurrent tool calls cannot interleave frames.
func (h *WebSocketHandler) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal WebSocket message")
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	mutexes := make([]*sync.Mutex, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
		mutexes = append(mutexes, h.clientMutex[conn])
	}
	h.mu.RUnlock()

	for i, conn := range clients {
		mutex := mutexes[i]
		mutex.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutex.Unlock()

		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to send message to client")
		}
	}
}

// Ensure WebSocketHandler implements the Renderer interface
var _ interfaces.Renderer = (*WebSocketHandler)(nil)
