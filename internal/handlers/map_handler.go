package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/carto/internal/interfaces"
	"github.com/ternarybob/carto/internal/models"
)

// MapHandler exposes the geometry resolvers directly over HTTP, bypassing
// the chat agent. Useful for map frontends that drive searches themselves.
type MapHandler struct {
	places    interfaces.PlaceResolver
	recommend interfaces.RecommendService
	nearby    interfaces.NearbyService
	logger    arbor.ILogger
}

// NewMapHandler creates a new map handler. nearby may be nil when the
// secondary provider is not configured.
func NewMapHandler(
	places interfaces.PlaceResolver,
	recommend interfaces.RecommendService,
	nearby interfaces.NearbyService,
	logger arbor.ILogger,
) *MapHandler {
	return &MapHandler{
		places:    places,
		recommend: recommend,
		nearby:    nearby,
		logger:    logger,
	}
}

// PlaceSearchHandler handles POST /api/places/search requests
func (h *MapHandler) PlaceSearchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var query models.PlaceQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	h.writeToolResult(w, h.places.Resolve(r.Context(), query))
}

// RecommendHandler handles POST /api/recommend requests
func (h *MapHandler) RecommendHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var query models.RecommendQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	h.writeToolResult(w, h.recommend.Recommend(r.Context(), query))
}

// NearbyHandler handles POST /api/nearby requests
func (h *MapHandler) NearbyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.nearby == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]interface{}{
			"success": false,
			"error":   "Nearby provider is not configured",
		})
		return
	}

	var query models.NearbyQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	h.writeToolResult(w, h.nearby.NearbyByCategory(r.Context(), query))
}

// writeToolResult maps the in-band result to HTTP: failures are 200s with
// ok=false, since they are expected outcomes, not transport errors.
func (h *MapHandler) writeToolResult(w http.ResponseWriter, result *models.ToolResult) {
	writeJSON(w, http.StatusOK, result)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
