package interfaces

import (
	"github.com/ternarybob/carto/internal/models"
)

// Renderer is the map-rendering collaborator boundary. Implementations
// replace or create the named data layer, refresh markers from feature
// properties, and fit the viewport to the collection's coordinates.
type Renderer interface {
	RenderLayer(layer string, collection *models.FeatureCollection)

	// RenderError surfaces a lookup failure to connected clients so the map
	// UI can show it alongside the chat transcript.
	RenderError(message string)
}
