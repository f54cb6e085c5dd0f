package interfaces

import (
	"context"

	"github.com/ternarybob/carto/internal/models"
)

// PlaceResolver resolves a free-text place name to a best-match geometry.
//
// Failures (validation, missing credentials, upstream errors) are carried in
// the ToolResult failure variant rather than a Go error, so the orchestrator
// can render the message directly to the end user.
type PlaceResolver interface {
	// Resolve executes a geocoding lookup and returns a geometry collection
	// whose features prefer the provider's polygon representation when
	// requested, falling back to point geometries.
	Resolve(ctx context.Context, query models.PlaceQuery) *models.ToolResult
}
