package models

// Provenance tags identifying which upstream provider produced a result.
const (
	SourceNominatim = "nominatim"
	SourcePOI       = "poi"
)

// ToolResult is the tagged result passed across the tool boundary to the
// orchestrator and onward to the map renderer. Either OK is true and
// Collection is populated, or OK is false and Error carries a message that
// can be rendered directly to the end user.
type ToolResult struct {
	OK         bool               `json:"ok"`
	Source     string             `json:"source,omitempty"`
	Collection *FeatureCollection `json:"collection,omitempty"`
	Error      string             `json:"error,omitempty"`
	Status     int                `json:"status,omitempty"`
}

// SuccessResult builds a success ToolResult with a provenance tag.
func SuccessResult(source string, collection *FeatureCollection) *ToolResult {
	return &ToolResult{OK: true, Source: source, Collection: collection}
}

// FailureResult builds a failure ToolResult carrying a human-readable message.
func FailureResult(message string) *ToolResult {
	return &ToolResult{OK: false, Error: message}
}

// FailureStatusResult builds a failure ToolResult carrying an upstream HTTP status.
func FailureStatusResult(message string, status int) *ToolResult {
	return &ToolResult{OK: false, Error: message, Status: status}
}
