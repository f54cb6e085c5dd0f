package tools

import (
	"fmt"
	"strings"

	"github.com/ternarybob/carto/internal/models"
)

// formatPlaceResult summarizes a place resolution for the agent. Geometry is
// kept out of the text; the model only needs names and coordinates, the map
// gets the real shapes.
func formatPlaceResult(result *models.ToolResult) string {
	if !result.OK {
		return formatFailure(result)
	}
	if result.Collection == nil || len(result.Collection.Features) == 0 {
		return "No matching place found."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Found %d match(es), now shown on the map:\n", len(result.Collection.Features)))
	for i, f := range result.Collection.Features {
		b.WriteString(fmt.Sprintf("%d. %s", i+1, featureName(f)))
		if kind, ok := f.Properties["type"].(string); ok && kind != "" {
			b.WriteString(fmt.Sprintf(" (%s)", kind))
		}
		if coord := featureCoordinate(f); coord != "" {
			b.WriteString(" at " + coord)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// formatPOIResult summarizes a POI search for the agent.
func formatPOIResult(result *models.ToolResult) string {
	if !result.OK {
		return formatFailure(result)
	}
	if result.Collection == nil || len(result.Collection.Features) == 0 {
		return "No results found."
	}

	var b strings.Builder
	count := 0
	for _, f := range result.Collection.Features {
		if category, ok := f.Properties["category"].(string); ok && category == "search-center" {
			b.WriteString(fmt.Sprintf("Search center: %s\n", featureName(f)))
			continue
		}
		count++
		b.WriteString(fmt.Sprintf("%d. %s", count, featureName(f)))
		if rating, ok := f.Properties["rating"].(float64); ok {
			b.WriteString(fmt.Sprintf(" - rated %.1f", rating))
		}
		if address, ok := f.Properties["address"].(string); ok && address != "" {
			b.WriteString(", " + address)
		}
		b.WriteString("\n")
	}
	if count == 0 {
		return "No results found."
	}
	return fmt.Sprintf("Found %d result(s), now shown on the map:\n%s", count, b.String())
}

func formatFailure(result *models.ToolResult) string {
	if result.Status > 0 {
		return fmt.Sprintf("Lookup failed (HTTP %d): %s", result.Status, result.Error)
	}
	return "Lookup failed: " + result.Error
}

func featureName(f models.Feature) string {
	if name, ok := f.Properties["display_name"].(string); ok && name != "" {
		return name
	}
	if name, ok := f.Properties["name"].(string); ok && name != "" {
		return name
	}
	return "(unnamed)"
}

func featureCoordinate(f models.Feature) string {
	if f.Geometry == nil {
		return ""
	}
	coord, err := f.Geometry.Point()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("lat %.5f, lon %.5f", coord[1], coord[0])
}
