package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/carto/internal/models"
)

// formatPlaceResult formats a place resolution as markdown
func formatPlaceResult(query string, result *models.ToolResult) string {
	if !result.OK {
		return formatFailure(result)
	}

	var sb strings.Builder
	features := result.Collection.Features
	sb.WriteString(fmt.Sprintf("## Matches for \"%s\" (%d results)\n\n", query, len(features)))

	if len(features) == 0 {
		sb.WriteString("No matching place found.\n")
		return sb.String()
	}

	for i, f := range features {
		sb.WriteString(fmt.Sprintf("### %d. %s\n", i+1, featureName(f)))
		if kind, ok := f.Properties["type"].(string); ok && kind != "" {
			sb.WriteString(fmt.Sprintf("**Type:** %s\n", kind))
		}
		if f.Geometry != nil {
			sb.WriteString(fmt.Sprintf("**Geometry:** %s\n", f.Geometry.Type))
			if coord, err := f.Geometry.Point(); err == nil {
				sb.WriteString(fmt.Sprintf("**Coordinates:** lat %.5f, lon %.5f\n", coord[1], coord[0]))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(formatGeoJSON(result.Collection))
	return sb.String()
}

// formatPOIResult formats a POI search as markdown
func formatPOIResult(result *models.ToolResult) string {
	if !result.OK {
		return formatFailure(result)
	}

	var sb strings.Builder
	features := result.Collection.Features

	count := 0
	var rows strings.Builder
	for _, f := range features {
		if category, ok := f.Properties["category"].(string); ok && category == "search-center" {
			sb.WriteString(fmt.Sprintf("**Search center:** %s\n\n", featureName(f)))
			continue
		}
		count++
		rows.WriteString(fmt.Sprintf("%d. **%s**", count, featureName(f)))
		if rating, ok := f.Properties["rating"].(float64); ok {
			rows.WriteString(fmt.Sprintf(" - rated %.1f", rating))
		}
		if address, ok := f.Properties["address"].(string); ok && address != "" {
			rows.WriteString(fmt.Sprintf(", %s", address))
		}
		rows.WriteString("\n")
	}

	header := fmt.Sprintf("## Nearby Results (%d results)\n\n", count)
	if count == 0 {
		return header + sb.String() + "No results found.\n"
	}

	return header + sb.String() + rows.String() + "\n" + formatGeoJSON(result.Collection)
}

// formatFailure formats an in-band failure as markdown
func formatFailure(result *models.ToolResult) string {
	if result.Status != 0 {
		return fmt.Sprintf("Lookup failed (HTTP %d): %s\n", result.Status, result.Error)
	}
	return fmt.Sprintf("Lookup failed: %s\n", result.Error)
}

// formatGeoJSON attaches the raw collection so MCP clients can render it
func formatGeoJSON(collection *models.FeatureCollection) string {
	payload, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return ""
	}
	return fmt.Sprintf("### GeoJSON\n\n```json\n%s\n```\n", string(payload))
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
