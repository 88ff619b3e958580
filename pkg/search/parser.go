package search

import (
	"strings"
)

// SearchFilters holds the extracted filters and the remaining clean query
type SearchFilters struct {
	NotebookName string
	SheetTitle   string
	SearchQuery  string // The remaining text to search in names, titles and content
}

// ParseQuery extracts slash commands from the raw query string
// Supported:
// /nb:<term> OR /in:<term> -> Filter by Notebook Name
// /sheet:<term>            -> Filter by Sheet Title
// <text>                   -> Remaining text is the SearchQuery
func ParseQuery(raw string) SearchFilters {
	filters := SearchFilters{}
	parts := strings.Fields(raw)
	var cleanParts []string

	for _, part := range parts {
		lowerPart := strings.ToLower(part)

		switch {
		case strings.HasPrefix(lowerPart, "/nb:"):
			filters.NotebookName = strings.TrimPrefix(lowerPart, "/nb:")
		case strings.HasPrefix(lowerPart, "/in:"):
			filters.NotebookName = strings.TrimPrefix(lowerPart, "/in:")
		case strings.HasPrefix(lowerPart, "/sheet:"):
			filters.SheetTitle = strings.TrimPrefix(lowerPart, "/sheet:")
		default:
			cleanParts = append(cleanParts, part)
		}
	}

	filters.SearchQuery = strings.Join(cleanParts, " ")
	return filters
}

// IsEmpty reports whether the query carries nothing to match on.
func (f SearchFilters) IsEmpty() bool {
	return f.NotebookName == "" && f.SheetTitle == "" && strings.TrimSpace(f.SearchQuery) == ""
}
