package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// TileSortFields contains allowed sort fields for tiles
var TileSortFields = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"size":        true,
	"coverage":    true,
	"box_packing": true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"phone":         true,
	"total_pending": true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"invoice_date":    true,
	"invoice_number":  true,
	"customer_name":   true,
	"status":          true,
	"grand_total":     true,
	"pending_balance": true,
}

// likeEscape is the LIKE escape character; it needs no quoting on any supported driver.
const likeEscape = "!"

// likePattern escapes LIKE wildcards in user input, lower-cases it and wraps it in %.
// Use it with "LOWER(col) LIKE ? ESCAPE '!'".
func likePattern(search string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(search))) + "%"
}
