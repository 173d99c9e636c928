package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort direction to ASC or DESC.
// Returns "DESC" if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against an allow-list.
// Returns the defaultField if the input is empty or not listed, so
// request-supplied column names never reach the ORDER BY clause raw.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// clientSortFields contains allowed sort fields for clients
var clientSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"email":      true,
	"status":     true,
	"risk_level": true,
}

// invoiceSortFields contains allowed sort fields for invoices
var invoiceSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"number":     true,
	"status":     true,
	"total":      true,
	"issue_date": true,
	"due_date":   true,
}

// saleSortFields contains allowed sort fields for sales
var saleSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"product":    true,
	"total":      true,
	"sale_date":  true,
	"status":     true,
}
