package persistence

import (
	"fmt"
	"strings"

	"github.com/tutorlink/backend/internal/domain/shared"
	"gorm.io/gorm"
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

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"email":        true,
	"display_name": true,
	"role":         true,
	"status":       true,
	"last_seen_at": true,
}

// TaskSortFields contains allowed sort fields for tasks
var TaskSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"budget":     true,
	"deadline":   true,
	"status":     true,
}

// SessionSortFields contains allowed sort fields for sessions
var SessionSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"starts_at":  true,
	"ends_at":    true,
	"status":     true,
}

// applyPagination applies validated ordering and page windowing to a query.
// The order column falls back to created_at when not whitelisted.
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	return applyPaginationWithFields(query, filter, CommonSortFields)
}

// applyPaginationWithFields applies ordering against an entity-specific whitelist
func applyPaginationWithFields(query *gorm.DB, filter shared.Filter, allowed map[string]bool) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, allowed, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
