package persistence

import (
	"fmt"
	"strings"

	"github.com/rently/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyFilter applies ordering and pagination from a shared.Filter.
// The order column is restricted to known-safe identifiers since it
// ends up interpolated into the ORDER BY clause.
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if orderBy == "" || !isSafeColumn(orderBy) {
		orderBy = "created_at"
	}
	orderDir := strings.ToLower(filter.OrderDir)
	if orderDir != "asc" {
		orderDir = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

func isSafeColumn(name string) bool {
	for _, r := range name {
		if r != '_' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return name != ""
}
