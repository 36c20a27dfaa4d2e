package common

import (
	"net/http"
	"strings"
)

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// ParsePagination reads page and limit query values leniently: missing or
// non-positive values fall back to page 1 and the supplied per-page default.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	q := r.URL.Query()
	page = AtoiDefault(strings.TrimSpace(q.Get("page")), 1)
	if page < 1 {
		page = 1
	}
	perPage = AtoiDefault(strings.TrimSpace(q.Get("limit")), defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	return page, perPage
}

// Offset converts a page/per-page pair into a query offset.
func Offset(page, perPage int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * perPage
}
