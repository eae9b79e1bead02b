package common

import "net/http"

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// ParsePagination extracts page and per-page parameters from query values.
// per_page takes precedence over limit; non-positive values fall back to the defaults.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	q := r.URL.Query()
	page = AtoiDefault(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	perPage = AtoiDefault(q.Get("per_page"), AtoiDefault(q.Get("limit"), defaultPerPage))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	return page, perPage
}
