package httpx

import (
	"net/http"
	"strconv"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// Pagination reads the skip/limit query parameters with the documented
// defaults (0/100). Limit is clamped so a caller cannot request an unbounded
// page.
func Pagination(r *http.Request) (skip, limit int) {
	skip = intQuery(r, "skip", 0)
	limit = intQuery(r, "limit", defaultLimit)
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}

// BoolQuery reads a boolean flag query parameter, defaulting when absent.
func BoolQuery(r *http.Request, name string, fallback bool) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func intQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
