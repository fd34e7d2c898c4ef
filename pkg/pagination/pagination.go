package pagination

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 200
)

// Params are the page window requested through ?page= and ?limit=.
type Params struct {
	Page  int
	Limit int
}

// Offset is the index of the first item on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Metadata describes the page returned next to a list.
type Metadata struct {
	TotalItems  int  `json:"totalItems"`
	CurrentPage int  `json:"currentPage"`
	PageSize    int  `json:"pageSize"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// Extract reads the page window from the query string. Missing or malformed
// values fall back to the defaults and the limit is capped at MaxLimit.
func Extract(c *gin.Context) Params {
	page := parsePositiveInt(c.Query("page"), DefaultPage)
	limit := parsePositiveInt(c.Query("limit"), DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Requested reports whether the caller asked for a page at all.
func Requested(c *gin.Context) bool {
	return c.Query("page") != "" || c.Query("limit") != ""
}

// Slice returns the items on the requested page and its metadata. A page past
// the end yields an empty slice.
func Slice[T any](items []T, params Params) ([]T, Metadata) {
	total := len(items)
	meta := MetadataFrom(total, params)

	start := params.Offset()
	if start >= total {
		return []T{}, meta
	}
	end := start + params.Limit
	if end > total {
		end = total
	}
	return items[start:end], meta
}

// MetadataFrom builds page metadata for total items.
func MetadataFrom(total int, params Params) Metadata {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}

	return Metadata{
		TotalItems:  total,
		CurrentPage: params.Page,
		PageSize:    params.Limit,
		TotalPages:  totalPages,
		HasNextPage: params.Page < totalPages,
		HasPrevPage: params.Page > 1,
	}
}

func parsePositiveInt(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
