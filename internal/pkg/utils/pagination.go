package utils

import (
	"errors"
	"math"
)

// DefaultPageSize is the default number of items per page
const DefaultPageSize = 25

// MaxPageSize is the maximum number of items per page
const MaxPageSize = 100

// ErrPageOutOfRange is returned when the offset of a page does not fit in an int
var ErrPageOutOfRange = errors.New("page is out of range")

// PaginationParams contains resolved pagination parameters
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// PageLimits bounds the page size of list endpoints
type PageLimits struct {
	Default int
	Max     int
}

// NormalizePagination applies defaults and limits to a zero based page
func NormalizePagination(page, pageSize int, limits PageLimits) (PaginationParams, error) {
	def := limits.Default
	if def < 1 {
		def = DefaultPageSize
	}
	max := limits.Max
	if max < 1 {
		max = MaxPageSize
	}

	// Enforce limits
	if page < 0 {
		page = 0
	}
	if pageSize < 1 {
		pageSize = def
	}
	if pageSize > max {
		pageSize = max
	}
	if page > math.MaxInt/pageSize {
		return PaginationParams{}, ErrPageOutOfRange
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   page * pageSize,
	}, nil
}

// TotalPages returns the number of pages needed for total items
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
