package crud

import (
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	DefaultPage      = 1
	DefaultPageSize  = 10
	MaxPageSize      = 100
	DefaultSortBy    = "id"
	SortAscending    = "asc"
	SortDescending   = "desc"
	DefaultSortOrder = SortAscending
)

// PagedRequest selects one page of a sorted listing.
type PagedRequest struct {
	Page      int    `json:"page" form:"page"`
	PageSize  int    `json:"pageSize" form:"pageSize"`
	SortBy    string `json:"sortBy" form:"sortBy"`
	SortOrder string `json:"sortOrder" form:"sortOrder"`
}

// Normalize fills unset fields with their defaults and lower-cases SortOrder.
// Out-of-range values are kept so Validate can report them.
func (r PagedRequest) Normalize() PagedRequest {
	if r.Page == 0 {
		r.Page = DefaultPage
	}
	if r.PageSize == 0 {
		r.PageSize = DefaultPageSize
	}
	r.SortBy = strings.TrimSpace(r.SortBy)
	if r.SortBy == "" {
		r.SortBy = DefaultSortBy
	}
	r.SortOrder = strings.ToLower(strings.TrimSpace(r.SortOrder))
	if r.SortOrder == "" {
		r.SortOrder = DefaultSortOrder
	}
	return r
}

// Validate checks ranges. Errors are keyed by the json field name.
func (r PagedRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Page, validation.Min(1)),
		validation.Field(&r.PageSize, validation.Min(1), validation.Max(MaxPageSize)),
		validation.Field(&r.SortOrder, validation.In(SortAscending, SortDescending).Error("must be asc or desc")),
	)
}

// Offset is the number of rows skipped before this page. It saturates at
// math.MaxInt so a huge page number selects nothing instead of wrapping.
func (r PagedRequest) Offset() int {
	if r.Page < 1 || r.PageSize < 1 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.PageSize {
		return math.MaxInt
	}
	return (r.Page - 1) * r.PageSize
}

func (r PagedRequest) Descending() bool {
	return strings.EqualFold(r.SortOrder, SortDescending)
}

// PagedResult is one page of data plus the size of the whole set.
type PagedResult[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
}

// TotalPages is ceil(TotalCount/PageSize), or 0 when PageSize is not positive.
func (p PagedResult[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

func (p PagedResult[T]) HasNextPage() bool {
	return p.Page < p.TotalPages()
}

func (p PagedResult[T]) HasPreviousPage() bool {
	return p.Page > 1
}
