package api

import "github.com/goliatone/go-sales-api/crud"

// Envelope wraps every successful body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    any         `json:"data"`
	Meta    *Pagination `json:"meta,omitempty"`
}

type Pagination struct {
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	TotalCount      int  `json:"totalCount"`
	TotalPages      int  `json:"totalPages"`
	CurrentCount    int  `json:"currentCount"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

func NewPagination[T any](p crud.PagedResult[T]) *Pagination {
	return &Pagination{
		Page:            p.Page,
		PageSize:        p.PageSize,
		TotalCount:      p.TotalCount,
		TotalPages:      p.TotalPages(),
		CurrentCount:    len(p.Data),
		HasNextPage:     p.HasNextPage(),
		HasPreviousPage: p.HasPreviousPage(),
	}
}

func success(data any) Envelope {
	return Envelope{Success: true, Data: data}
}
