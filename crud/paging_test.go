package crud

import (
	"errors"
	"math"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func TestPagedRequest_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   PagedRequest
		want PagedRequest
	}{
		{
			name: "defaults",
			in:   PagedRequest{},
			want: PagedRequest{Page: 1, PageSize: 10, SortBy: "id", SortOrder: "asc"},
		},
		{
			name: "keeps explicit values",
			in:   PagedRequest{Page: 3, PageSize: 50, SortBy: "name", SortOrder: "DESC"},
			want: PagedRequest{Page: 3, PageSize: 50, SortBy: "name", SortOrder: "desc"},
		},
		{
			name: "keeps out of range values for validation",
			in:   PagedRequest{Page: -1, PageSize: 500, SortBy: "  ", SortOrder: " Asc "},
			want: PagedRequest{Page: -1, PageSize: 500, SortBy: "id", SortOrder: "asc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPagedRequest_Validate(t *testing.T) {
	tests := []struct {
		name       string
		req        PagedRequest
		wantFields []string
	}{
		{name: "valid", req: PagedRequest{Page: 1, PageSize: 100, SortBy: "id", SortOrder: "desc"}},
		{name: "negative page", req: PagedRequest{Page: -2, PageSize: 10, SortOrder: "asc"}, wantFields: []string{"page"}},
		{name: "page size too large", req: PagedRequest{Page: 1, PageSize: 101, SortOrder: "asc"}, wantFields: []string{"pageSize"}},
		{name: "bad order", req: PagedRequest{Page: 1, PageSize: 10, SortOrder: "sideways"}, wantFields: []string{"sortOrder"}},
		{
			name:       "several",
			req:        PagedRequest{Page: -1, PageSize: -1, SortOrder: "up"},
			wantFields: []string{"page", "pageSize", "sortOrder"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("expected valid request, got %v", err)
				}
				return
			}

			var errs validation.Errors
			if !errors.As(err, &errs) {
				t.Fatalf("expected validation.Errors, got %T (%v)", err, err)
			}
			if len(errs) != len(tt.wantFields) {
				t.Errorf("expected %d field errors, got %v", len(tt.wantFields), errs)
			}
			for _, f := range tt.wantFields {
				if _, ok := errs[f]; !ok {
					t.Errorf("expected error for %s, got %v", f, errs)
				}
			}
		})
	}
}

func TestPagedRequest_Offset(t *testing.T) {
	tests := []struct {
		page, size, want int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{5, 25, 100},
		{0, 10, 0},
		{3, 0, 0},
		{math.MaxInt, 100, math.MaxInt},
		{184467440737095517, 100, math.MaxInt},
		{math.MaxInt/10 + 1, 10, math.MaxInt / 10 * 10},
	}
	for _, tt := range tests {
		r := PagedRequest{Page: tt.page, PageSize: tt.size}
		if got := r.Offset(); got != tt.want {
			t.Errorf("Offset(page=%d,size=%d) = %d, want %d", tt.page, tt.size, got, tt.want)
		}
	}
}

func TestPagedResult_Pagination(t *testing.T) {
	tests := []struct {
		name      string
		result    PagedResult[int]
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{name: "empty", result: PagedResult[int]{Page: 1, PageSize: 10}, wantPages: 0},
		{name: "exact fit", result: PagedResult[int]{Page: 1, PageSize: 10, TotalCount: 20}, wantPages: 2, wantNext: true},
		{name: "remainder", result: PagedResult[int]{Page: 2, PageSize: 10, TotalCount: 21}, wantPages: 3, wantNext: true, wantPrev: true},
		{name: "last page", result: PagedResult[int]{Page: 3, PageSize: 10, TotalCount: 21}, wantPages: 3, wantPrev: true},
		{name: "zero page size", result: PagedResult[int]{Page: 1, PageSize: 0, TotalCount: 5}, wantPages: 0},
		{name: "page beyond end", result: PagedResult[int]{Page: 9, PageSize: 10, TotalCount: 5}, wantPages: 1, wantPrev: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.TotalPages(); got != tt.wantPages {
				t.Errorf("TotalPages() = %d, want %d", got, tt.wantPages)
			}
			if got := tt.result.HasNextPage(); got != tt.wantNext {
				t.Errorf("HasNextPage() = %v, want %v", got, tt.wantNext)
			}
			if got := tt.result.HasPreviousPage(); got != tt.wantPrev {
				t.Errorf("HasPreviousPage() = %v, want %v", got, tt.wantPrev)
			}
		})
	}
}

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"Customer":        "customer",
		"LineItem":        "line_item",
		"HTTPServer":      "http_server",
		"Item2":           "item_2",
		"Sale[int]":       "sale_int",
		"already_snake":   "already_snake",
		"":                "",
		"*sales.Customer": "sales_customer",
	}

	for in, want := range tests {
		if got := toSnake(in); got != want {
			t.Errorf("toSnake(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEntityName(t *testing.T) {
	if got := entityName[*gadget](); got != "gadget" {
		t.Errorf("expected gadget, got %q", got)
	}
	if got := entityName[gadget](); got != "gadget" {
		t.Errorf("expected gadget, got %q", got)
	}
}
