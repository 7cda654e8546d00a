package httputil

import (
	"net/http"
	"reflect"
	"strconv"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PageParams are the normalized pagination query parameters.
type PageParams struct {
	Page    int
	PerPage int
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ParsePageParams reads page/per_page from the query string, clamping
// page to >= 1 and per_page to [1, 100].
func ParsePageParams(r *http.Request) PageParams {
	page := DefaultPage
	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page = v
		}
	}
	if page < 1 {
		page = 1
	}

	perPage := DefaultPerPage
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			perPage = v
		}
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	return PageParams{Page: page, PerPage: perPage}
}

// PageResponse is the pagination envelope returned by list endpoints.
type PageResponse struct {
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
	Total   int         `json:"total"`
	Pages   int         `json:"pages"`
	Items   interface{} `json:"items"`
}

// NewPageResponse computes the page count as ceil(total / per_page).
// A nil item slice is normalized so an empty page serializes as [],
// never null.
func NewPageResponse(params PageParams, total int, items interface{}) PageResponse {
	pages := (total + params.PerPage - 1) / params.PerPage
	if v := reflect.ValueOf(items); v.Kind() == reflect.Slice && v.IsNil() {
		items = reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return PageResponse{
		Page:    params.Page,
		PerPage: params.PerPage,
		Total:   total,
		Pages:   pages,
		Items:   items,
	}
}
