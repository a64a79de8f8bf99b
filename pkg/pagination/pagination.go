// Package pagination handles zero-based page/size query parameters and the
// page envelope returned by list and search endpoints.
package pagination

import (
	"net/http"

	"github.com/gorilla/schema"
)

const (
	DefaultSize = 20
	MaxSize     = 200
)

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// Params holds a zero-based page number and a page size.
type Params struct {
	Page int `schema:"page" json:"page"`
	Size int `schema:"size" json:"size"`
}

// DefaultParams returns page 0 with DefaultSize items.
func DefaultParams() Params {
	return Params{Page: 0, Size: DefaultSize}
}

// Normalize clamps negative pages to 0 and out-of-range sizes to the default
// or MaxSize.
func (p Params) Normalize() Params {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	return p.Page * p.Size
}

// FromRequest reads page and size from the query string. Malformed values fall
// back to the defaults.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()
	var q Params
	if err := decoder.Decode(&q, r.URL.Query()); err == nil {
		if r.URL.Query().Has("page") {
			p.Page = q.Page
		}
		if r.URL.Query().Has("size") {
			p.Size = q.Size
		}
	}
	return p.Normalize()
}

// Page is a slice of results plus paging metadata.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	CurrentPage   int   `json:"current_page"`
	PageSize      int   `json:"page_size"`
}

// TotalPages returns ceil(total/size), or 0 when size is not positive.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	n := total / int64(size)
	if total%int64(size) != 0 {
		n++
	}
	return int(n)
}

// NewPage builds a Page. A nil content slice is reported as empty.
func NewPage[T any](content []T, total int64, p Params) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    TotalPages(total, p.Size),
		CurrentPage:   p.Page,
		PageSize:      p.Size,
	}
}
