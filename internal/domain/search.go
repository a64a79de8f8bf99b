package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Sort keys accepted by product search.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortDateAsc   = "date_asc"
	SortDateDesc  = "date_desc"
	SortTitleAsc  = "title_asc"
	SortTitleDesc = "title_desc"
)

// DefaultSort applies to any missing, blank or unrecognized sort key.
const DefaultSort = SortDateDesc

// Page sizes.
const (
	DefaultPageSize       = 20
	MaxPageSize           = 200
	DefaultSuggestionSize = 10
)

// MaxResultWindow is the deepest hit (from + size) a search may reach.
// Elasticsearch refuses anything past index.max_result_window.
const MaxResultWindow = 10000

// SortSpec is a resolved sort key.
type SortSpec struct {
	Field string // title, price or created_at
	Desc  bool
}

var sortSpecs = map[string]SortSpec{
	SortPriceAsc:  {Field: "price"},
	SortPriceDesc: {Field: "price", Desc: true},
	SortDateAsc:   {Field: "created_at"},
	SortDateDesc:  {Field: "created_at", Desc: true},
	SortTitleAsc:  {Field: "title"},
	SortTitleDesc: {Field: "title", Desc: true},
}

// NormalizeSort maps a raw sort key to one of the recognized keys,
// case-insensitively, falling back to DefaultSort.
func NormalizeSort(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := sortSpecs[key]; ok {
		return key
	}
	return DefaultSort
}

// ResolveSort returns the field and direction for a raw sort key.
func ResolveSort(raw string) SortSpec {
	return sortSpecs[NormalizeSort(raw)]
}

// SearchRequest is a structured product search.
type SearchRequest struct {
	Q                string           `json:"q"`
	CategoryIDs      []int64          `json:"category_ids"`
	PriceMin         *decimal.Decimal `json:"price_min" validate:"omitempty,dgte0"`
	PriceMax         *decimal.Decimal `json:"price_max" validate:"omitempty,dgte0"`
	CurrencyID       *int64           `json:"currency_id"`
	Fresh            *bool            `json:"fresh"`
	CertificationIDs []int64          `json:"certification_ids"`
	OnlyDeleted      *bool            `json:"only_deleted"`
	Sort             string           `json:"sort"`
	Page             *int             `json:"page" validate:"omitempty,gte=0"`
	Size             *int             `json:"size" validate:"omitempty,gt=0"`
}

// HasText reports whether the request carries a non-blank free-text term.
func (r *SearchRequest) HasText() bool {
	return strings.TrimSpace(r.Q) != ""
}

// WantsDeleted reports whether only soft-deleted documents are requested.
func (r *SearchRequest) WantsDeleted() bool {
	return r.OnlyDeleted != nil && *r.OnlyDeleted
}

// WantsFresh reports whether the freshness filter applies.
func (r *SearchRequest) WantsFresh() bool {
	return r.Fresh != nil && *r.Fresh
}

// PageAndSize returns the 0-based page and the page size with defaults applied.
func (r *SearchRequest) PageAndSize() (int, int) {
	return pageAndSize(r.Page, r.Size)
}

// ProducerQuery lists one producer's products, newest first.
type ProducerQuery struct {
	ProducerID  int64
	ShelfID     *int64
	OnlyDeleted bool
	Page        int
	Size        int
}

// PageAndSize returns the 0-based page and the page size with defaults applied.
func (q *ProducerQuery) PageAndSize() (int, int) {
	return pageAndSize(&q.Page, &q.Size)
}

func pageAndSize(page, size *int) (int, int) {
	p, s := 0, DefaultPageSize
	if page != nil && *page > 0 {
		p = *page
	}
	if size != nil && *size > 0 {
		s = *size
	}
	if s > MaxPageSize {
		s = MaxPageSize
	}
	return p, s
}

// WithinResultWindow reports whether (page+1)*size stays inside
// MaxResultWindow. It never overflows.
func WithinResultWindow(page, size int) bool {
	if page < 0 || size <= 0 {
		return false
	}
	return page < MaxResultWindow/size
}

// SearchHits is one page of matching documents as returned by the index.
type SearchHits struct {
	Documents []ProductDocument
	Total     int64
	Page      int
	Size      int
}

// Suggestion is an autocomplete hit.
type Suggestion struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	ImageURL *string `json:"image_url"`
}
