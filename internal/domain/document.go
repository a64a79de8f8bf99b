package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductDocument is the denormalized search-index representation of a
// Product. The document id is the product id. Every field is always
// serialized: an absent relation is written as null, never omitted.
type ProductDocument struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`

	CurrencyID   *int64  `json:"currency_id"`
	CurrencyCode *string `json:"currency_code"`
	UnitID       *int64  `json:"unit_id"`
	UnitName     *string `json:"unit_name"`
	ShelfID      *int64  `json:"shelf_id"`
	ShelfName    *string `json:"shelf_name"`
	CategoryID   *int64  `json:"category_id"`
	CategoryName *string `json:"category_name"`

	Certifications     []CertificationInfo `json:"certifications"`
	CertificationIDs   []int64             `json:"certification_ids"`
	CertificationNames []string            `json:"certification_names"`

	MainImageID  *string   `json:"main_image_id"`
	MainImageURL *string   `json:"main_image_url"`
	IsFresh      bool      `json:"is_fresh"`
	ProducerID   int64     `json:"producer_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	IsDeleted    bool      `json:"is_deleted"`
}

// CertificationInfo pairs a certification id with its label inside a document.
type CertificationInfo struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}
