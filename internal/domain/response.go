package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductResponse is the API representation of a product, projected from a
// ProductDocument for both search results and direct reads.
type ProductResponse struct {
	ID             int64              `json:"id"`
	Title          string             `json:"title"`
	Description    *string            `json:"description"`
	Price          decimal.Decimal    `json:"price"`
	Currency       *CurrencyRef       `json:"currency"`
	Unit           *UnitRef           `json:"unit"`
	Shelf          *ShelfRef          `json:"shelf"`
	Category       *CategoryRef       `json:"category"`
	Certifications []CertificationRef `json:"certifications"`
	MainImageID    *string            `json:"main_image_id"`
	MainImageURL   *string            `json:"main_image_url"`
	IsFresh        bool               `json:"is_fresh"`
	ProducerID     int64              `json:"producer_id"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	IsDeleted      bool               `json:"is_deleted"`
}

// CurrencyRef is the embedded currency of a ProductResponse.
type CurrencyRef struct {
	ID   int64   `json:"id"`
	Code *string `json:"code"`
}

// UnitRef is the embedded unit of a ProductResponse.
type UnitRef struct {
	ID    int64   `json:"id"`
	Label *string `json:"label"`
}

// ShelfRef is the embedded shelf of a ProductResponse.
type ShelfRef struct {
	ID    int64   `json:"id"`
	Label *string `json:"label"`
}

// CategoryRef is the embedded category of a ProductResponse.
type CategoryRef struct {
	ID   int64   `json:"id"`
	Name *string `json:"name"`
}

// CertificationRef is an embedded certification of a ProductResponse.
type CertificationRef struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}
