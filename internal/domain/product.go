package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the system-of-record catalog entry. The relation pointers
// (Currency, Unit, Shelf, Category) and Certifications are populated when the
// product is loaded as a graph; a nil Certifications slice means the
// relation was not loaded, an empty one means the product has none.
type Product struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  *string         `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CurrencyID   int64           `json:"currency_id"`
	UnitID       int64           `json:"unit_id"`
	ShelfID      int64           `json:"shelf_id"`
	CategoryID   *int64          `json:"category_id"`
	IsFresh      bool            `json:"is_fresh"`
	ProducerID   int64           `json:"producer_id"`
	MainImageID  *uuid.UUID      `json:"main_image_id"`
	MainImageURL *string         `json:"main_image_url"`
	IsDeleted    bool            `json:"is_deleted"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Currency       *Currency       `json:"-"`
	Unit           *Unit           `json:"-"`
	Shelf          *Shelf          `json:"-"`
	Category       *Category       `json:"-"`
	Certifications []Certification `json:"-"`
}

// ProductInput holds the parameters for creating or replacing a product.
type ProductInput struct {
	Title            string          `json:"title" validate:"required,min=1,max=200"`
	Description      *string         `json:"description"`
	Price            decimal.Decimal `json:"price" validate:"dgte0"`
	CurrencyID       int64           `json:"currency_id" validate:"required,gt=0"`
	UnitID           int64           `json:"unit_id" validate:"required,gt=0"`
	ShelfID          int64           `json:"shelf_id" validate:"required,gt=0"`
	CategoryID       *int64          `json:"category_id" validate:"omitempty,gt=0"`
	CertificationIDs []int64         `json:"certification_ids" validate:"omitempty,dive,gt=0"`
	IsFresh          bool            `json:"is_fresh"`
	ProducerID       int64           `json:"producer_id" validate:"required,gt=0"`
}

// CertificationIDs returns the ids of the loaded certifications, or nil when
// the relation is not loaded.
func (p *Product) CertificationIDs() []int64 {
	if p.Certifications == nil {
		return nil
	}
	ids := make([]int64, 0, len(p.Certifications))
	for _, c := range p.Certifications {
		ids = append(ids, c.ID)
	}
	return ids
}
