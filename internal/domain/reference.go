package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a currency products can be priced in.
type Currency struct {
	ID              int64           `json:"id"`
	Code            string          `json:"code"`
	Label           string          `json:"label"`
	USDExchangeRate decimal.Decimal `json:"usd_exchange_rate"`
	IsDeleted       bool            `json:"is_deleted"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CurrencyInput holds the parameters for creating or replacing a currency.
type CurrencyInput struct {
	Code            string          `json:"code" validate:"required,len=3,alpha,uppercase"`
	Label           string          `json:"label" validate:"required,min=1,max=100"`
	USDExchangeRate decimal.Decimal `json:"usd_exchange_rate" validate:"dgte0"`
}

// Unit is a unit of sale such as "kg" or "piece".
type Unit struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Label     string    `json:"label"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UnitInput holds the parameters for creating or replacing a unit.
type UnitInput struct {
	Code  string `json:"code" validate:"required,min=1,max=20"`
	Label string `json:"label" validate:"required,min=1,max=100"`
}

// Shelf groups the products of one producer. Labels are unique per producer.
type Shelf struct {
	ID         int64     `json:"id"`
	Label      string    `json:"label"`
	ProducerID int64     `json:"producer_id"`
	IsDeleted  bool      `json:"is_deleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ShelfInput holds the parameters for creating or replacing a shelf.
// ProducerID is ignored on update.
type ShelfInput struct {
	Label      string `json:"label" validate:"required,min=1,max=100"`
	ProducerID int64  `json:"producer_id" validate:"required,gt=0"`
}

// Certification is a quality label such as "Organic".
type Certification struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CertificationInput holds the parameters for creating or replacing a certification.
type CertificationInput struct {
	Label string `json:"label" validate:"required,min=1,max=100"`
}

// Category is a product category.
type Category struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description"`
	DisplayOrder int       `json:"display_order"`
	IsDeleted    bool      `json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CategoryInput holds the parameters for creating or replacing a category.
// An empty slug is derived from the name.
type CategoryInput struct {
	Name         string  `json:"name" validate:"required,min=1,max=100"`
	Slug         string  `json:"slug" validate:"omitempty,max=120"`
	Description  *string `json:"description"`
	DisplayOrder int     `json:"display_order" validate:"gte=0"`
}
