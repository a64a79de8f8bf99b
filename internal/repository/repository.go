package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
)

// Lifecycle covers the soft-delete, restore and hard-delete operations
// shared by every catalog table.
type Lifecycle interface {
	// SetDeleted flips the is_deleted flag. NotFound if the row does not exist.
	SetDeleted(ctx context.Context, id int64, deleted bool) error

	// HardDelete removes the row. NotFound if it does not exist; InvalidState
	// if other rows still reference it.
	HardDelete(ctx context.Context, id int64) error
}

// CurrencyRepository defines persistence operations for currencies.
type CurrencyRepository interface {
	Lifecycle
	Create(ctx context.Context, c *domain.Currency) error
	Update(ctx context.Context, c *domain.Currency) error
	GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Currency, error)
	GetByCode(ctx context.Context, code string, includeDeleted bool) (*domain.Currency, error)
	List(ctx context.Context, deleted bool) ([]domain.Currency, error)
}

// UnitRepository defines persistence operations for units.
type UnitRepository interface {
	Lifecycle
	Create(ctx context.Context, u *domain.Unit) error
	Update(ctx context.Context, u *domain.Unit) error
	GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Unit, error)
	GetByCode(ctx context.Context, code string, includeDeleted bool) (*domain.Unit, error)
	List(ctx context.Context, deleted bool) ([]domain.Unit, error)
}

// ShelfRepository defines persistence operations for shelves.
type ShelfRepository interface {
	Lifecycle
	Create(ctx context.Context, s *domain.Shelf) error
	Update(ctx context.Context, s *domain.Shelf) error
	GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Shelf, error)
	GetByProducerAndLabel(ctx context.Context, producerID int64, label string) (*domain.Shelf, error)
	ListByProducer(ctx context.Context, producerID int64) ([]domain.Shelf, error)
	List(ctx context.Context, deleted bool) ([]domain.Shelf, error)
}

// CertificationRepository defines persistence operations for certifications.
type CertificationRepository interface {
	Lifecycle
	Create(ctx context.Context, c *domain.Certification) error
	Update(ctx context.Context, c *domain.Certification) error
	GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Certification, error)
	GetByLabel(ctx context.Context, label string, includeDeleted bool) (*domain.Certification, error)
	// GetLiveByIDs returns the live certifications among ids, ordered by id.
	GetLiveByIDs(ctx context.Context, ids []int64) ([]domain.Certification, error)
	List(ctx context.Context, deleted bool) ([]domain.Certification, error)
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Lifecycle
	Create(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string, includeDeleted bool) (*domain.Category, error)
	List(ctx context.Context, deleted bool) ([]domain.Category, error)
}

// ProductFilter selects a page of products. A nil Deleted returns live and
// soft-deleted rows alike.
type ProductFilter struct {
	Deleted *bool
	Page    int
	Size    int
}

// Reference names a row type that product documents embed.
type Reference string

// References a product can carry.
const (
	RefCurrency      Reference = "currency"
	RefUnit          Reference = "unit"
	RefShelf         Reference = "shelf"
	RefCategory      Reference = "category"
	RefCertification Reference = "certification"
)

// ProductRepository defines persistence operations for products. Every read
// returns the full graph: relations and certifications are loaded.
type ProductRepository interface {
	Lifecycle
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Product, error)

	// List returns one page ordered by id together with the total row count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int64, error)

	// ListAll returns every product, including soft-deleted ones.
	ListAll(ctx context.Context) ([]domain.Product, error)

	SetCertifications(ctx context.Context, productID int64, certificationIDs []int64) error
	SetImage(ctx context.Context, productID int64, imageID *uuid.UUID, imageURL *string) error

	// IDsReferencing returns the ids of every product, soft-deleted ones
	// included, that points at the ref row id.
	IDsReferencing(ctx context.Context, ref Reference, id int64) ([]int64, error)
}
