package postgres

import (
	"context"
	"fmt"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/database"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
)

// categoryColumns is the standard SELECT column list for categories.
const categoryColumns = `id, name, slug, description, display_order, is_deleted, created_at, updated_at`

// CategoryRepository implements category persistence using PostgreSQL.
type CategoryRepository struct {
	db database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(db database.DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func scanCategory(s scanner, c *domain.Category) error {
	return s.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.DisplayOrder, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
}

// Create inserts c and fills in its generated fields.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := fmt.Sprintf(`
		INSERT INTO categories (name, slug, description, display_order)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`, categoryColumns)

	created, err := queryOne(ctx, r.db, "categories.Create", query, scanCategory, errNoRow,
		c.Name, c.Slug, c.Description, c.DisplayOrder)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "slug", c.Slug)
		}
		return err
	}
	*c = *created
	return nil
}

// Update replaces the mutable fields of a live category.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	query := fmt.Sprintf(`
		UPDATE categories
		SET name = $1, slug = $2, description = $3, display_order = $4, updated_at = NOW()
		WHERE id = $5 AND is_deleted = FALSE
		RETURNING %s`, categoryColumns)

	updated, err := queryOne(ctx, r.db, "categories.Update", query, scanCategory,
		apperrors.NotFound("category", c.ID), c.Name, c.Slug, c.Description, c.DisplayOrder, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "slug", c.Slug)
		}
		return err
	}
	*c = *updated
	return nil
}

// GetByID returns the category with id.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE id = $1 AND %s`, categoryColumns, liveFilter("", includeDeleted))
	return queryOne(ctx, r.db, "categories.GetByID", query, scanCategory, apperrors.NotFound("category", id), id)
}

// GetBySlug returns the category with slug.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string, includeDeleted bool) (*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE slug = $1 AND %s`, categoryColumns, liveFilter("", includeDeleted))
	return queryOne(ctx, r.db, "categories.GetBySlug", query, scanCategory, apperrors.NotFoundBy("category", "slug", slug), slug)
}

// List returns the live or the soft-deleted categories by display order then name.
func (r *CategoryRepository) List(ctx context.Context, deleted bool) ([]domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE is_deleted = $1 ORDER BY display_order, name`, categoryColumns)
	return queryAll(ctx, r.db, "categories.List", query, scanCategory, deleted)
}

// SetDeleted flips the soft-delete flag.
func (r *CategoryRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	return setDeleted(ctx, r.db, "categories", "category", id, deleted)
}

// HardDelete removes the category row.
func (r *CategoryRepository) HardDelete(ctx context.Context, id int64) error {
	return hardDelete(ctx, r.db, "categories", "category", id)
}
