package service

import (
	"context"
	"log/slog"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/internal/repository"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/slug"
)

// CategoryService manages product categories.
type CategoryService struct {
	repo    repository.CategoryRepository
	refresh *ProductRefresher
	logger  *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository, logger *slog.Logger, opts ...ReferenceOption) *CategoryService {
	return &CategoryService{repo: repo, refresh: applyReferenceOptions(opts).refresh, logger: logger}
}

// List returns the live or the soft-deleted categories.
func (s *CategoryService) List(ctx context.Context, deleted bool) ([]domain.Category, error) {
	return s.repo.List(ctx, deleted)
}

// Get returns a live category.
func (s *CategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	return s.repo.GetByID(ctx, id, false)
}

// GetBySlug returns a live category by slug.
func (s *CategoryService) GetBySlug(ctx context.Context, sl string) (*domain.Category, error) {
	return s.repo.GetBySlug(ctx, sl, false)
}

// categorySlug returns the explicit slug, normalized, or one derived from name.
func categorySlug(in *domain.CategoryInput) (string, error) {
	raw := in.Slug
	if raw == "" {
		raw = in.Name
	}
	sl := slug.Generate(raw)
	if sl == "" {
		return "", apperrors.InvalidInput("category name must contain at least one letter or digit")
	}
	return sl, nil
}

// Create adds a category. AlreadyExists if the slug is taken.
func (s *CategoryService) Create(ctx context.Context, in *domain.CategoryInput) (*domain.Category, error) {
	sl, err := categorySlug(in)
	if err != nil {
		return nil, err
	}
	_, err = s.repo.GetBySlug(ctx, sl, true)
	if err := unique(err, "category", "slug", sl); err != nil {
		return nil, err
	}

	c := &domain.Category{
		Name:         in.Name,
		Slug:         sl,
		Description:  in.Description,
		DisplayOrder: in.DisplayOrder,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "category created",
		slog.Int64("category_id", c.ID),
		slog.String("slug", c.Slug),
	)
	return c, nil
}

// Update replaces a live category.
func (s *CategoryService) Update(ctx context.Context, id int64, in *domain.CategoryInput) (*domain.Category, error) {
	c, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	sl, err := categorySlug(in)
	if err != nil {
		return nil, err
	}
	if sl != c.Slug {
		_, err := s.repo.GetBySlug(ctx, sl, true)
		if err := unique(err, "category", "slug", sl); err != nil {
			return nil, err
		}
	}

	renamed := in.Name != c.Name
	c.Name, c.Slug, c.Description, c.DisplayOrder = in.Name, sl, in.Description, in.DisplayOrder
	err = s.refresh.when(renamed).Do(ctx, repository.RefCategory, id, func(ctx context.Context) error {
		return s.repo.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete soft-deletes a category.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return softDelete(ctx, s.repo, id)
}

// Restore brings back a soft-deleted category.
func (s *CategoryService) Restore(ctx context.Context, id int64) error {
	return restore(ctx, s.repo, "category", id, func(c *domain.Category) bool { return c.IsDeleted })
}

// HardDelete removes a category row.
func (s *CategoryService) HardDelete(ctx context.Context, id int64) error {
	return hardDelete(ctx, s.repo, id)
}
