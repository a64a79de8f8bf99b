package postgres

import (
	"context"
	"fmt"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/database"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
)

const shelfColumns = `id, label, producer_id, is_deleted, created_at, updated_at`

// ShelfRepository implements shelf persistence using PostgreSQL.
type ShelfRepository struct {
	db database.DBTX
}

// NewShelfRepository creates a new PostgreSQL-backed shelf repository.
func NewShelfRepository(db database.DBTX) *ShelfRepository {
	return &ShelfRepository{db: db}
}

func scanShelf(s scanner, sh *domain.Shelf) error {
	return s.Scan(&sh.ID, &sh.Label, &sh.ProducerID, &sh.IsDeleted, &sh.CreatedAt, &sh.UpdatedAt)
}

// Create inserts s and fills in its generated fields.
func (r *ShelfRepository) Create(ctx context.Context, s *domain.Shelf) error {
	query := fmt.Sprintf(`INSERT INTO shelves (label, producer_id) VALUES ($1, $2) RETURNING %s`, shelfColumns)

	created, err := queryOne(ctx, r.db, "shelves.Create", query, scanShelf, errNoRow, s.Label, s.ProducerID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("shelf", "label", s.Label)
		}
		return err
	}
	*s = *created
	return nil
}

// Update renames a live shelf. The producer is never changed.
func (r *ShelfRepository) Update(ctx context.Context, s *domain.Shelf) error {
	query := fmt.Sprintf(`
		UPDATE shelves SET label = $1, updated_at = NOW()
		WHERE id = $2 AND is_deleted = FALSE
		RETURNING %s`, shelfColumns)

	updated, err := queryOne(ctx, r.db, "shelves.Update", query, scanShelf,
		apperrors.NotFound("shelf", s.ID), s.Label, s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("shelf", "label", s.Label)
		}
		return err
	}
	*s = *updated
	return nil
}

// GetByID returns the shelf with id.
func (r *ShelfRepository) GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Shelf, error) {
	query := fmt.Sprintf(`SELECT %s FROM shelves WHERE id = $1 AND %s`, shelfColumns, liveFilter("", includeDeleted))
	return queryOne(ctx, r.db, "shelves.GetByID", query, scanShelf, apperrors.NotFound("shelf", id), id)
}

// GetByProducerAndLabel returns the shelf, live or not, holding label for producerID.
func (r *ShelfRepository) GetByProducerAndLabel(ctx context.Context, producerID int64, label string) (*domain.Shelf, error) {
	query := fmt.Sprintf(`SELECT %s FROM shelves WHERE producer_id = $1 AND label = $2`, shelfColumns)
	return queryOne(ctx, r.db, "shelves.GetByProducerAndLabel", query, scanShelf,
		apperrors.NotFoundBy("shelf", "label", label), producerID, label)
}

// ListByProducer returns the live shelves of one producer ordered by label.
func (r *ShelfRepository) ListByProducer(ctx context.Context, producerID int64) ([]domain.Shelf, error) {
	query := fmt.Sprintf(`SELECT %s FROM shelves WHERE producer_id = $1 AND is_deleted = FALSE ORDER BY label`, shelfColumns)
	return queryAll(ctx, r.db, "shelves.ListByProducer", query, scanShelf, producerID)
}

// List returns the live or the soft-deleted shelves.
func (r *ShelfRepository) List(ctx context.Context, deleted bool) ([]domain.Shelf, error) {
	query := fmt.Sprintf(`SELECT %s FROM shelves WHERE is_deleted = $1 ORDER BY producer_id, label`, shelfColumns)
	return queryAll(ctx, r.db, "shelves.List", query, scanShelf, deleted)
}

// SetDeleted flips the soft-delete flag.
func (r *ShelfRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	return setDeleted(ctx, r.db, "shelves", "shelf", id, deleted)
}

// HardDelete removes the shelf row.
func (r *ShelfRepository) HardDelete(ctx context.Context, id int64) error {
	return hardDelete(ctx, r.db, "shelves", "shelf", id)
}
