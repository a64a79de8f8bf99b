package postgres

import (
	"context"
	"fmt"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/database"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
)

const unitColumns = `id, code, label, is_deleted, created_at, updated_at`

// UnitRepository implements unit persistence using PostgreSQL.
type UnitRepository struct {
	db database.DBTX
}

// NewUnitRepository creates a new PostgreSQL-backed unit repository.
func NewUnitRepository(db database.DBTX) *UnitRepository {
	return &UnitRepository{db: db}
}

func scanUnit(s scanner, u *domain.Unit) error {
	return s.Scan(&u.ID, &u.Code, &u.Label, &u.IsDeleted, &u.CreatedAt, &u.UpdatedAt)
}

// Create inserts u and fills in its generated fields.
func (r *UnitRepository) Create(ctx context.Context, u *domain.Unit) error {
	query := fmt.Sprintf(`INSERT INTO units (code, label) VALUES ($1, $2) RETURNING %s`, unitColumns)

	created, err := queryOne(ctx, r.db, "units.Create", query, scanUnit, errNoRow, u.Code, u.Label)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("unit", "code", u.Code)
		}
		return err
	}
	*u = *created
	return nil
}

// Update replaces the mutable fields of a live unit.
func (r *UnitRepository) Update(ctx context.Context, u *domain.Unit) error {
	query := fmt.Sprintf(`
		UPDATE units SET code = $1, label = $2, updated_at = NOW()
		WHERE id = $3 AND is_deleted = FALSE
		RETURNING %s`, unitColumns)

	updated, err := queryOne(ctx, r.db, "units.Update", query, scanUnit,
		apperrors.NotFound("unit", u.ID), u.Code, u.Label, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("unit", "code", u.Code)
		}
		return err
	}
	*u = *updated
	return nil
}

// GetByID returns the unit with id.
func (r *UnitRepository) GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Unit, error) {
	query := fmt.Sprintf(`SELECT %s FROM units WHERE id = $1 AND %s`, unitColumns, liveFilter("", includeDeleted))
	return queryOne(ctx, r.db, "units.GetByID", query, scanUnit, apperrors.NotFound("unit", id), id)
}

// GetByCode returns the unit with code.
func (r *UnitRepository) GetByCode(ctx context.Context, code string, includeDeleted bool) (*domain.Unit, error) {
	query := fmt.Sprintf(`SELECT %s FROM units WHERE code = $1 AND %s`, unitColumns, liveFilter("", includeDeleted))
	return queryOne(ctx, r.db, "units.GetByCode", query, scanUnit, apperrors.NotFoundBy("unit", "code", code), code)
}

// List returns the live or the soft-deleted units ordered by label.
func (r *UnitRepository) List(ctx context.Context, deleted bool) ([]domain.Unit, error) {
	query := fmt.Sprintf(`SELECT %s FROM units WHERE is_deleted = $1 ORDER BY label`, unitColumns)
	return queryAll(ctx, r.db, "units.List", query, scanUnit, deleted)
}

// SetDeleted flips the soft-delete flag.
func (r *UnitRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	return setDeleted(ctx, r.db, "units", "unit", id, deleted)
}

// HardDelete removes the unit row.
func (r *UnitRepository) HardDelete(ctx context.Context, id int64) error {
	return hardDelete(ctx, r.db, "units", "unit", id)
}
