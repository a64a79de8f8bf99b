package postgres

import (
	"context"
	"fmt"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/database"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
)

const currencyColumns = `id, code, label, usd_exchange_rate, is_deleted, created_at, updated_at`

// CurrencyRepository implements currency persistence using PostgreSQL.
type CurrencyRepository struct {
	db database.DBTX
}

// NewCurrencyRepository creates a new PostgreSQL-backed currency repository.
func NewCurrencyRepository(db database.DBTX) *CurrencyRepository {
	return &CurrencyRepository{db: db}
}

func scanCurrency(s scanner, c *domain.Currency) error {
	return s.Scan(&c.ID, &c.Code, &c.Label, &c.USDExchangeRate, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
}

// Create inserts c and fills in its generated fields.
func (r *CurrencyRepository) Create(ctx context.Context, c *domain.Currency) (err error) {
	query := `
		INSERT INTO currencies (code, label, usd_exchange_rate)
		VALUES ($1, $2, $3)
		RETURNING id, is_deleted, created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "currencies.Create", query)
	defer func() { end(err) }()

	err = database.Conn(ctx, r.db).QueryRow(ctx, query, c.Code, c.Label, c.USDExchangeRate).
		Scan(&c.ID, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("currency", "code", c.Code)
		}
		return fmt.Errorf("insert currency: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a live currency.
func (r *CurrencyRepository) Update(ctx context.Context, c *domain.Currency) error {
	query := fmt.Sprintf(`
		UPDATE currencies
		SET code = $1, label = $2, usd_exchange_rate = $3, updated_at = NOW()
		WHERE id = $4 AND is_deleted = FALSE
		RETURNING %s`, currencyColumns)

	updated, err := queryOne(ctx, r.db, "currencies.Update", query, scanCurrency,
		apperrors.NotFound("currency", c.ID), c.Code, c.Label, c.USDExchangeRate, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("currency", "code", c.Code)
		}
		return err
	}
	*c = *updated
	return nil
}

// GetByID returns the currency with id.
func (r *CurrencyRepository) GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Currency, error) {
	query := fmt.Sprintf(`SELECT %s FROM currencies WHERE id = $1 AND %s`, currencyColumns, liveFilter("", includeDeleted))
	return queryOne(ctx, r.db, "currencies.GetByID", query, scanCurrency, apperrors.NotFound("currency", id), id)
}

// GetByCode returns the currency with the given ISO code.
func (r *CurrencyRepository) GetByCode(ctx context.Context, code string, includeDeleted bool) (*domain.Currency, error) {
	query := fmt.Sprintf(`SELECT %s FROM currencies WHERE code = $1 AND %s`, currencyColumns, liveFilter("", includeDeleted))
	return queryOne(ctx, r.db, "currencies.GetByCode", query, scanCurrency, apperrors.NotFoundBy("currency", "code", code), code)
}

// List returns the live or the soft-deleted currencies ordered by code.
func (r *CurrencyRepository) List(ctx context.Context, deleted bool) ([]domain.Currency, error) {
	query := fmt.Sprintf(`SELECT %s FROM currencies WHERE is_deleted = $1 ORDER BY code`, currencyColumns)
	return queryAll(ctx, r.db, "currencies.List", query, scanCurrency, deleted)
}

// SetDeleted flips the soft-delete flag.
func (r *CurrencyRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	return setDeleted(ctx, r.db, "currencies", "currency", id, deleted)
}

// HardDelete removes the currency row.
func (r *CurrencyRepository) HardDelete(ctx context.Context, id int64) error {
	return hardDelete(ctx, r.db, "currencies", "currency", id)
}
