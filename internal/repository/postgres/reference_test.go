package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/database"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var uniqueViolation = &pgconn.PgError{Code: "23505", Message: "duplicate key value"}

// ─── Currency ───────────────────────────────────────────────────────────────

var currencyCols = []string{"id", "code", "label", "usd_exchange_rate", "is_deleted", "created_at", "updated_at"}

func TestCurrencyRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewCurrencyRepository(mock)

	c := &domain.Currency{Code: "EUR", Label: "Euro", USDExchangeRate: decimal.RequireFromString("1.08")}

	mock.ExpectQuery(`INSERT INTO currencies`).
		WithArgs("EUR", "Euro", c.USDExchangeRate).
		WillReturnRows(mock.NewRows([]string{"id", "is_deleted", "created_at", "updated_at"}).
			AddRow(int64(1), false, now, now))

	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, now, c.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepository_Create_Duplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewCurrencyRepository(mock)

	mock.ExpectQuery(`INSERT INTO currencies`).
		WithArgs("EUR", "Euro", pgxmock.AnyArg()).
		WillReturnError(uniqueViolation)

	err := repo.Create(context.Background(), &domain.Currency{Code: "EUR", Label: "Euro"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepository_GetByID_LiveOnly(t *testing.T) {
	mock := newMock(t)
	repo := NewCurrencyRepository(mock)

	mock.ExpectQuery(`FROM currencies WHERE id = \$1 AND is_deleted = FALSE`).
		WithArgs(int64(1)).
		WillReturnRows(mock.NewRows(currencyCols).
			AddRow(int64(1), "EUR", "Euro", decimal.RequireFromString("1.08"), false, now, now))

	c, err := repo.GetByID(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, "EUR", c.Code)
	assert.True(t, c.USDExchangeRate.Equal(decimal.RequireFromString("1.08")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepository_GetByID_IncludingDeleted(t *testing.T) {
	mock := newMock(t)
	repo := NewCurrencyRepository(mock)

	mock.ExpectQuery(`FROM currencies WHERE id = \$1 AND TRUE`).
		WithArgs(int64(1)).
		WillReturnRows(mock.NewRows(currencyCols).
			AddRow(int64(1), "EUR", "Euro", decimal.NewFromInt(1), true, now, now))

	c, err := repo.GetByID(context.Background(), 1, true)
	require.NoError(t, err)
	assert.True(t, c.IsDeleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepository_GetByCode_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCurrencyRepository(mock)

	mock.ExpectQuery(`FROM currencies WHERE code = \$1`).
		WithArgs("XXX").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByCode(context.Background(), "XXX", false)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCurrencyRepository(mock)

	mock.ExpectQuery(`UPDATE currencies`).
		WithArgs("EUR", "Euro", pgxmock.AnyArg(), int64(9)).
		WillReturnError(pgx.ErrNoRows)

	err := repo.Update(context.Background(), &domain.Currency{ID: 9, Code: "EUR", Label: "Euro"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepository_List_Empty(t *testing.T) {
	mock := newMock(t)
	repo := NewCurrencyRepository(mock)

	mock.ExpectQuery(`FROM currencies WHERE is_deleted = \$1 ORDER BY code`).
		WithArgs(true).
		WillReturnRows(mock.NewRows(currencyCols))

	list, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

func TestSetDeleted(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"row updated", 1, nil},
		{"row missing", 0, apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			repo := NewUnitRepository(mock)

			mock.ExpectExec(`UPDATE units SET is_deleted = \$1`).
				WithArgs(true, int64(4)).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			err := repo.SetDeleted(context.Background(), 4, true)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHardDelete_StillReferenced(t *testing.T) {
	mock := newMock(t)
	repo := NewShelfRepository(mock)

	mock.ExpectExec(`DELETE FROM shelves WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.HardDelete(context.Background(), 2)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHardDelete_Missing(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	mock.ExpectExec(`DELETE FROM categories WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.HardDelete(context.Background(), 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UsesAmbientTransaction(t *testing.T) {
	mock := newMock(t)
	repo := NewCertificationRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE certifications SET is_deleted`).
		WithArgs(false, int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)
	ctx := database.WithTx(context.Background(), tx)

	require.NoError(t, repo.SetDeleted(ctx, 3, false))
	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── Other reference tables ─────────────────────────────────────────────────

func TestUnitRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUnitRepository(mock)

	mock.ExpectQuery(`INSERT INTO units`).
		WithArgs("kg", "Kilogram").
		WillReturnRows(mock.NewRows([]string{"id", "code", "label", "is_deleted", "created_at", "updated_at"}).
			AddRow(int64(5), "kg", "Kilogram", false, now, now))

	u := &domain.Unit{Code: "kg", Label: "Kilogram"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, int64(5), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShelfRepository_Update_KeepsProducer(t *testing.T) {
	mock := newMock(t)
	repo := NewShelfRepository(mock)

	mock.ExpectQuery(`UPDATE shelves SET label = \$1`).
		WithArgs("Légumes", int64(2)).
		WillReturnRows(mock.NewRows([]string{"id", "label", "producer_id", "is_deleted", "created_at", "updated_at"}).
			AddRow(int64(2), "Légumes", int64(77), false, now, now))

	s := &domain.Shelf{ID: 2, Label: "Légumes", ProducerID: 999}
	require.NoError(t, repo.Update(context.Background(), s))
	assert.Equal(t, int64(77), s.ProducerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShelfRepository_Create_DuplicateLabel(t *testing.T) {
	mock := newMock(t)
	repo := NewShelfRepository(mock)

	mock.ExpectQuery(`INSERT INTO shelves`).
		WithArgs("Fruits", int64(77)).
		WillReturnError(uniqueViolation)

	err := repo.Create(context.Background(), &domain.Shelf{Label: "Fruits", ProducerID: 77})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestCertificationRepository_GetLiveByIDs(t *testing.T) {
	mock := newMock(t)
	repo := NewCertificationRepository(mock)

	got, err := repo.GetLiveByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	mock.ExpectQuery(`FROM certifications WHERE id = ANY\(\$1\) AND is_deleted = FALSE`).
		WithArgs([]int64{1, 2}).
		WillReturnRows(mock.NewRows([]string{"id", "label", "is_deleted", "created_at", "updated_at"}).
			AddRow(int64(1), "AB", false, now, now))

	got, err = repo.GetLiveByIDs(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AB", got[0].Label)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_GetBySlug(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	mock.ExpectQuery(`FROM categories WHERE slug = \$1`).
		WithArgs("fruits-legumes").
		WillReturnRows(mock.NewRows([]string{"id", "name", "slug", "description", "display_order", "is_deleted", "created_at", "updated_at"}).
			AddRow(int64(1), "Fruits & Légumes", "fruits-legumes", strPtr("Produits frais"), 1, false, now, now))

	c, err := repo.GetBySlug(context.Background(), "fruits-legumes", false)
	require.NoError(t, err)
	assert.Equal(t, "Fruits & Légumes", c.Name)
	assert.Equal(t, "Produits frais", *c.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryError_IsWrapped(t *testing.T) {
	mock := newMock(t)
	repo := NewUnitRepository(mock)

	boom := errors.New("connection reset")
	mock.ExpectQuery(`FROM units WHERE is_deleted`).
		WithArgs(false).
		WillReturnError(boom)

	_, err := repo.List(context.Background(), false)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "units.List")
	assert.NoError(t, mock.ExpectationsWereMet())
}
