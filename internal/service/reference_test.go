package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/logger"
)

var ctx = context.Background()

// ─── Currency ───────────────────────────────────────────────────────────────

func TestCurrencyService_Create(t *testing.T) {
	repo := &mockCurrencyRepo{}
	svc := NewCurrencyService(repo, logger.Discard())

	repo.On("GetByCode", ctx, "EUR", true).Return(nil, apperrors.NotFoundBy("currency", "code", "EUR"))
	repo.On("Create", ctx, mock.MatchedBy(func(c *domain.Currency) bool {
		return c.Code == "EUR" && c.Label == "Euro"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Currency).ID = 3
	}).Return(nil)

	c, err := svc.Create(ctx, &domain.CurrencyInput{Code: "eur", Label: "Euro", USDExchangeRate: decimal.NewFromFloat(1.08)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.ID)
	repo.AssertExpectations(t)
}

func TestCurrencyService_Create_Duplicate(t *testing.T) {
	repo := &mockCurrencyRepo{}
	svc := NewCurrencyService(repo, logger.Discard())

	repo.On("GetByCode", ctx, "EUR", true).Return(&domain.Currency{ID: 1, Code: "EUR"}, nil)

	_, err := svc.Create(ctx, &domain.CurrencyInput{Code: "EUR", Label: "Euro"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCurrencyService_Create_LookupFailure(t *testing.T) {
	repo := &mockCurrencyRepo{}
	svc := NewCurrencyService(repo, logger.Discard())

	boom := errors.New("db down")
	repo.On("GetByCode", ctx, "EUR", true).Return(nil, boom)

	_, err := svc.Create(ctx, &domain.CurrencyInput{Code: "EUR", Label: "Euro"})
	assert.ErrorIs(t, err, boom)
}

func TestCurrencyService_Update_SameCodeSkipsUniquenessCheck(t *testing.T) {
	repo := &mockCurrencyRepo{}
	svc := NewCurrencyService(repo, logger.Discard())

	repo.On("GetByID", ctx, int64(1), false).Return(&domain.Currency{ID: 1, Code: "EUR", Label: "Euro"}, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	c, err := svc.Update(ctx, 1, &domain.CurrencyInput{Code: "EUR", Label: "Euro zone"})
	require.NoError(t, err)
	assert.Equal(t, "Euro zone", c.Label)
	repo.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestCurrencyService_Update_CodeTaken(t *testing.T) {
	repo := &mockCurrencyRepo{}
	svc := NewCurrencyService(repo, logger.Discard())

	repo.On("GetByID", ctx, int64(1), false).Return(&domain.Currency{ID: 1, Code: "EUR"}, nil)
	repo.On("GetByCode", ctx, "USD", true).Return(&domain.Currency{ID: 2, Code: "USD"}, nil)

	_, err := svc.Update(ctx, 1, &domain.CurrencyInput{Code: "USD", Label: "x"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

func TestLifecycle_SoftDeleteRequiresLiveRow(t *testing.T) {
	repo := &mockUnitRepo{}
	svc := NewUnitService(repo, logger.Discard())

	repo.On("GetByID", ctx, int64(4), false).Return(nil, apperrors.NotFound("unit", 4))

	err := svc.Delete(ctx, 4)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "SetDeleted", mock.Anything, mock.Anything, mock.Anything)
}

func TestLifecycle_Restore(t *testing.T) {
	repo := &mockUnitRepo{}
	svc := NewUnitService(repo, logger.Discard())

	repo.On("GetByID", ctx, int64(4), true).Return(&domain.Unit{ID: 4, IsDeleted: true}, nil)
	repo.On("SetDeleted", ctx, int64(4), false).Return(nil)

	require.NoError(t, svc.Restore(ctx, 4))
	repo.AssertExpectations(t)
}

func TestLifecycle_RestoreLiveRowIsInvalidState(t *testing.T) {
	repo := &mockCertificationRepo{}
	svc := NewCertificationService(repo, logger.Discard())

	repo.On("GetByID", ctx, int64(2), true).Return(&domain.Certification{ID: 2}, nil)

	err := svc.Restore(ctx, 2)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
	repo.AssertNotCalled(t, "SetDeleted", mock.Anything, mock.Anything, mock.Anything)
}

func TestLifecycle_HardDeleteFindsSoftDeletedRows(t *testing.T) {
	repo := &mockCategoryRepo{}
	svc := NewCategoryService(repo, logger.Discard())

	repo.On("GetByID", ctx, int64(9), true).Return(&domain.Category{ID: 9, IsDeleted: true}, nil)
	repo.On("HardDelete", ctx, int64(9)).Return(nil)

	require.NoError(t, svc.HardDelete(ctx, 9))
	repo.AssertExpectations(t)
}

func TestLifecycle_HardDeleteMissing(t *testing.T) {
	repo := &mockCurrencyRepo{}
	svc := NewCurrencyService(repo, logger.Discard())

	repo.On("GetByID", ctx, int64(9), true).Return(nil, apperrors.NotFound("currency", 9))

	assert.ErrorIs(t, svc.HardDelete(ctx, 9), apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
}

// ─── Category ───────────────────────────────────────────────────────────────

func TestCategoryService_Create_SlugFromName(t *testing.T) {
	repo := &mockCategoryRepo{}
	svc := NewCategoryService(repo, logger.Discard())

	repo.On("GetBySlug", ctx, "fruits-legumes", true).Return(nil, apperrors.NotFoundBy("category", "slug", "fruits-legumes"))
	repo.On("Create", ctx, mock.MatchedBy(func(c *domain.Category) bool { return c.Slug == "fruits-legumes" })).Return(nil)

	c, err := svc.Create(ctx, &domain.CategoryInput{Name: "Fruits & Légumes"})
	require.NoError(t, err)
	assert.Equal(t, "fruits-legumes", c.Slug)
}

func TestCategoryService_Create_ExplicitSlugTaken(t *testing.T) {
	repo := &mockCategoryRepo{}
	svc := NewCategoryService(repo, logger.Discard())

	repo.On("GetBySlug", ctx, "fruits", true).Return(&domain.Category{ID: 1, Slug: "fruits"}, nil)

	_, err := svc.Create(ctx, &domain.CategoryInput{Name: "Fresh fruit", Slug: "Fruits"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestCategoryService_Create_NameWithoutLetters(t *testing.T) {
	svc := NewCategoryService(&mockCategoryRepo{}, logger.Discard())

	_, err := svc.Create(ctx, &domain.CategoryInput{Name: "!!!"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// ─── Shelf ──────────────────────────────────────────────────────────────────

func TestShelfService_LabelUniquePerProducer(t *testing.T) {
	repo := &mockShelfRepo{}
	svc := NewShelfService(repo, logger.Discard())

	repo.On("GetByProducerAndLabel", ctx, int64(1), "Veg").Return(&domain.Shelf{ID: 1}, nil)
	repo.On("GetByProducerAndLabel", ctx, int64(2), "Veg").Return(nil, apperrors.NotFoundBy("shelf", "label", "Veg"))
	repo.On("Create", ctx, mock.Anything).Return(nil)

	_, err := svc.Create(ctx, &domain.ShelfInput{Label: "Veg", ProducerID: 1})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	sh, err := svc.Create(ctx, &domain.ShelfInput{Label: "Veg", ProducerID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), sh.ProducerID)
}

func TestShelfService_UpdateKeepsProducer(t *testing.T) {
	repo := &mockShelfRepo{}
	svc := NewShelfService(repo, logger.Discard())

	repo.On("GetByID", ctx, int64(5), false).Return(&domain.Shelf{ID: 5, Label: "Veg", ProducerID: 1}, nil)
	repo.On("GetByProducerAndLabel", ctx, int64(1), "Fruit").Return(nil, apperrors.NotFoundBy("shelf", "label", "Fruit"))
	repo.On("Update", ctx, mock.Anything).Return(nil)

	sh, err := svc.Update(ctx, 5, &domain.ShelfInput{Label: "Fruit", ProducerID: 99})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sh.ProducerID)
	assert.Equal(t, "Fruit", sh.Label)
}

// ─── Unit / Certification lookups ───────────────────────────────────────────

func TestUnitService_GetByCodeLiveOnly(t *testing.T) {
	repo := &mockUnitRepo{}
	svc := NewUnitService(repo, logger.Discard())

	repo.On("GetByCode", ctx, "kg", false).Return(&domain.Unit{ID: 1, Code: "kg"}, nil)

	u, err := svc.GetByCode(ctx, "kg")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
}

func TestCertificationService_Update_LabelTaken(t *testing.T) {
	repo := &mockCertificationRepo{}
	svc := NewCertificationService(repo, logger.Discard())

	repo.On("GetByID", ctx, int64(1), false).Return(&domain.Certification{ID: 1, Label: "Bio"}, nil)
	repo.On("GetByLabel", ctx, "AOC", true).Return(&domain.Certification{ID: 2, Label: "AOC"}, nil)

	_, err := svc.Update(ctx, 1, &domain.CertificationInput{Label: "AOC"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}
