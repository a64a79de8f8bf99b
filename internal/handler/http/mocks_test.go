package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/internal/storage"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/pagination"
)

// ─── Reference data ─────────────────────────────────────────────────────────

type mockCrud[T, In any] struct{ mock.Mock }

func (m *mockCrud[T, In]) List(ctx context.Context, deleted bool) ([]T, error) {
	args := m.Called(ctx, deleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *mockCrud[T, In]) Get(ctx context.Context, id int64) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *mockCrud[T, In]) Create(ctx context.Context, in *In) (*T, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *mockCrud[T, In]) Update(ctx context.Context, id int64, in *In) (*T, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *mockCrud[T, In]) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCrud[T, In]) Restore(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCrud[T, In]) HardDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCrud[T, In]) byKey(ctx context.Context, key any) (*T, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

type mockCurrencies struct {
	mockCrud[domain.Currency, domain.CurrencyInput]
}

func (m *mockCurrencies) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	return m.byKey(ctx, code)
}

type mockUnits struct {
	mockCrud[domain.Unit, domain.UnitInput]
}

func (m *mockUnits) GetByCode(ctx context.Context, code string) (*domain.Unit, error) {
	return m.byKey(ctx, code)
}

type mockShelves struct {
	mockCrud[domain.Shelf, domain.ShelfInput]
}

func (m *mockShelves) ListByProducer(ctx context.Context, producerID int64) ([]domain.Shelf, error) {
	args := m.Called(ctx, producerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Shelf), args.Error(1)
}

type mockCertifications struct {
	mockCrud[domain.Certification, domain.CertificationInput]
}

func (m *mockCertifications) GetByLabel(ctx context.Context, label string) (*domain.Certification, error) {
	return m.byKey(ctx, label)
}

type mockCategories struct {
	mockCrud[domain.Category, domain.CategoryInput]
}

func (m *mockCategories) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return m.byKey(ctx, slug)
}

// ─── Products ───────────────────────────────────────────────────────────────

type mockProducts struct{ mock.Mock }

func (m *mockProducts) List(ctx context.Context, deleted bool, p pagination.Params) (pagination.Page[domain.ProductResponse], error) {
	args := m.Called(ctx, deleted, p)
	return args.Get(0).(pagination.Page[domain.ProductResponse]), args.Error(1)
}

func (m *mockProducts) Get(ctx context.Context, id int64) (*domain.ProductResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductResponse), args.Error(1)
}

func (m *mockProducts) Create(ctx context.Context, in *domain.ProductInput) (*domain.ProductResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductResponse), args.Error(1)
}

func (m *mockProducts) Update(ctx context.Context, id int64, in *domain.ProductInput) (*domain.ProductResponse, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductResponse), args.Error(1)
}

func (m *mockProducts) UploadImage(ctx context.Context, id int64, in *storage.UploadInput) (*domain.ProductResponse, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductResponse), args.Error(1)
}

func (m *mockProducts) DeleteImage(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProducts) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProducts) Restore(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProducts) HardDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// ─── Search and index ───────────────────────────────────────────────────────

type mockSearch struct{ mock.Mock }

func (m *mockSearch) Search(ctx context.Context, req *domain.SearchRequest) (pagination.Page[domain.ProductResponse], error) {
	args := m.Called(ctx, req)
	return args.Get(0).(pagination.Page[domain.ProductResponse]), args.Error(1)
}

func (m *mockSearch) ByProducer(ctx context.Context, q *domain.ProducerQuery) (pagination.Page[domain.ProductResponse], error) {
	args := m.Called(ctx, q)
	return args.Get(0).(pagination.Page[domain.ProductResponse]), args.Error(1)
}

func (m *mockSearch) Suggest(ctx context.Context, term string, size int) ([]domain.Suggestion, error) {
	args := m.Called(ctx, term, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Suggestion), args.Error(1)
}

type mockIndex struct{ mock.Mock }

func (m *mockIndex) RecreateIndex(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockIndex) ReindexAllPaginated(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockIndex) RecreateAndReindex(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockIndex) IndexByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockIndex) ClearIndex(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
