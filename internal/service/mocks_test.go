package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/internal/relay"
	"github.com/IGDevX/marche-conclu-shop-service/internal/repository"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/database"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/logger"
)

// ─── Lifecycle ──────────────────────────────────────────────────────────────

type mockLifecycle struct{ mock.Mock }

func (m *mockLifecycle) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	return m.Called(ctx, id, deleted).Error(0)
}

func (m *mockLifecycle) HardDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// ─── Currency ───────────────────────────────────────────────────────────────

type mockCurrencyRepo struct{ mockLifecycle }

func (m *mockCurrencyRepo) Create(ctx context.Context, c *domain.Currency) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCurrencyRepo) Update(ctx context.Context, c *domain.Currency) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCurrencyRepo) GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Currency, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *mockCurrencyRepo) GetByCode(ctx context.Context, code string, includeDeleted bool) (*domain.Currency, error) {
	args := m.Called(ctx, code, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *mockCurrencyRepo) List(ctx context.Context, deleted bool) ([]domain.Currency, error) {
	args := m.Called(ctx, deleted)
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// ─── Unit ───────────────────────────────────────────────────────────────────

type mockUnitRepo struct{ mockLifecycle }

func (m *mockUnitRepo) Create(ctx context.Context, u *domain.Unit) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUnitRepo) Update(ctx context.Context, u *domain.Unit) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUnitRepo) GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Unit, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Unit), args.Error(1)
}

func (m *mockUnitRepo) GetByCode(ctx context.Context, code string, includeDeleted bool) (*domain.Unit, error) {
	args := m.Called(ctx, code, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Unit), args.Error(1)
}

func (m *mockUnitRepo) List(ctx context.Context, deleted bool) ([]domain.Unit, error) {
	args := m.Called(ctx, deleted)
	return args.Get(0).([]domain.Unit), args.Error(1)
}

// ─── Shelf ──────────────────────────────────────────────────────────────────

type mockShelfRepo struct{ mockLifecycle }

func (m *mockShelfRepo) Create(ctx context.Context, s *domain.Shelf) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockShelfRepo) Update(ctx context.Context, s *domain.Shelf) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockShelfRepo) GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Shelf, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shelf), args.Error(1)
}

func (m *mockShelfRepo) GetByProducerAndLabel(ctx context.Context, producerID int64, label string) (*domain.Shelf, error) {
	args := m.Called(ctx, producerID, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shelf), args.Error(1)
}

func (m *mockShelfRepo) ListByProducer(ctx context.Context, producerID int64) ([]domain.Shelf, error) {
	args := m.Called(ctx, producerID)
	return args.Get(0).([]domain.Shelf), args.Error(1)
}

func (m *mockShelfRepo) List(ctx context.Context, deleted bool) ([]domain.Shelf, error) {
	args := m.Called(ctx, deleted)
	return args.Get(0).([]domain.Shelf), args.Error(1)
}

// ─── Certification ──────────────────────────────────────────────────────────

type mockCertificationRepo struct{ mockLifecycle }

func (m *mockCertificationRepo) Create(ctx context.Context, c *domain.Certification) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCertificationRepo) Update(ctx context.Context, c *domain.Certification) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCertificationRepo) GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Certification, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Certification), args.Error(1)
}

func (m *mockCertificationRepo) GetByLabel(ctx context.Context, label string, includeDeleted bool) (*domain.Certification, error) {
	args := m.Called(ctx, label, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Certification), args.Error(1)
}

func (m *mockCertificationRepo) GetLiveByIDs(ctx context.Context, ids []int64) ([]domain.Certification, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Certification), args.Error(1)
}

func (m *mockCertificationRepo) List(ctx context.Context, deleted bool) ([]domain.Certification, error) {
	args := m.Called(ctx, deleted)
	return args.Get(0).([]domain.Certification), args.Error(1)
}

// ─── Category ───────────────────────────────────────────────────────────────

type mockCategoryRepo struct{ mockLifecycle }

func (m *mockCategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Category, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepo) GetBySlug(ctx context.Context, slug string, includeDeleted bool) (*domain.Category, error) {
	args := m.Called(ctx, slug, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepo) List(ctx context.Context, deleted bool) ([]domain.Category, error) {
	args := m.Called(ctx, deleted)
	return args.Get(0).([]domain.Category), args.Error(1)
}

// ─── Product ────────────────────────────────────────────────────────────────

type mockProductRepo struct{ mockLifecycle }

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) Update(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id int64, includeDeleted bool) (*domain.Product, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Get(1).(int64), args.Error(2)
}

func (m *mockProductRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) SetCertifications(ctx context.Context, productID int64, ids []int64) error {
	return m.Called(ctx, productID, ids).Error(0)
}

func (m *mockProductRepo) SetImage(ctx context.Context, productID int64, imageID *uuid.UUID, imageURL *string) error {
	return m.Called(ctx, productID, imageID, imageURL).Error(0)
}

func (m *mockProductRepo) IDsReferencing(ctx context.Context, ref repository.Reference, id int64) ([]int64, error) {
	args := m.Called(ctx, ref, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// ─── Transactions ───────────────────────────────────────────────────────────

// eventLog collects the events the relay dispatches after commit.
type eventLog struct {
	mu     sync.Mutex
	events []relay.Event
}

func (l *eventLog) HandleProductEvent(_ context.Context, e relay.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

// newTx returns a relay over a pgxmock pool. Callers queue the expected
// begin/commit/rollback calls on the returned mock.
func newTx(t *testing.T) (*relay.Relay, pgxmock.PgxPoolIface, *eventLog) {
	t.Helper()
	pool, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	events := &eventLog{}
	return relay.New(pool, logger.Discard(), events), pool, events
}
