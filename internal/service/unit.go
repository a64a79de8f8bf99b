package service

import (
	"context"
	"log/slog"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/internal/repository"
)

// UnitService manages units of sale.
type UnitService struct {
	repo    repository.UnitRepository
	refresh *ProductRefresher
	logger  *slog.Logger
}

// NewUnitService creates a new unit service.
func NewUnitService(repo repository.UnitRepository, logger *slog.Logger, opts ...ReferenceOption) *UnitService {
	return &UnitService{repo: repo, refresh: applyReferenceOptions(opts).refresh, logger: logger}
}

func (s *UnitService) List(ctx context.Context, deleted bool) ([]domain.Unit, error) {
	return s.repo.List(ctx, deleted)
}

func (s *UnitService) Get(ctx context.Context, id int64) (*domain.Unit, error) {
	return s.repo.GetByID(ctx, id, false)
}

func (s *UnitService) GetByCode(ctx context.Context, code string) (*domain.Unit, error) {
	return s.repo.GetByCode(ctx, code, false)
}

func (s *UnitService) Create(ctx context.Context, in *domain.UnitInput) (*domain.Unit, error) {
	_, err := s.repo.GetByCode(ctx, in.Code, true)
	if err := unique(err, "unit", "code", in.Code); err != nil {
		return nil, err
	}

	u := &domain.Unit{Code: in.Code, Label: in.Label}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "unit created", slog.Int64("unit_id", u.ID))
	return u, nil
}

func (s *UnitService) Update(ctx context.Context, id int64, in *domain.UnitInput) (*domain.Unit, error) {
	u, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if in.Code != u.Code {
		_, err := s.repo.GetByCode(ctx, in.Code, true)
		if err := unique(err, "unit", "code", in.Code); err != nil {
			return nil, err
		}
	}

	renamed := in.Label != u.Label
	u.Code, u.Label = in.Code, in.Label
	err = s.refresh.when(renamed).Do(ctx, repository.RefUnit, id, func(ctx context.Context) error {
		return s.repo.Update(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UnitService) Delete(ctx context.Context, id int64) error {
	return softDelete(ctx, s.repo, id)
}

func (s *UnitService) Restore(ctx context.Context, id int64) error {
	return restore(ctx, s.repo, "unit", id, func(u *domain.Unit) bool { return u.IsDeleted })
}

func (s *UnitService) HardDelete(ctx context.Context, id int64) error {
	return hardDelete(ctx, s.repo, id)
}
