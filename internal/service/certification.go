package service

import (
	"context"
	"log/slog"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/internal/repository"
)

// CertificationService manages product certifications.
type CertificationService struct {
	repo    repository.CertificationRepository
	refresh *ProductRefresher
	logger  *slog.Logger
}

// NewCertificationService creates a new certification service.
func NewCertificationService(repo repository.CertificationRepository, logger *slog.Logger, opts ...ReferenceOption) *CertificationService {
	return &CertificationService{repo: repo, refresh: applyReferenceOptions(opts).refresh, logger: logger}
}

func (s *CertificationService) List(ctx context.Context, deleted bool) ([]domain.Certification, error) {
	return s.repo.List(ctx, deleted)
}

func (s *CertificationService) Get(ctx context.Context, id int64) (*domain.Certification, error) {
	return s.repo.GetByID(ctx, id, false)
}

func (s *CertificationService) GetByLabel(ctx context.Context, label string) (*domain.Certification, error) {
	return s.repo.GetByLabel(ctx, label, false)
}

func (s *CertificationService) Create(ctx context.Context, in *domain.CertificationInput) (*domain.Certification, error) {
	_, err := s.repo.GetByLabel(ctx, in.Label, true)
	if err := unique(err, "certification", "label", in.Label); err != nil {
		return nil, err
	}

	c := &domain.Certification{Label: in.Label}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "certification created", slog.Int64("certification_id", c.ID))
	return c, nil
}

func (s *CertificationService) Update(ctx context.Context, id int64, in *domain.CertificationInput) (*domain.Certification, error) {
	c, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if in.Label != c.Label {
		_, err := s.repo.GetByLabel(ctx, in.Label, true)
		if err := unique(err, "certification", "label", in.Label); err != nil {
			return nil, err
		}
	}

	renamed := in.Label != c.Label
	c.Label = in.Label
	err = s.refresh.when(renamed).Do(ctx, repository.RefCertification, id, func(ctx context.Context) error {
		return s.repo.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete soft-deletes a certification. Products drop it from their
// documents.
func (s *CertificationService) Delete(ctx context.Context, id int64) error {
	return s.refresh.Do(ctx, repository.RefCertification, id, func(ctx context.Context) error {
		return softDelete(ctx, s.repo, id)
	})
}

func (s *CertificationService) Restore(ctx context.Context, id int64) error {
	return s.refresh.Do(ctx, repository.RefCertification, id, func(ctx context.Context) error {
		return restore(ctx, s.repo, "certification", id, func(c *domain.Certification) bool { return c.IsDeleted })
	})
}

// HardDelete removes a certification row and its product links.
func (s *CertificationService) HardDelete(ctx context.Context, id int64) error {
	return s.refresh.Do(ctx, repository.RefCertification, id, func(ctx context.Context) error {
		return hardDelete(ctx, s.repo, id)
	})
}
