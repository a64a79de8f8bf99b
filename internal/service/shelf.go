package service

import (
	"context"
	"log/slog"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/internal/repository"
)

// ShelfService manages producer shelves. A label is unique per producer and
// a shelf never changes producer.
type ShelfService struct {
	repo    repository.ShelfRepository
	refresh *ProductRefresher
	logger  *slog.Logger
}

// NewShelfService creates a new shelf service.
func NewShelfService(repo repository.ShelfRepository, logger *slog.Logger, opts ...ReferenceOption) *ShelfService {
	return &ShelfService{repo: repo, refresh: applyReferenceOptions(opts).refresh, logger: logger}
}

// List returns the live or the soft-deleted shelves.
func (s *ShelfService) List(ctx context.Context, deleted bool) ([]domain.Shelf, error) {
	return s.repo.List(ctx, deleted)
}

// Get returns a live shelf.
func (s *ShelfService) Get(ctx context.Context, id int64) (*domain.Shelf, error) {
	return s.repo.GetByID(ctx, id, false)
}

// ListByProducer returns a producer's live shelves.
func (s *ShelfService) ListByProducer(ctx context.Context, producerID int64) ([]domain.Shelf, error) {
	return s.repo.ListByProducer(ctx, producerID)
}

// Create adds a shelf. AlreadyExists if the producer already has the label.
func (s *ShelfService) Create(ctx context.Context, in *domain.ShelfInput) (*domain.Shelf, error) {
	_, err := s.repo.GetByProducerAndLabel(ctx, in.ProducerID, in.Label)
	if err := unique(err, "shelf", "label", in.Label); err != nil {
		return nil, err
	}

	sh := &domain.Shelf{Label: in.Label, ProducerID: in.ProducerID}
	if err := s.repo.Create(ctx, sh); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "shelf created",
		slog.Int64("shelf_id", sh.ID),
		slog.Int64("producer_id", sh.ProducerID),
	)
	return sh, nil
}

// Update renames a live shelf. in.ProducerID is ignored.
func (s *ShelfService) Update(ctx context.Context, id int64, in *domain.ShelfInput) (*domain.Shelf, error) {
	sh, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if in.Label != sh.Label {
		_, err := s.repo.GetByProducerAndLabel(ctx, sh.ProducerID, in.Label)
		if err := unique(err, "shelf", "label", in.Label); err != nil {
			return nil, err
		}
	}

	renamed := in.Label != sh.Label
	sh.Label = in.Label
	err = s.refresh.when(renamed).Do(ctx, repository.RefShelf, id, func(ctx context.Context) error {
		return s.repo.Update(ctx, sh)
	})
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// Delete soft-deletes a shelf.
func (s *ShelfService) Delete(ctx context.Context, id int64) error {
	return softDelete(ctx, s.repo, id)
}

// Restore brings back a soft-deleted shelf.
func (s *ShelfService) Restore(ctx context.Context, id int64) error {
	return restore(ctx, s.repo, "shelf", id, func(sh *domain.Shelf) bool { return sh.IsDeleted })
}

// HardDelete removes a shelf row.
func (s *ShelfService) HardDelete(ctx context.Context, id int64) error {
	return hardDelete(ctx, s.repo, id)
}
