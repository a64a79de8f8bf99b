package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/internal/repository"
)

// CurrencyService manages currencies.
type CurrencyService struct {
	repo    repository.CurrencyRepository
	refresh *ProductRefresher
	logger  *slog.Logger
}

// NewCurrencyService creates a new currency service.
func NewCurrencyService(repo repository.CurrencyRepository, logger *slog.Logger, opts ...ReferenceOption) *CurrencyService {
	return &CurrencyService{repo: repo, refresh: applyReferenceOptions(opts).refresh, logger: logger}
}

// List returns the live or the soft-deleted currencies.
func (s *CurrencyService) List(ctx context.Context, deleted bool) ([]domain.Currency, error) {
	return s.repo.List(ctx, deleted)
}

// Get returns a live currency.
func (s *CurrencyService) Get(ctx context.Context, id int64) (*domain.Currency, error) {
	return s.repo.GetByID(ctx, id, false)
}

// GetByCode returns a live currency by ISO code.
func (s *CurrencyService) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	return s.repo.GetByCode(ctx, strings.ToUpper(code), false)
}

// Create adds a currency. AlreadyExists if the code is taken.
func (s *CurrencyService) Create(ctx context.Context, in *domain.CurrencyInput) (*domain.Currency, error) {
	code := strings.ToUpper(in.Code)
	_, err := s.repo.GetByCode(ctx, code, true)
	if err := unique(err, "currency", "code", code); err != nil {
		return nil, err
	}

	c := &domain.Currency{Code: code, Label: in.Label, USDExchangeRate: in.USDExchangeRate}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "currency created", slog.Int64("currency_id", c.ID), slog.String("code", c.Code))
	return c, nil
}

// Update replaces a live currency.
func (s *CurrencyService) Update(ctx context.Context, id int64, in *domain.CurrencyInput) (*domain.Currency, error) {
	c, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	code := strings.ToUpper(in.Code)
	if code != c.Code {
		_, err := s.repo.GetByCode(ctx, code, true)
		if err := unique(err, "currency", "code", code); err != nil {
			return nil, err
		}
	}

	renamed := code != c.Code
	c.Code, c.Label, c.USDExchangeRate = code, in.Label, in.USDExchangeRate
	err = s.refresh.when(renamed).Do(ctx, repository.RefCurrency, id, func(ctx context.Context) error {
		return s.repo.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "currency updated", slog.Int64("currency_id", id))
	return c, nil
}

// Delete soft-deletes a currency.
func (s *CurrencyService) Delete(ctx context.Context, id int64) error {
	return softDelete(ctx, s.repo, id)
}

// Restore brings back a soft-deleted currency.
func (s *CurrencyService) Restore(ctx context.Context, id int64) error {
	return restore(ctx, s.repo, "currency", id, func(c *domain.Currency) bool { return c.IsDeleted })
}

// HardDelete removes a currency row.
func (s *CurrencyService) HardDelete(ctx context.Context, id int64) error {
	if err := hardDelete(ctx, s.repo, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "currency hard deleted", slog.Int64("currency_id", id))
	return nil
}
