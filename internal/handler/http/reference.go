package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/httputil"
)

// CurrencyService is what the currency routes need.
type CurrencyService interface {
	crudService[domain.Currency, domain.CurrencyInput]
	GetByCode(ctx context.Context, code string) (*domain.Currency, error)
}

// UnitService is what the unit routes need.
type UnitService interface {
	crudService[domain.Unit, domain.UnitInput]
	GetByCode(ctx context.Context, code string) (*domain.Unit, error)
}

// ShelfService is what the shelf routes need.
type ShelfService interface {
	crudService[domain.Shelf, domain.ShelfInput]
	ListByProducer(ctx context.Context, producerID int64) ([]domain.Shelf, error)
}

// CertificationService is what the certification routes need.
type CertificationService interface {
	crudService[domain.Certification, domain.CertificationInput]
	GetByLabel(ctx context.Context, label string) (*domain.Certification, error)
}

// CategoryService is what the category routes need.
type CategoryService interface {
	crudService[domain.Category, domain.CategoryInput]
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

func currencyRoutes(svc CurrencyService, logger *slog.Logger) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/code/{code}", lookup("code", svc.GetByCode, logger))
		newResourceHandler[domain.Currency, domain.CurrencyInput](svc, logger).mount(r)
	}
}

func unitRoutes(svc UnitService, logger *slog.Logger) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/code/{code}", lookup("code", svc.GetByCode, logger))
		newResourceHandler[domain.Unit, domain.UnitInput](svc, logger).mount(r)
	}
}

func certificationRoutes(svc CertificationService, logger *slog.Logger) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/label/{label}", lookup("label", svc.GetByLabel, logger))
		newResourceHandler[domain.Certification, domain.CertificationInput](svc, logger).mount(r)
	}
}

func categoryRoutes(svc CategoryService, logger *slog.Logger) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/slug/{slug}", lookup("slug", svc.GetBySlug, logger))
		newResourceHandler[domain.Category, domain.CategoryInput](svc, logger).mount(r)
	}
}

func shelfRoutes(svc ShelfService, logger *slog.Logger) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/producer/{producerId}", func(w http.ResponseWriter, r *http.Request) {
			producerID, ok := httputil.ParseID(w, "producerId", chi.URLParam(r, "producerId"))
			if !ok {
				return
			}
			shelves, err := svc.ListByProducer(r.Context(), producerID)
			if err != nil {
				httputil.WriteError(w, r, err, logger)
				return
			}
			if shelves == nil {
				shelves = []domain.Shelf{}
			}
			httputil.WriteData(w, http.StatusOK, shelves)
		})
		newResourceHandler[domain.Shelf, domain.ShelfInput](svc, logger).mount(r)
	}
}
