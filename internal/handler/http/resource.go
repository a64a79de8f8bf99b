package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/IGDevX/marche-conclu-shop-service/pkg/httputil"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/validator"
)

// lifecycleService is the soft delete / restore / hard delete trio every
// catalog entity supports.
type lifecycleService interface {
	Delete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	HardDelete(ctx context.Context, id int64) error
}

// crudService is the shape shared by the reference-data services.
type crudService[T, In any] interface {
	lifecycleService
	List(ctx context.Context, deleted bool) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, in *In) (*T, error)
	Update(ctx context.Context, id int64, in *In) (*T, error)
}

// resourceHandler serves the standard routes of one reference entity.
type resourceHandler[T, In any] struct {
	svc    crudService[T, In]
	logger *slog.Logger
}

func newResourceHandler[T, In any](svc crudService[T, In], logger *slog.Logger) *resourceHandler[T, In] {
	return &resourceHandler[T, In]{svc: svc, logger: logger}
}

// mount registers the list, read, write and lifecycle routes on r.
func (h *resourceHandler[T, In]) mount(r chi.Router) {
	r.Get("/", h.list(false))
	r.Get("/deleted", h.list(true))
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	mountLifecycle(r, h.svc, h.logger)
}

func (h *resourceHandler[T, In]) list(deleted bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.svc.List(r.Context(), deleted)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		if items == nil {
			items = []T{}
		}
		httputil.WriteData(w, http.StatusOK, items)
	}
}

func (h *resourceHandler[T, In]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, item)
}

func (h *resourceHandler[T, In]) create(w http.ResponseWriter, r *http.Request) {
	var in In
	if err := validator.DecodeAndValidate(r, &in); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}
	item, err := h.svc.Create(r.Context(), &in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, item)
}

func (h *resourceHandler[T, In]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var in In
	if err := validator.DecodeAndValidate(r, &in); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}
	item, err := h.svc.Update(r.Context(), id, &in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, item)
}

// mountLifecycle registers DELETE /{id}, PATCH /{id}/restore and
// DELETE /{id}/hard. All three answer 204.
func mountLifecycle(r chi.Router, svc lifecycleService, logger *slog.Logger) {
	r.Delete("/{id}", byID(svc.Delete, logger))
	r.Patch("/{id}/restore", byID(svc.Restore, logger))
	r.Delete("/{id}/hard", byID(svc.HardDelete, logger))
}

func byID(fn func(ctx context.Context, id int64) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
		if !ok {
			return
		}
		if err := fn(r.Context(), id); err != nil {
			httputil.WriteError(w, r, err, logger)
			return
		}
		httputil.NoContent(w)
	}
}

// lookup serves GET /<field>/{param} for a natural-key getter.
func lookup[T any](param string, fn func(ctx context.Context, key string) (*T, error), logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := fn(r.Context(), chi.URLParam(r, param))
		if err != nil {
			httputil.WriteError(w, r, err, logger)
			return
		}
		httputil.WriteData(w, http.StatusOK, item)
	}
}
