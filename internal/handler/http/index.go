package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/httputil"
)

// IndexAdmin is the set of operator actions on the search index.
type IndexAdmin interface {
	RecreateIndex(ctx context.Context) error
	ReindexAllPaginated(ctx context.Context) (int, error)
	RecreateAndReindex(ctx context.Context) (int, error)
	IndexByID(ctx context.Context, id int64) error
	ClearIndex(ctx context.Context) error
}

// IndexResult is the body of every index admin response.
type IndexResult struct {
	Message string `json:"message"`
	Count   *int   `json:"count,omitempty"`
}

// IndexHandler serves the /api/products/index operator endpoints.
type IndexHandler struct {
	index  IndexAdmin
	logger *slog.Logger
}

// NewIndexHandler creates a new index admin handler.
func NewIndexHandler(index IndexAdmin, logger *slog.Logger) *IndexHandler {
	return &IndexHandler{index: index, logger: logger}
}

// Recreate handles POST /index/recreate.
func (h *IndexHandler) Recreate(w http.ResponseWriter, r *http.Request) {
	if err := h.index.RecreateIndex(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, "recreated index with a fresh mapping", nil)
}

// ReindexAll handles POST /index/reindex-all.
func (h *IndexHandler) ReindexAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.index.ReindexAllPaginated(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, fmt.Sprintf("reindexed %d products", n), &n)
}

// RecreateAndReindex handles POST /index/recreate-and-reindex.
func (h *IndexHandler) RecreateAndReindex(w http.ResponseWriter, r *http.Request) {
	n, err := h.index.RecreateAndReindex(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, fmt.Sprintf("recreated index and reindexed %d products", n), &n)
}

// ReindexOne handles POST /index/reindex/{id}.
func (h *IndexHandler) ReindexOne(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.index.IndexByID(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, fmt.Sprintf("reindexed product %d", id), nil)
}

// Clear handles DELETE /index/clear. The index and its mapping stay.
func (h *IndexHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.index.ClearIndex(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, "cleared index", nil)
}

func (h *IndexHandler) ok(w http.ResponseWriter, r *http.Request, msg string, count *int) {
	attrs := []any{slog.String("path", r.URL.Path)}
	if count != nil {
		attrs = append(attrs, slog.Int("count", *count))
	}
	h.logger.InfoContext(r.Context(), "index admin: "+msg, attrs...)
	httputil.WriteData(w, http.StatusOK, IndexResult{Message: msg, Count: count})
}

// fail keeps NotFound as is; any other index failure is a 503.
func (h *IndexHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, apperrors.ErrNotFound) {
		err = apperrors.Unavailable("search index", err)
	}
	httputil.WriteError(w, r, err, h.logger)
}
