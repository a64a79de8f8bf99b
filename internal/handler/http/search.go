package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/httputil"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/pagination"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/validator"
)

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// SearchService is what the read-side routes need.
type SearchService interface {
	Search(ctx context.Context, req *domain.SearchRequest) (pagination.Page[domain.ProductResponse], error)
	ByProducer(ctx context.Context, q *domain.ProducerQuery) (pagination.Page[domain.ProductResponse], error)
	Suggest(ctx context.Context, term string, size int) ([]domain.Suggestion, error)
}

// SearchHandler serves product search, suggestions and producer listings
// from the search index.
type SearchHandler struct {
	service SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{service: svc, logger: logger}
}

type suggestQuery struct {
	Q    string `schema:"q"`
	Size int    `schema:"size"`
}

type producerQuery struct {
	ShelfID     *int64 `schema:"shelfId"`
	OnlyDeleted bool   `schema:"onlyDeleted"`
	Page        int    `schema:"page"`
	Size        int    `schema:"size"`
}

// Search handles POST /api/products/search. An empty body searches
// everything live.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	if r.ContentLength != 0 {
		if err := validator.DecodeAndValidate(r, &req); err != nil {
			httputil.WriteValidationError(w, r, err)
			return
		}
	}
	page, err := h.service.Search(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, page)
}

// Suggest handles GET /api/products/suggest?q=&size=.
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var q suggestQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid query: "+err.Error()), h.logger)
		return
	}
	out, err := h.service.Suggest(r.Context(), q.Q, q.Size)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, out)
}

// ByProducer handles GET /api/products/producer/{producerId}.
func (h *SearchHandler) ByProducer(w http.ResponseWriter, r *http.Request) {
	producerID, ok := httputil.ParseID(w, "producerId", chi.URLParam(r, "producerId"))
	if !ok {
		return
	}
	var q producerQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid query: "+err.Error()), h.logger)
		return
	}

	page, err := h.service.ByProducer(r.Context(), &domain.ProducerQuery{
		ProducerID:  producerID,
		ShelfID:     q.ShelfID,
		OnlyDeleted: q.OnlyDeleted,
		Page:        q.Page,
		Size:        q.Size,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, page)
}
