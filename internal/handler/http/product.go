package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/internal/storage"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/httputil"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/pagination"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/validator"
)

// maxImageBytes caps a multipart image upload.
const maxImageBytes = 10 << 20

// ProductService is what the product write routes need.
type ProductService interface {
	lifecycleService
	List(ctx context.Context, deleted bool, p pagination.Params) (pagination.Page[domain.ProductResponse], error)
	Get(ctx context.Context, id int64) (*domain.ProductResponse, error)
	Create(ctx context.Context, in *domain.ProductInput) (*domain.ProductResponse, error)
	Update(ctx context.Context, id int64, in *domain.ProductInput) (*domain.ProductResponse, error)
	UploadImage(ctx context.Context, id int64, in *storage.UploadInput) (*domain.ProductResponse, error)
	DeleteImage(ctx context.Context, id int64) error
}

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: logger}
}

// ListProducts handles GET /api/products and GET /api/products/deleted.
func (h *ProductHandler) ListProducts(deleted bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.service.List(r.Context(), deleted, pagination.FromRequest(r))
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteData(w, http.StatusOK, page)
	}
}

// GetProduct handles GET /api/products/{id}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/products.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := validator.DecodeAndValidate(r, &in); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}
	product, err := h.service.Create(r.Context(), &in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/products/{id}. Omitting certification_ids
// keeps the current certifications; an empty list clears them.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var in domain.ProductInput
	if err := validator.DecodeAndValidate(r, &in); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}
	product, err := h.service.Update(r.Context(), id, &in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, product)
}

// UploadImage handles POST /api/products/{id}/image with a multipart "file".
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, r, apperrors.InvalidInput("image exceeds 10 MiB"), h.logger)
			return
		}
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid multipart body: "+err.Error()), h.logger)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("multipart field 'file' is required"), h.logger)
		return
	}
	defer file.Close()

	product, err := h.service.UploadImage(r.Context(), id, &storage.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, product)
}

// DeleteImage handles DELETE /api/products/{id}/image.
func (h *ProductHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	byID(h.service.DeleteImage, h.logger)(w, r)
}
