package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/internal/engine"
	"github.com/IGDevX/marche-conclu-shop-service/internal/mapper"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/pagination"
)

// SearchService answers product reads from the search index.
type SearchService struct {
	engine engine.Searcher
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(searcher engine.Searcher, logger *slog.Logger) *SearchService {
	return &SearchService{engine: searcher, logger: logger}
}

// Search runs a structured search and returns one page of products.
func (s *SearchService) Search(ctx context.Context, req *domain.SearchRequest) (pagination.Page[domain.ProductResponse], error) {
	if req.PriceMin != nil && req.PriceMax != nil && req.PriceMin.GreaterThan(*req.PriceMax) {
		return pagination.Page[domain.ProductResponse]{}, apperrors.InvalidInput("price_min must not exceed price_max")
	}
	if err := checkWindow(req.PageAndSize()); err != nil {
		return pagination.Page[domain.ProductResponse]{}, err
	}
	hits, err := s.engine.Search(ctx, req)
	if err != nil {
		return pagination.Page[domain.ProductResponse]{}, apperrors.Unavailable("search index", err)
	}
	s.logger.DebugContext(ctx, "product search",
		slog.String("q", req.Q),
		slog.Int64("total", hits.Total),
	)
	return toPage(hits), nil
}

// ByProducer lists one producer's products, newest first.
func (s *SearchService) ByProducer(ctx context.Context, q *domain.ProducerQuery) (pagination.Page[domain.ProductResponse], error) {
	if err := checkWindow(q.PageAndSize()); err != nil {
		return pagination.Page[domain.ProductResponse]{}, err
	}
	hits, err := s.engine.SearchByProducer(ctx, q)
	if err != nil {
		return pagination.Page[domain.ProductResponse]{}, apperrors.Unavailable("search index", err)
	}
	return toPage(hits), nil
}

// Suggest returns autocomplete hits. A blank term returns an empty list
// without querying the index.
func (s *SearchService) Suggest(ctx context.Context, term string, size int) ([]domain.Suggestion, error) {
	if strings.TrimSpace(term) == "" {
		return []domain.Suggestion{}, nil
	}
	if size <= 0 {
		size = domain.DefaultSuggestionSize
	}
	size = min(size, domain.MaxPageSize)
	out, err := s.engine.Suggest(ctx, term, size)
	if err != nil {
		return nil, apperrors.Unavailable("search index", fmt.Errorf("suggest: %w", err))
	}
	if out == nil {
		out = []domain.Suggestion{}
	}
	return out, nil
}

func checkWindow(page, size int) error {
	if !domain.WithinResultWindow(page, size) {
		return apperrors.InvalidInput(fmt.Sprintf(
			"page %d with size %d reaches past the first %d results", page, size, domain.MaxResultWindow))
	}
	return nil
}

func toPage(hits *domain.SearchHits) pagination.Page[domain.ProductResponse] {
	return pagination.NewPage(mapper.ToResponses(hits.Documents), hits.Total,
		pagination.Params{Page: hits.Page, Size: hits.Size})
}
