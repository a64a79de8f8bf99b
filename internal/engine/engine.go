package engine

import (
	"context"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
)

// Writer owns every mutation of the product index.
type Writer interface {
	// Upsert writes doc under its product id, replacing any previous version.
	Upsert(ctx context.Context, doc *domain.ProductDocument) error

	// BulkUpsert writes many documents in one round trip.
	BulkUpsert(ctx context.Context, docs []domain.ProductDocument) error

	// Delete removes the document for id. A missing document is not an error.
	Delete(ctx context.Context, id int64) error

	// Clear removes every document but keeps the index and its mapping.
	Clear(ctx context.Context) error

	// Recreate drops the index if it exists and creates it with a fresh mapping.
	Recreate(ctx context.Context) error

	// EnsureIndex creates the index with its mapping when it does not exist.
	EnsureIndex(ctx context.Context) error

	// Count returns the number of documents in the index.
	Count(ctx context.Context) (int64, error)
}

// Searcher runs read queries against the product index.
type Searcher interface {
	// Search runs a structured, paginated product search.
	Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchHits, error)

	// SearchByProducer lists one producer's products, newest first.
	SearchByProducer(ctx context.Context, q *domain.ProducerQuery) (*domain.SearchHits, error)

	// Suggest returns up to size live products whose title matches term.
	Suggest(ctx context.Context, term string, size int) ([]domain.Suggestion, error)
}

// Engine is a complete product index backend. Implementations may use
// Elasticsearch or in-memory storage.
type Engine interface {
	Writer
	Searcher

	// Ping checks whether the backend is reachable.
	Ping(ctx context.Context) error
}
