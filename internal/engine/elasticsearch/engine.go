package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/httpclient"
)

// Config configures the Elasticsearch engine.
type Config struct {
	URL   string
	Index string
	// Transport is wrapped by a circuit breaker. Nil uses http.DefaultTransport.
	Transport http.RoundTripper
	Breaker   httpclient.CircuitBreakerConfig
}

// Engine is an Elasticsearch-backed implementation of engine.Engine.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source domain.ProductDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type esSuggestResponse struct {
	Hits struct {
		Hits []struct {
			Source struct {
				ID           int64   `json:"id"`
				Title        string  `json:"title"`
				MainImageURL *string `json:"main_image_url"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

type esCountResponse struct {
	Count int64 `json:"count"`
}

type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New creates an engine for cfg. It does not touch the cluster; call
// EnsureIndex once the service starts.
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	if cfg.Index == "" {
		cfg.Index = DefaultIndexName
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = httpclient.DefaultCircuitBreakerConfig("elasticsearch")
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Transport: httpclient.NewBreakerTransport(cfg.Transport, cfg.Breaker, logger),
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	return &Engine{
		client:    client,
		indexName: cfg.Index,
		logger:    logger,
	}, nil
}

// IndexName returns the managed index.
func (e *Engine) IndexName() string { return e.indexName }

// Ping checks whether the Elasticsearch cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (e *Engine) EnsureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.indexName}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ensure index: %w", err)
	}
	closeBody(res)

	if res.StatusCode == http.StatusOK {
		e.logger.Info("elasticsearch index already exists", slog.String("index", e.indexName))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("elasticsearch ensure index: unexpected status %s", res.Status())
	}
	return e.createIndex(ctx)
}

func (e *Engine) createIndex(ctx context.Context) error {
	res, err := e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(buildIndexMapping())),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch create index: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("elasticsearch create index", res)
	}

	e.logger.Info("elasticsearch index created", slog.String("index", e.indexName))
	return nil
}

// Recreate drops the index if present and creates it with a fresh mapping.
func (e *Engine) Recreate(ctx context.Context) error {
	if err := e.DeleteIndex(ctx); err != nil {
		return err
	}
	return e.createIndex(ctx)
}

// DeleteIndex removes the whole index. A missing index is not an error.
func (e *Engine) DeleteIndex(ctx context.Context) error {
	res, err := e.client.Indices.Delete(
		[]string{e.indexName},
		e.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete index: %w", err)
	}
	defer closeBody(res)

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("elasticsearch delete index", res)
	}

	e.logger.Info("elasticsearch index deleted", slog.String("index", e.indexName))
	return nil
}

// Upsert writes doc under its product id.
func (e *Engine) Upsert(ctx context.Context, doc *domain.ProductDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal document: %w", err)
	}

	res, err := e.client.Index(
		e.indexName,
		bytes.NewReader(data),
		e.client.Index.WithDocumentID(docID(doc.ID)),
		e.client.Index.WithRefresh("true"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("elasticsearch index", res)
	}

	e.logger.Debug("indexed product", slog.Int64("product_id", doc.ID))
	return nil
}

// BulkUpsert writes docs with the bulk NDJSON API. Per-item failures are
// collected into one error.
func (e *Engine) BulkUpsert(ctx context.Context, docs []domain.ProductDocument) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range docs {
		action := map[string]interface{}{
			"index": map[string]interface{}{
				"_index": e.indexName,
				"_id":    docID(docs[i].ID),
			},
		}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode action: %w", err)
		}
		if err := enc.Encode(&docs[i]); err != nil {
			return fmt.Errorf("elasticsearch bulk index: encode document: %w", err)
		}
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithIndex(e.indexName),
		e.client.Bulk.WithRefresh("true"),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk index: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("elasticsearch bulk index", res)
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("elasticsearch bulk index: decode response: %w", err)
	}

	if bulkResp.Errors {
		var errMsgs []string
		for _, item := range bulkResp.Items {
			if item.Index.Error.Type != "" {
				errMsgs = append(errMsgs, fmt.Sprintf("id=%s: %s: %s", item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason))
			}
		}
		return fmt.Errorf("elasticsearch bulk index: partial errors: %s", strings.Join(errMsgs, "; "))
	}

	e.logger.Debug("bulk indexed products", slog.Int("count", len(docs)))
	return nil
}

// Delete removes the document for id. A 404 is ignored.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	res, err := e.client.Delete(
		e.indexName,
		docID(id),
		e.client.Delete.WithRefresh("true"),
		e.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer closeBody(res)

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("elasticsearch delete", res)
	}

	e.logger.Debug("deleted product document", slog.Int64("product_id", id))
	return nil
}

// Clear deletes every document and keeps the index.
func (e *Engine) Clear(ctx context.Context) error {
	body := `{"query":{"match_all":{}}}`
	res, err := e.client.DeleteByQuery(
		[]string{e.indexName},
		strings.NewReader(body),
		e.client.DeleteByQuery.WithConflicts("proceed"),
		e.client.DeleteByQuery.WithRefresh(true),
		e.client.DeleteByQuery.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch clear: %w", err)
	}
	defer closeBody(res)

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("elasticsearch clear", res)
	}
	return nil
}

// Count returns the number of documents. A missing index counts as empty.
func (e *Engine) Count(ctx context.Context) (int64, error) {
	res, err := e.client.Count(
		e.client.Count.WithIndex(e.indexName),
		e.client.Count.WithContext(ctx),
	)
	if err != nil {
		return 0, fmt.Errorf("elasticsearch count: %w", err)
	}
	defer closeBody(res)

	if res.StatusCode == http.StatusNotFound {
		return 0, nil
	}
	if res.IsError() {
		return 0, responseError("elasticsearch count", res)
	}

	var countResp esCountResponse
	if err := json.NewDecoder(res.Body).Decode(&countResp); err != nil {
		return 0, fmt.Errorf("elasticsearch count: decode response: %w", err)
	}
	return countResp.Count, nil
}

// Search runs a structured product search.
func (e *Engine) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchHits, error) {
	page, size := req.PageAndSize()
	return e.searchDocuments(ctx, "elasticsearch search", BuildSearchQuery(req), page, size)
}

// SearchByProducer lists one producer's products, newest first.
func (e *Engine) SearchByProducer(ctx context.Context, q *domain.ProducerQuery) (*domain.SearchHits, error) {
	page, size := q.PageAndSize()
	return e.searchDocuments(ctx, "elasticsearch producer search", BuildProducerQuery(q), page, size)
}

func (e *Engine) searchDocuments(ctx context.Context, op string, query map[string]interface{}, page, size int) (*domain.SearchHits, error) {
	var esResp esSearchResponse
	if err := e.search(ctx, op, query, &esResp); err != nil {
		return nil, err
	}

	docs := make([]domain.ProductDocument, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return &domain.SearchHits{
		Documents: docs,
		Total:     esResp.Hits.Total.Value,
		Page:      page,
		Size:      size,
	}, nil
}

// Suggest returns up to size live products whose title matches term.
func (e *Engine) Suggest(ctx context.Context, term string, size int) ([]domain.Suggestion, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Suggestion{}, nil
	}

	var esResp esSuggestResponse
	if err := e.search(ctx, "elasticsearch suggest", BuildSuggestQuery(term, size), &esResp); err != nil {
		return nil, err
	}

	out := make([]domain.Suggestion, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		out = append(out, domain.Suggestion{
			ID:       hit.Source.ID,
			Title:    hit.Source.Title,
			ImageURL: hit.Source.MainImageURL,
		})
	}
	return out, nil
}

func (e *Engine) search(ctx context.Context, op string, query map[string]interface{}, dst any) error {
	data, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("%s: marshal query: %w", op, err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError(op, res)
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func responseError(op string, res *esapi.Response) error {
	var errResp esErrorResponse
	if err := json.NewDecoder(res.Body).Decode(&errResp); err == nil && errResp.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, res.Status())
}

func closeBody(res *esapi.Response) {
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}
