package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
)

// Engine is an in-memory implementation of engine.Engine with the same filter,
// sort and pagination rules as the Elasticsearch backend. Documents are kept
// as their serialized JSON so repeated writes of the same state are
// byte-identical. Thread-safe via sync.RWMutex.
type Engine struct {
	mu   sync.RWMutex
	docs map[int64][]byte
}

// New creates a new in-memory search engine.
func New() *Engine {
	return &Engine{docs: make(map[int64][]byte)}
}

// Ping always succeeds.
func (e *Engine) Ping(context.Context) error { return nil }

// EnsureIndex is a no-op; the in-memory index always exists.
func (e *Engine) EnsureIndex(context.Context) error { return nil }

// Upsert stores doc under its id.
func (e *Engine) Upsert(_ context.Context, doc *domain.ProductDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("memory upsert: marshal document: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs[doc.ID] = raw
	return nil
}

// BulkUpsert stores every document.
func (e *Engine) BulkUpsert(ctx context.Context, docs []domain.ProductDocument) error {
	for i := range docs {
		if err := e.Upsert(ctx, &docs[i]); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the document for id.
func (e *Engine) Delete(_ context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.docs, id)
	return nil
}

// Clear removes every document.
func (e *Engine) Clear(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs = make(map[int64][]byte)
	return nil
}

// Recreate drops all documents.
func (e *Engine) Recreate(ctx context.Context) error {
	return e.Clear(ctx)
}

// Count returns the number of stored documents.
func (e *Engine) Count(context.Context) (int64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return int64(len(e.docs)), nil
}

// Raw returns the stored JSON for id.
func (e *Engine) Raw(id int64) ([]byte, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	raw, ok := e.docs[id]
	return raw, ok
}

// Document returns the stored document for id.
func (e *Engine) Document(id int64) (*domain.ProductDocument, bool) {
	raw, ok := e.Raw(id)
	if !ok {
		return nil, false
	}
	var doc domain.ProductDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	return &doc, true
}

func (e *Engine) all() ([]domain.ProductDocument, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.ProductDocument, 0, len(e.docs))
	for id, raw := range e.docs {
		var doc domain.ProductDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("memory: decode document %d: %w", id, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// Search runs a structured product search.
func (e *Engine) Search(_ context.Context, req *domain.SearchRequest) (*domain.SearchHits, error) {
	docs, err := e.all()
	if err != nil {
		return nil, err
	}

	matched := make([]domain.ProductDocument, 0)
	for i := range docs {
		if matchesSearch(&docs[i], req) {
			matched = append(matched, docs[i])
		}
	}
	sortDocuments(matched, domain.ResolveSort(req.Sort))

	page, size := req.PageAndSize()
	return paginate(matched, page, size), nil
}

// SearchByProducer lists one producer's products, newest first.
func (e *Engine) SearchByProducer(_ context.Context, q *domain.ProducerQuery) (*domain.SearchHits, error) {
	docs, err := e.all()
	if err != nil {
		return nil, err
	}

	matched := make([]domain.ProductDocument, 0)
	for _, d := range docs {
		if d.ProducerID != q.ProducerID || d.IsDeleted != q.OnlyDeleted {
			continue
		}
		if q.ShelfID != nil && (d.ShelfID == nil || *d.ShelfID != *q.ShelfID) {
			continue
		}
		matched = append(matched, d)
	}
	sortDocuments(matched, domain.SortSpec{Field: "created_at", Desc: true})

	page, size := q.PageAndSize()
	return paginate(matched, page, size), nil
}

// Suggest returns live products whose title contains term as a phrase or has
// a word starting with it. Phrase hits rank first.
func (e *Engine) Suggest(_ context.Context, term string, size int) ([]domain.Suggestion, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Suggestion{}, nil
	}
	if size <= 0 {
		size = domain.DefaultSuggestionSize
	}

	docs, err := e.all()
	if err != nil {
		return nil, err
	}

	type scored struct {
		doc   domain.ProductDocument
		score int
	}
	termTokens := tokenize(term)
	prefix := strings.ToLower(term)

	hits := make([]scored, 0)
	for _, d := range docs {
		if d.IsDeleted {
			continue
		}
		titleTokens := tokenize(d.Title)
		score := 0
		if containsPhrase(titleTokens, termTokens) {
			score += 2
		}
		if slices.ContainsFunc(titleTokens, func(t string) bool { return strings.HasPrefix(t, prefix) }) {
			score++
		}
		if score > 0 {
			hits = append(hits, scored{doc: d, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc.ID < hits[j].doc.ID
	})

	if len(hits) > size {
		hits = hits[:size]
	}
	out := make([]domain.Suggestion, 0, len(hits))
	for _, h := range hits {
		out = append(out, domain.Suggestion{ID: h.doc.ID, Title: h.doc.Title, ImageURL: h.doc.MainImageURL})
	}
	return out, nil
}

func matchesSearch(d *domain.ProductDocument, req *domain.SearchRequest) bool {
	if req.HasText() && !matchesText(d, req.Q) {
		return false
	}
	if d.IsDeleted != req.WantsDeleted() {
		return false
	}
	if len(req.CategoryIDs) > 0 && (d.CategoryID == nil || !slices.Contains(req.CategoryIDs, *d.CategoryID)) {
		return false
	}
	if req.PriceMin != nil && d.Price.LessThan(*req.PriceMin) {
		return false
	}
	if req.PriceMax != nil && d.Price.GreaterThan(*req.PriceMax) {
		return false
	}
	if req.CurrencyID != nil && (d.CurrencyID == nil || *d.CurrencyID != *req.CurrencyID) {
		return false
	}
	if req.WantsFresh() && !d.IsFresh {
		return false
	}
	if len(req.CertificationIDs) > 0 && !slices.ContainsFunc(d.CertificationIDs, func(id int64) bool {
		return slices.Contains(req.CertificationIDs, id)
	}) {
		return false
	}
	return true
}

// matchesText mirrors the free-text clause: a case-insensitive substring hit
// on title or description, or a fuzzy token hit on either.
func matchesText(d *domain.ProductDocument, q string) bool {
	needle := strings.ToLower(strings.TrimSpace(q))
	description := ""
	if d.Description != nil {
		description = *d.Description
	}
	if strings.Contains(strings.ToLower(d.Title), needle) || strings.Contains(strings.ToLower(description), needle) {
		return true
	}
	queryTokens := tokenize(q)
	return fuzzyMatch(tokenize(d.Title), queryTokens) || fuzzyMatch(tokenize(description), queryTokens)
}

func sortDocuments(docs []domain.ProductDocument, spec domain.SortSpec) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := &docs[i], &docs[j]
		var c int
		switch spec.Field {
		case "price":
			c = a.Price.Cmp(b.Price)
		case "title":
			c = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			return a.ID < b.ID
		}
		if spec.Desc {
			return c > 0
		}
		return c < 0
	})
}

func paginate(docs []domain.ProductDocument, page, size int) *domain.SearchHits {
	total := len(docs)
	from := total
	if page >= 0 && size > 0 && page <= total/size {
		from = page * size
	}
	to := total
	if size > 0 && size < total-from {
		to = from + size
	}
	return &domain.SearchHits{
		Documents: docs[from:to],
		Total:     int64(total),
		Page:      page,
		Size:      size,
	}
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		if slices.Equal(tokens[i:i+len(phrase)], phrase) {
			return true
		}
	}
	return false
}

// fuzzyMatch reports whether any query token is within the automatic edit
// distance of any field token.
func fuzzyMatch(fieldTokens, queryTokens []string) bool {
	for _, q := range queryTokens {
		allowed := autoFuzziness(q)
		for _, f := range fieldTokens {
			if levenshtein(q, f) <= allowed {
				return true
			}
		}
	}
	return false
}

// autoFuzziness follows Elasticsearch's AUTO setting: exact for 1-2 runes, one
// edit for 3-5, two edits beyond.
func autoFuzziness(token string) int {
	switch n := len([]rune(token)); {
	case n <= 2:
		return 0
	case n <= 5:
		return 1
	default:
		return 2
	}
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
