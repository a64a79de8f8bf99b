package elasticsearch

import (
	"strings"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
)

// BuildSearchQuery translates a structured search request into the
// Elasticsearch query DSL. Filters are AND-ed in a fixed order: free text,
// deleted status, categories, price range, currency, freshness and
// certifications.
func BuildSearchQuery(req *domain.SearchRequest) map[string]interface{} {
	boolQuery := map[string]interface{}{}

	if req.HasText() {
		boolQuery["must"] = []interface{}{textClause(req.Q)}
	}

	filters := []interface{}{deletedFilter(req.WantsDeleted())}

	if len(req.CategoryIDs) > 0 {
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"category_id": req.CategoryIDs},
		})
	}

	if req.PriceMin != nil || req.PriceMax != nil {
		rangeFilter := map[string]interface{}{}
		if req.PriceMin != nil {
			rangeFilter["gte"] = req.PriceMin.String()
		}
		if req.PriceMax != nil {
			rangeFilter["lte"] = req.PriceMax.String()
		}
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"price": rangeFilter},
		})
	}

	if req.CurrencyID != nil {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"currency_id": *req.CurrencyID},
		})
	}

	if req.WantsFresh() {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"is_fresh": true},
		})
	}

	if len(req.CertificationIDs) > 0 {
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"certification_ids": req.CertificationIDs},
		})
	}

	boolQuery["filter"] = filters

	page, size := req.PageAndSize()
	return map[string]interface{}{
		"query":            map[string]interface{}{"bool": boolQuery},
		"sort":             buildSort(domain.ResolveSort(req.Sort)),
		"from":             page * size,
		"size":             size,
		"track_total_hits": true,
	}
}

// textClause matches q as a substring or a fuzzy term on title and
// description. Title hits weigh more.
func textClause(q string) map[string]interface{} {
	pattern := "*" + strings.ToLower(strings.TrimSpace(q)) + "*"
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []interface{}{
				map[string]interface{}{
					"wildcard": map[string]interface{}{
						"title": map[string]interface{}{"value": pattern, "case_insensitive": true, "boost": 3.0},
					},
				},
				map[string]interface{}{
					"wildcard": map[string]interface{}{
						"description": map[string]interface{}{"value": pattern, "case_insensitive": true, "boost": 1.0},
					},
				},
				map[string]interface{}{
					"match": map[string]interface{}{
						"title": map[string]interface{}{"query": q, "fuzziness": "AUTO", "boost": 2.0},
					},
				},
				map[string]interface{}{
					"match": map[string]interface{}{
						"description": map[string]interface{}{"query": q, "fuzziness": "AUTO"},
					},
				},
			},
			"minimum_should_match": 1,
		},
	}
}

func deletedFilter(deleted bool) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{"is_deleted": deleted},
	}
}

func buildSort(spec domain.SortSpec) []interface{} {
	field := spec.Field
	if field == "title" {
		field = titleSortField
	}
	order := "asc"
	if spec.Desc {
		order = "desc"
	}
	return []interface{}{
		map[string]interface{}{field: map[string]interface{}{"order": order}},
		map[string]interface{}{"id": map[string]interface{}{"order": "asc"}},
	}
}

// BuildProducerQuery lists one producer's products with an optional shelf
// filter, newest first.
func BuildProducerQuery(q *domain.ProducerQuery) map[string]interface{} {
	filters := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"producer_id": q.ProducerID},
		},
	}
	if q.ShelfID != nil {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"shelf_id": *q.ShelfID},
		})
	}
	filters = append(filters, deletedFilter(q.OnlyDeleted))

	page, size := q.PageAndSize()
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		},
		"sort":             buildSort(domain.SortSpec{Field: "created_at", Desc: true}),
		"from":             page * size,
		"size":             size,
		"track_total_hits": true,
	}
}

// BuildSuggestQuery matches live products whose title contains term as a
// phrase or starts with it. term must not be blank.
func BuildSuggestQuery(term string, size int) map[string]interface{} {
	if size <= 0 {
		size = domain.DefaultSuggestionSize
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"match_phrase": map[string]interface{}{"title": term},
					},
					map[string]interface{}{
						"prefix": map[string]interface{}{
							"title": map[string]interface{}{"value": strings.ToLower(term), "case_insensitive": true},
						},
					},
				},
				"minimum_should_match": 1,
				"filter":               []interface{}{deletedFilter(false)},
			},
		},
		"size":    size,
		"_source": []string{"id", "title", "main_image_url"},
	}
}
