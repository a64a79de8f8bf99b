package elasticsearch

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IGDevX/marche-conclu-shop-service/internal/domain"
)

func toJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestBuildSearchQuery_EmptyRequest(t *testing.T) {
	got := BuildSearchQuery(&domain.SearchRequest{})

	assert.JSONEq(t, `{
		"query": {"bool": {"filter": [{"term": {"is_deleted": false}}]}},
		"sort": [{"created_at": {"order": "desc"}}, {"id": {"order": "asc"}}],
		"from": 0,
		"size": 20,
		"track_total_hits": true
	}`, toJSON(t, got))
}

func TestBuildSearchQuery_AllClausesInOrder(t *testing.T) {
	minPrice := decimal.RequireFromString("1.5")
	maxPrice := decimal.RequireFromString("10")
	currency := int64(3)
	fresh, deleted := true, true
	page, size := 2, 5

	got := BuildSearchQuery(&domain.SearchRequest{
		Q:                "Pomme",
		CategoryIDs:      []int64{1, 2},
		PriceMin:         &minPrice,
		PriceMax:         &maxPrice,
		CurrencyID:       &currency,
		Fresh:            &fresh,
		CertificationIDs: []int64{7},
		OnlyDeleted:      &deleted,
		Sort:             "TITLE_ASC",
		Page:             &page,
		Size:             &size,
	})

	assert.JSONEq(t, `{
		"query": {"bool": {
			"must": [{"bool": {
				"should": [
					{"wildcard": {"title": {"value": "*pomme*", "case_insensitive": true, "boost": 3}}},
					{"wildcard": {"description": {"value": "*pomme*", "case_insensitive": true, "boost": 1}}},
					{"match": {"title": {"query": "Pomme", "fuzziness": "AUTO", "boost": 2}}},
					{"match": {"description": {"query": "Pomme", "fuzziness": "AUTO"}}}
				],
				"minimum_should_match": 1
			}}],
			"filter": [
				{"term": {"is_deleted": true}},
				{"terms": {"category_id": [1, 2]}},
				{"range": {"price": {"gte": "1.5", "lte": "10"}}},
				{"term": {"currency_id": 3}},
				{"term": {"is_fresh": true}},
				{"terms": {"certification_ids": [7]}}
			]
		}},
		"sort": [{"title.keyword": {"order": "asc"}}, {"id": {"order": "asc"}}],
		"from": 10,
		"size": 5,
		"track_total_hits": true
	}`, toJSON(t, got))
}

func TestBuildSearchQuery_OptionalFilters(t *testing.T) {
	notFresh := false
	minOnly := decimal.NewFromInt(4)

	got := BuildSearchQuery(&domain.SearchRequest{
		Q:           "   ",
		CategoryIDs: []int64{},
		Fresh:       &notFresh,
		PriceMin:    &minOnly,
	})

	query := got["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.NotContains(t, query, "must", "blank text adds no clause")
	assert.JSONEq(t, `[
		{"term": {"is_deleted": false}},
		{"range": {"price": {"gte": "4"}}}
	]`, toJSON(t, query["filter"]))
}

func TestBuildSearchQuery_Sort(t *testing.T) {
	tests := []struct {
		sort  string
		field string
		order string
	}{
		{"", "created_at", "desc"},
		{"nonsense", "created_at", "desc"},
		{"price_asc", "price", "asc"},
		{"Price_Desc", "price", "desc"},
		{"date_asc", "created_at", "asc"},
		{"title_desc", "title.keyword", "desc"},
	}
	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			got := BuildSearchQuery(&domain.SearchRequest{Sort: tt.sort})
			sort := got["sort"].([]interface{})
			first := sort[0].(map[string]interface{})
			require.Contains(t, first, tt.field)
			assert.Equal(t, tt.order, first[tt.field].(map[string]interface{})["order"])
		})
	}
}

func TestBuildSearchQuery_SizeCapped(t *testing.T) {
	size := 5000
	got := BuildSearchQuery(&domain.SearchRequest{Size: &size})
	assert.Equal(t, domain.MaxPageSize, got["size"])
}

func TestBuildProducerQuery(t *testing.T) {
	shelf := int64(9)

	got := BuildProducerQuery(&domain.ProducerQuery{ProducerID: 42, ShelfID: &shelf, OnlyDeleted: true, Page: 1, Size: 10})

	assert.JSONEq(t, `{
		"query": {"bool": {"filter": [
			{"term": {"producer_id": 42}},
			{"term": {"shelf_id": 9}},
			{"term": {"is_deleted": true}}
		]}},
		"sort": [{"created_at": {"order": "desc"}}, {"id": {"order": "asc"}}],
		"from": 10,
		"size": 10,
		"track_total_hits": true
	}`, toJSON(t, got))
}

func TestBuildProducerQuery_NoShelf(t *testing.T) {
	got := BuildProducerQuery(&domain.ProducerQuery{ProducerID: 42})

	filters := got["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"]
	assert.JSONEq(t, `[
		{"term": {"producer_id": 42}},
		{"term": {"is_deleted": false}}
	]`, toJSON(t, filters))
	assert.Equal(t, domain.DefaultPageSize, got["size"])
}

func TestBuildSuggestQuery(t *testing.T) {
	got := BuildSuggestQuery("Pom", 0)

	assert.JSONEq(t, `{
		"query": {"bool": {
			"should": [
				{"match_phrase": {"title": "Pom"}},
				{"prefix": {"title": {"value": "pom", "case_insensitive": true}}}
			],
			"minimum_should_match": 1,
			"filter": [{"term": {"is_deleted": false}}]
		}},
		"size": 10,
		"_source": ["id", "title", "main_image_url"]
	}`, toJSON(t, got))
}
