package elasticsearch

// DefaultIndexName is the index used for product documents when none is configured.
const DefaultIndexName = "products"

// titleSortField is the keyword subfield used for title ordering.
const titleSortField = "title.keyword"

// buildIndexMapping returns the JSON settings and mapping for the products
// index. Field names match the JSON tags of domain.ProductDocument.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "normalizer": {
        "lowercase_normalizer": {
          "type": "custom",
          "filter": ["lowercase", "asciifolding"]
        }
      }
    }
  },
  "mappings": {
    "dynamic": "strict",
    "properties": {
      "id":                  { "type": "long" },
      "title":               { "type": "text", "analyzer": "standard", "fields": { "keyword": { "type": "keyword", "ignore_above": 256, "normalizer": "lowercase_normalizer" } } },
      "description":         { "type": "text", "analyzer": "standard" },
      "price":               { "type": "double" },
      "currency_id":         { "type": "long" },
      "currency_code":       { "type": "keyword" },
      "unit_id":             { "type": "long" },
      "unit_name":           { "type": "keyword" },
      "shelf_id":            { "type": "long" },
      "shelf_name":          { "type": "keyword" },
      "category_id":         { "type": "long" },
      "category_name":       { "type": "keyword" },
      "certifications":      { "type": "object", "properties": { "id": { "type": "long" }, "label": { "type": "keyword" } } },
      "certification_ids":   { "type": "long" },
      "certification_names": { "type": "keyword" },
      "main_image_id":       { "type": "keyword" },
      "main_image_url":      { "type": "keyword", "index": false },
      "is_fresh":            { "type": "boolean" },
      "producer_id":         { "type": "long" },
      "created_at":          { "type": "date" },
      "updated_at":          { "type": "date" },
      "is_deleted":          { "type": "boolean" }
    }
  }
}`
}
