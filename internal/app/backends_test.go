package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IGDevX/marche-conclu-shop-service/internal/config"
	esengine "github.com/IGDevX/marche-conclu-shop-service/internal/engine/elasticsearch"
	"github.com/IGDevX/marche-conclu-shop-service/internal/engine/memory"
	"github.com/IGDevX/marche-conclu-shop-service/internal/storage"
	memstore "github.com/IGDevX/marche-conclu-shop-service/internal/storage/memory"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/logger"
)

func TestNewSearchEngine(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		eng, err := newSearchEngine(&config.Config{SearchEngine: config.SearchEngineMemory}, logger.Discard())
		require.NoError(t, err)
		assert.IsType(t, &memory.Engine{}, eng)
	})

	t.Run("elasticsearch does not dial on construction", func(t *testing.T) {
		eng, err := newSearchEngine(&config.Config{
			SearchEngine:       config.SearchEngineElasticsearch,
			ElasticsearchURL:   "http://127.0.0.1:1",
			ElasticsearchIndex: "products_test",
		}, logger.Discard())
		require.NoError(t, err)
		es, ok := eng.(*esengine.Engine)
		require.True(t, ok)
		assert.Equal(t, "products_test", es.IndexName())
	})
}

func TestNewImageStore_Memory(t *testing.T) {
	images, err := newImageStore(context.Background(), &config.Config{
		StorageBackend: config.StorageMemory,
		HTTPPort:       8080,
	}, logger.Discard())
	require.NoError(t, err)
	assert.Nil(t, images.Ping)
	require.IsType(t, &memstore.Store{}, images.Store)

	res, err := images.Upload(context.Background(), &storage.UploadInput{
		Filename:    "a.png",
		ContentType: "image/png",
		Size:        3,
		Data:        strings.NewReader("png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/images/"+res.Key, res.URL)
}
