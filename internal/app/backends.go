package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IGDevX/marche-conclu-shop-service/internal/config"
	"github.com/IGDevX/marche-conclu-shop-service/internal/engine"
	esengine "github.com/IGDevX/marche-conclu-shop-service/internal/engine/elasticsearch"
	"github.com/IGDevX/marche-conclu-shop-service/internal/engine/memory"
	"github.com/IGDevX/marche-conclu-shop-service/internal/storage"
	memstore "github.com/IGDevX/marche-conclu-shop-service/internal/storage/memory"
	miniostore "github.com/IGDevX/marche-conclu-shop-service/internal/storage/minio"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/health"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/httpclient"
)

// newSearchEngine picks the index backend named by SEARCH_ENGINE.
func newSearchEngine(cfg *config.Config, logger *slog.Logger) (engine.Engine, error) {
	switch cfg.SearchEngine {
	case config.SearchEngineElasticsearch:
		eng, err := esengine.New(esengine.Config{
			URL:     cfg.ElasticsearchURL,
			Index:   cfg.ElasticsearchIndex,
			Breaker: httpclient.DefaultCircuitBreakerConfig("elasticsearch"),
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		logger.Info("elasticsearch search engine initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", eng.IndexName()),
		)
		return eng, nil
	default:
		logger.Info("in-memory search engine initialized")
		return memory.New(), nil
	}
}

type imageStore struct {
	storage.Store
	// Ping is nil for backends without a remote dependency.
	Ping health.Checker
}

// newImageStore picks the blob backend named by STORAGE_BACKEND.
func newImageStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (imageStore, error) {
	switch cfg.StorageBackend {
	case config.StorageMinio:
		s, err := miniostore.New(ctx, miniostore.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		}, logger)
		if err != nil {
			return imageStore{}, fmt.Errorf("init minio storage: %w", err)
		}
		logger.Info("minio image storage initialized",
			slog.String("endpoint", cfg.MinioEndpoint),
			slog.String("bucket", cfg.MinioBucket),
		)
		return imageStore{Store: s, Ping: s.Ping}, nil
	default:
		logger.Warn("in-memory image storage initialized, images are lost on restart")
		return imageStore{Store: memstore.New(fmt.Sprintf("http://localhost:%d/images", cfg.HTTPPort))}, nil
	}
}
