package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/IGDevX/marche-conclu-shop-service/pkg/config"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/database"
)

// Search engine backends.
const (
	SearchEngineElasticsearch = "elasticsearch"
	SearchEngineMemory        = "memory"
)

// Blob store backends.
const (
	StorageMinio  = "minio"
	StorageMemory = "memory"
)

// Config holds all configuration for the shop service.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"shop-service"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"shop"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"shop"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"shop"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	LogSlowQueryMS    int           `env:"LOG_SLOW_QUERY_MS" envDefault:"0"`

	// Search index
	ElasticsearchURL   string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200"`
	ElasticsearchIndex string `env:"ELASTICSEARCH_INDEX" envDefault:"products"`
	SearchEngine       string `env:"SEARCH_ENGINE" envDefault:"elasticsearch"`

	// Index worker pool and retry policy
	IndexCoreWorkers       int           `env:"INDEX_CORE_WORKERS" envDefault:"5"`
	IndexMaxWorkers        int           `env:"INDEX_MAX_WORKERS" envDefault:"10"`
	IndexQueueSize         int           `env:"INDEX_QUEUE_SIZE" envDefault:"100"`
	IndexMaxAttempts       int           `env:"INDEX_MAX_ATTEMPTS" envDefault:"3"`
	IndexInitialBackoff    time.Duration `env:"INDEX_INITIAL_BACKOFF" envDefault:"1s"`
	IndexBackoffMultiplier float64       `env:"INDEX_BACKOFF_MULTIPLIER" envDefault:"2"`
	IndexMaxBackoff        time.Duration `env:"INDEX_MAX_BACKOFF" envDefault:"5s"`
	IndexShutdownTimeout   time.Duration `env:"INDEX_SHUTDOWN_TIMEOUT" envDefault:"60s"`
	IndexBatchSize         int           `env:"INDEX_BATCH_SIZE" envDefault:"1000"`
	IndexReindexTimeout    time.Duration `env:"INDEX_REINDEX_TIMEOUT" envDefault:"30m"`
	IndexAdminRPS          float64       `env:"INDEX_ADMIN_RPS" envDefault:"1"`
	IndexAdminBurst        int           `env:"INDEX_ADMIN_BURST" envDefault:"3"`
	IndexDLQReplayEnabled  bool          `env:"INDEX_DLQ_REPLAY_ENABLED" envDefault:"false"`

	// Kafka
	KafkaEnabled        bool          `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers        []string      `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaProductTopic   string        `env:"KAFKA_PRODUCT_TOPIC" envDefault:"shop.product.changed"`
	KafkaGroupID        string        `env:"KAFKA_GROUP_ID" envDefault:"shop-service"`
	KafkaPublishTimeout time.Duration `env:"KAFKA_PUBLISH_TIMEOUT" envDefault:"5s"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Startup reconciliation
	ReconcileOnStartup bool          `env:"RECONCILE_ON_STARTUP" envDefault:"true"`
	ReconcileLockTTL   time.Duration `env:"RECONCILE_LOCK_TTL" envDefault:"10m"`

	// Image storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	MinioEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"product-images"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	MinioPublicURL string `env:"MINIO_PUBLIC_URL" envDefault:""`

	Discovery Discovery

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
}

// Discovery configures registration with the Eureka service registry.
// It is read once at startup and never mutated afterwards.
type Discovery struct {
	Enabled           bool          `env:"DISCOVERY_ENABLED" envDefault:"false"`
	DefaultZone       string        `env:"EUREKA_URI" envDefault:"http://localhost:8761/eureka/"`
	AppName           string        `env:"DISCOVERY_APP_NAME" envDefault:"SHOP-SERVICE"`
	Hostname          string        `env:"DISCOVERY_HOSTNAME" envDefault:"localhost"`
	HeartbeatInterval time.Duration `env:"DISCOVERY_HEARTBEAT_INTERVAL" envDefault:"30s"`
}

// Load reads configuration from environment variables (and an optional .env file).
func Load(dotenvFiles ...string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, dotenvFiles...); err != nil {
		return nil, fmt.Errorf("load shop config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate shop config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	switch c.SearchEngine {
	case SearchEngineElasticsearch, SearchEngineMemory:
	default:
		return fmt.Errorf("SEARCH_ENGINE must be %q or %q, got %q", SearchEngineElasticsearch, SearchEngineMemory, c.SearchEngine)
	}
	if c.SearchEngine == SearchEngineElasticsearch && c.ElasticsearchURL == "" {
		return fmt.Errorf("ELASTICSEARCH_URL is required when SEARCH_ENGINE=%s", SearchEngineElasticsearch)
	}
	if c.IndexCoreWorkers < 1 {
		return fmt.Errorf("INDEX_CORE_WORKERS must be at least 1, got %d", c.IndexCoreWorkers)
	}
	if c.IndexMaxWorkers < c.IndexCoreWorkers {
		return fmt.Errorf("INDEX_MAX_WORKERS (%d) must be >= INDEX_CORE_WORKERS (%d)", c.IndexMaxWorkers, c.IndexCoreWorkers)
	}
	if c.IndexQueueSize < 1 {
		return fmt.Errorf("INDEX_QUEUE_SIZE must be at least 1, got %d", c.IndexQueueSize)
	}
	if c.IndexMaxAttempts < 1 {
		return fmt.Errorf("INDEX_MAX_ATTEMPTS must be at least 1, got %d", c.IndexMaxAttempts)
	}
	if c.IndexBackoffMultiplier < 1 {
		return fmt.Errorf("INDEX_BACKOFF_MULTIPLIER must be >= 1, got %v", c.IndexBackoffMultiplier)
	}
	if c.IndexMaxBackoff < c.IndexInitialBackoff {
		return fmt.Errorf("INDEX_MAX_BACKOFF (%s) must be >= INDEX_INITIAL_BACKOFF (%s)", c.IndexMaxBackoff, c.IndexInitialBackoff)
	}
	if c.IndexBatchSize < 1 {
		return fmt.Errorf("INDEX_BATCH_SIZE must be at least 1, got %d", c.IndexBatchSize)
	}
	if c.IndexReindexTimeout <= 0 {
		return fmt.Errorf("INDEX_REINDEX_TIMEOUT must be positive, got %s", c.IndexReindexTimeout)
	}
	switch c.StorageBackend {
	case StorageMinio, StorageMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageMinio, StorageMemory, c.StorageBackend)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	if c.Discovery.Enabled && c.Discovery.DefaultZone == "" {
		return fmt.Errorf("EUREKA_URI is required when DISCOVERY_ENABLED=true")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0 and 1, got %v", c.OTELSampleRate)
	}
	return nil
}

// Postgres returns the connection settings for the relational store.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPassword,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSLMode,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: c.DBMaxConnLifetime,
		MaxConnIdleTime: c.DBMaxConnIdleTime,
	}
}

// Redis returns the connection settings for the lock store.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:        c.RedisHost,
		Port:        c.RedisPort,
		Password:    c.RedisPassword,
		DB:          c.RedisDB,
		DialTimeout: 5 * time.Second,
	}
}
