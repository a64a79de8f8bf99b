// Package minio stores product images in an S3-compatible bucket.
package minio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/IGDevX/marche-conclu-shop-service/internal/storage"
)

// Config holds the connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	// PublicURL prefixes object URLs. Defaults to the endpoint.
	PublicURL string
}

// Store implements storage.Store on top of minio-go.
type Store struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// New connects to the endpoint and creates the bucket when missing.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region(cfg.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &Store{client: client, bucket: cfg.Bucket, baseURL: publicURL(cfg), logger: logger}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func region(r string) string {
	if r == "" {
		return "us-east-1"
	}
	return r
}

func publicURL(cfg Config) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
}

func (s *Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.logger.InfoContext(ctx, "created image bucket", slog.String("bucket", s.bucket))
	return nil
}

// Upload implements storage.Store.
func (s *Store) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New()
	key := storage.NewKey(id, input.Filename)

	if _, err := s.client.PutObject(ctx, s.bucket, key, input.Data, input.Size, minio.PutObjectOptions{
		ContentType: input.ContentType,
	}); err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	s.logger.DebugContext(ctx, "uploaded image", slog.String("key", key), slog.Int64("size", input.Size))
	return &storage.UploadResult{ID: id, Key: key, URL: s.GetURL(key)}, nil
}

// GetURL implements storage.Store.
func (s *Store) GetURL(key string) string {
	return s.baseURL + "/" + key
}

// Delete implements storage.Store. RemoveObject does not fail for absent keys.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Exists implements storage.Store.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", key, err)
}

// Ping checks that the bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("minio ping: %w", err)
	}
	return nil
}
