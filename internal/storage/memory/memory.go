// Package memory is an in-process blob store for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/IGDevX/marche-conclu-shop-service/internal/storage"
)

type object struct {
	contentType string
	data        []byte
}

// Store implements storage.Store with a map.
type Store struct {
	mu      sync.RWMutex
	objects map[string]object
	baseURL string
}

// New creates a store whose URLs start with baseURL.
func New(baseURL string) *Store {
	return &Store{
		objects: make(map[string]object),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

var _ storage.Store = (*Store)(nil)

// Upload implements storage.Store.
func (s *Store) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(input.Data)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	id := uuid.New()
	key := storage.NewKey(id, input.Filename)

	s.mu.Lock()
	s.objects[key] = object{contentType: input.ContentType, data: data}
	s.mu.Unlock()

	return &storage.UploadResult{ID: id, Key: key, URL: s.GetURL(key)}, nil
}

// GetURL implements storage.Store.
func (s *Store) GetURL(key string) string {
	return s.baseURL + "/" + key
}

// Delete implements storage.Store.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Exists implements storage.Store.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
