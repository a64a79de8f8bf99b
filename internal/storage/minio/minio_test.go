package minio

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IGDevX/marche-conclu-shop-service/internal/storage"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/logger"
)

// fakeS3 answers just enough of the S3 API for the store: bucket HEAD/PUT
// and object PUT/HEAD/DELETE. Objects are kept by path.
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string][]byte
	calls   []string
}

func newFakeS3(t *testing.T) (*fakeS3, *httptest.Server) {
	t.Helper()
	f := &fakeS3{buckets: map[string]bool{}, objects: map[string][]byte{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Bucket requests arrive as "/bucket/"; record them without the slash.
	f.calls = append(f.calls, r.Method+" "+strings.TrimSuffix(r.URL.Path, "/"))

	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	bucket := parts[0]
	if len(parts) == 1 || parts[1] == "" {
		switch r.Method {
		case http.MethodHead:
			if !f.buckets[bucket] {
				w.WriteHeader(http.StatusNotFound)
				return
			}
		case http.MethodPut:
			f.buckets[bucket] = true
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	key := r.URL.Path
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.Header().Set("Content-Length", "0")
		w.Header().Set("Last-Modified", "Mon, 19 Oct 2026 10:00:00 GMT")
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) hasObjectPrefix(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

func newStore(t *testing.T, srv *httptest.Server) *Store {
	t.Helper()
	s, err := New(context.Background(), Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "test",
		SecretKey: "testsecret",
		Bucket:    "images",
		PublicURL: "http://cdn.local/images",
	}, logger.Discard())
	require.NoError(t, err)
	return s
}

func TestNew_CreatesMissingBucket(t *testing.T) {
	f, srv := newFakeS3(t)
	newStore(t, srv)

	assert.True(t, f.buckets["images"])
	assert.Contains(t, f.calls, "PUT /images")
}

func TestUploadExistsDelete(t *testing.T) {
	f, srv := newFakeS3(t)
	s := newStore(t, srv)
	ctx := context.Background()

	body := "jpeg-bytes"
	res, err := s.Upload(ctx, &storage.UploadInput{
		Filename:    "pear.jpg",
		ContentType: "image/jpeg",
		Size:        int64(len(body)),
		Data:        strings.NewReader(body),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Key, "products/"))
	assert.True(t, strings.HasSuffix(res.Key, ".jpg"))
	assert.Equal(t, "http://cdn.local/images/"+res.Key, res.URL)
	assert.True(t, f.hasObjectPrefix("/images/products/"))

	ok, err := s.Exists(ctx, res.Key)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, res.Key))

	ok, err = s.Exists(ctx, res.Key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpload_RejectsNonImageWithoutCallingServer(t *testing.T) {
	f, srv := newFakeS3(t)
	s := newStore(t, srv)
	before := len(f.calls)

	_, err := s.Upload(context.Background(), &storage.UploadInput{
		Filename: "a.txt", ContentType: "text/plain", Size: 1, Data: strings.NewReader("x"),
	})
	assert.Error(t, err)
	assert.Len(t, f.calls, before)
}

func TestPublicURL_DefaultsToEndpoint(t *testing.T) {
	assert.Equal(t, "http://minio:9000/images", publicURL(Config{Endpoint: "minio:9000", Bucket: "images"}))
	assert.Equal(t, "https://minio:9000/images", publicURL(Config{Endpoint: "minio:9000", Bucket: "images", UseSSL: true}))
}
