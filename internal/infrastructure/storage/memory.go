package storage

import (
	"context"
	"net/url"
	"sync"
	"time"

	stockapp "github.com/labstock/backend/internal/application/stock"
)

var _ stockapp.DocumentStorage = (*MemoryDocumentStorage)(nil)

type storedDocument struct {
	data        []byte
	contentType string
}

// MemoryDocumentStorage keeps documents in process memory.
// Used when object storage is disabled and in tests.
type MemoryDocumentStorage struct {
	mu      sync.RWMutex
	objects map[string]storedDocument
	baseURL string
}

// NewMemoryDocumentStorage creates an empty store whose links start with baseURL.
func NewMemoryDocumentStorage(baseURL string) *MemoryDocumentStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/documents"
	}
	return &MemoryDocumentStorage{
		objects: make(map[string]storedDocument),
		baseURL: baseURL,
	}
}

// Upload stores a copy of data.
func (m *MemoryDocumentStorage) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.mu.Lock()
	m.objects[key] = storedDocument{data: buf, contentType: contentType}
	m.mu.Unlock()
	return nil
}

// GenerateDownloadURL returns a link carrying the expiry as a query parameter.
func (m *MemoryDocumentStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	expiresAt := time.Now().Add(expiresIn)
	link := m.baseURL + "/" + url.PathEscape(key) + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339))
	return link, expiresAt, nil
}

// DeleteObject removes key if present.
func (m *MemoryDocumentStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Get returns the stored bytes and content type.
func (m *MemoryDocumentStorage) Get(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.objects[key]
	return doc.data, doc.contentType, ok
}

// Len returns the number of stored documents.
func (m *MemoryDocumentStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
