package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryBlobStore is an in-memory BlobStore for tests and local runs. The
// Fail fields inject backend failures for exercising compensation paths.
type MemoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string

	FailUpload error
	FailRemove error
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Upload(_ context.Context, key string, content io.Reader, _ int64, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailUpload != nil {
		return "", s.FailUpload
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	return fmt.Sprintf("http://blobs.local/%s", key), nil
}

func (s *MemoryBlobStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailRemove != nil {
		return s.FailRemove
	}
	delete(s.objects, key)
	s.removed = append(s.removed, key)
	return nil
}

// Object returns the stored content for key, for test assertions.
func (s *MemoryBlobStore) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[key]
	return data, ok
}

// Len reports how many blobs are held.
func (s *MemoryBlobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Removed lists the keys deleted so far, in order.
func (s *MemoryBlobStore) Removed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.removed...)
}
