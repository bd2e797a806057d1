package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tunepulse/tunepulse-api/internal/storage"
)

type blobEntry struct {
	Folder      string
	Key         string
	ContentType string
	Size        int64
	URL         string
}

// Store implements storage.BlobStore with an in-memory map. It keeps
// metadata only and exists for tests and local development.
type Store struct {
	mu      sync.RWMutex
	blobs   map[string]*blobEntry
	baseURL string
}

// New creates an in-memory blob store.
func New(baseURL string) *Store {
	return &Store{
		blobs:   make(map[string]*blobEntry),
		baseURL: baseURL,
	}
}

// Upload records blob metadata, overwriting any previous entry for the key.
func (s *Store) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	url := fmt.Sprintf("%s/%s/%s", s.baseURL, input.Folder, input.Key)
	s.blobs[input.Key] = &blobEntry{
		Folder:      input.Folder,
		Key:         input.Key,
		ContentType: input.ContentType,
		Size:        input.Size,
		URL:         url,
	}
	return &storage.UploadResult{Key: input.Key, URL: url}, nil
}

// Len reports how many distinct keys are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
