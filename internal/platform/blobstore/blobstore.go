// Package blobstore stores food photos. The S3 store is used in
// deployments; the in-memory store serves development and tests.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob not found")

// MaxObjectSize bounds a single stored object (10 MB).
const MaxObjectSize = 10 << 20

// Store persists objects and returns their public URL.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// FoodPhotoKey builds "food-photos/<user>/<uuid><ext>" for an upload.
func FoodPhotoKey(userID int64, contentType string) string {
	return fmt.Sprintf("food-photos/%d/%s%s", userID, uuid.NewString(), Extension(contentType))
}

// Extension maps an image content type to a file extension.
func Extension(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

func validate(key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("blob key is required")
	}
	if len(data) == 0 {
		return fmt.Errorf("blob %s is empty", key)
	}
	if len(data) > MaxObjectSize {
		return fmt.Errorf("blob %s exceeds %d bytes", key, MaxObjectSize)
	}
	return nil
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + key
}

type storedBlob struct {
	contentType string
	data        []byte
}

// MemoryStore is a thread-safe in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	blobs   map[string]storedBlob
	baseURL string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://"
	}
	return &MemoryStore{blobs: make(map[string]storedBlob), baseURL: baseURL}
}

func (s *MemoryStore) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	if err := validate(key, data); err != nil {
		return "", err
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	s.blobs[key] = storedBlob{contentType: contentType, data: cp}
	s.mu.Unlock()
	return joinURL(s.baseURL, key), nil
}

// Get returns a stored object and its content type.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return b.data, b.contentType, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
