package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"pet-marketplace/internal/ports/objects"
)

type object struct {
	data        []byte
	contentType string
}

// Store guarda objetos en memoria (modo dev y tests).
type Store struct {
	mu      sync.RWMutex
	baseURL string
	byKey   map[string]object
}

func NewStore(publicBaseURL string) *Store {
	return &Store{
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		byKey:   make(map[string]object),
	}
}

func (s *Store) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	key, err := objects.CleanKey(key)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read object body: %w", err)
	}

	s.mu.Lock()
	s.byKey[key] = object{data: data, contentType: contentType}
	s.mu.Unlock()

	return s.baseURL + "/storage/" + key, nil
}

func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.byKey[key]
	if !ok {
		return nil, "", objects.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(o.data)), o.contentType, nil
}

// Len devuelve cuántos objetos hay guardados.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey)
}
