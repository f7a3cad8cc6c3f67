package objects

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)

// Store es el object storage que expone el backend. Put devuelve la URL
// pública desde la que se puede leer el objeto.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// PetPhotoKey arma la key owner/pet/archivo de una foto.
func PetPhotoKey(ownerUserID, petID, filename string) (string, error) {
	parts := []string{ownerUserID, petID, filename}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `/\`) {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, p)
		}
	}
	return path.Join("pets", ownerUserID, petID, filename), nil
}

// CleanKey valida una key recibida desde afuera (sin "..", relativa).
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	cleaned := path.Clean(key)
	if cleaned != key || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}
