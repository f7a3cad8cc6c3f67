package petstore

import (
	"context"
	"io"

	"pet-marketplace/internal/domain/changes"
	"pet-marketplace/internal/domain/pets"
	"pet-marketplace/internal/realtime"
)

// Gateway es el acceso remoto que usa el store (REST en producción).
type Gateway interface {
	List(ctx context.Context, ownerID string) ([]pets.Pet, error)
	Create(ctx context.Context, ownerID string, d pets.Draft) (pets.Pet, error)
	Update(ctx context.Context, id string, patch pets.Patch) (pets.Pet, error)
	Delete(ctx context.Context, id string) error
	UploadPhoto(ctx context.Context, ownerID, petID string, f Upload) (string, error)
}

// Upload es un archivo a subir a object storage.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Subscriber abre y cierra el feed realtime (realtime.Listener lo implementa).
// onClosed avisa que el feed se cortó sin un Unsubscribe.
type Subscriber interface {
	Subscribe(ctx context.Context, ownerID string, onEvent func(changes.Event), onClosed func(error)) (realtime.Handle, error)
	Unsubscribe(h realtime.Handle)
}
