package petstore

import (
	"context"
	"strings"

	"pet-marketplace/internal/domain/pets"
)

// UploadPhotos sube los archivos de a uno y, si todos terminan, los agrega
// a las fotos del pet. Si una subida falla el progreso vuelve a 0 y se
// devuelven las URLs ya subidas: esos objetos quedan en storage (no hay
// rollback) y las fotos existentes del pet no se tocan.
//
// Las llamadas concurrentes se ejecutan de a una. Si falla el Update que
// adjunta las fotos, el progreso queda en 100 (la secuencia terminó) y el
// error queda en Err.
func (s *Store) UploadPhotos(ctx context.Context, petID string, files []Upload) ([]string, error) {
	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()

	petID = strings.TrimSpace(petID)
	if len(files) == 0 {
		err := validationErr("no files to upload")
		s.setErr(err)
		return nil, err
	}
	for _, f := range files {
		if strings.TrimSpace(f.Filename) == "" || f.Body == nil {
			err := validationErr("every upload needs a filename and a body")
			s.setErr(err)
			return nil, err
		}
	}

	p, ok := s.Get(petID)
	if !ok {
		err := validationErr("pet %q is not loaded", petID)
		s.setErr(err)
		return nil, err
	}

	s.mu.Lock()
	gen := s.beginLocked()
	s.mu.Unlock()
	s.progress.Begin(len(files))
	s.notify()

	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.gw.UploadPhoto(ctx, p.OwnerUserID, petID, f)
		if err != nil {
			return urls, s.failUpload(gen, backendErr("upload photo "+f.Filename, err))
		}
		if s.Generation() != gen {
			s.finishUpload(gen)
			return urls, ErrStale
		}
		urls = append(urls, url)
		s.progress.Advance()
		s.notify()
	}
	s.finishUpload(gen)

	// Fotos actuales (pueden haber cambiado por realtime) + las nuevas.
	current, ok := s.Get(petID)
	if !ok {
		err := validationErr("pet %q was removed during upload", petID)
		s.setErrIfCurrent(gen, err)
		return urls, err
	}
	all := append(append([]string{}, current.Photos...), urls...)
	if _, err := s.Update(ctx, petID, pets.Patch{Photos: &all}); err != nil {
		return urls, err
	}
	return urls, nil
}

func (s *Store) failUpload(gen uint64, err error) error {
	s.mu.Lock()
	if !s.endLocked(gen) {
		s.mu.Unlock()
		return ErrStale
	}
	s.err = err
	s.mu.Unlock()

	s.progress.Fail()
	s.log.Warn("photo upload failed", map[string]any{"err": err.Error()})
	s.notify()
	return err
}

func (s *Store) finishUpload(gen uint64) {
	s.mu.Lock()
	s.endLocked(gen)
	s.mu.Unlock()
}
