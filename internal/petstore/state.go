package petstore

import (
	"pet-marketplace/internal/domain/pets"
)

// Pets devuelve una copia de la colección (más nuevos primero).
func (s *Store) Pets() []pets.Pet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]pets.Pet, len(s.items))
	for i, p := range s.items {
		out[i] = p.Clone()
	}
	return out
}

func (s *Store) Get(id string) (pets.Pet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.items[i].Clone(), true
	}
	return pets.Pet{}, false
}

func (s *Store) OwnerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownerID
}

// Loading es true mientras haya operaciones de esta generación en vuelo.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending > 0
}

func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// ErrorMessage es el error actual como texto ("" si no hay).
func (s *Store) ErrorMessage() string {
	if err := s.Err(); err != nil {
		return err.Error()
	}
	return ""
}

func (s *Store) ClearError() {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
	s.notify()
}

// Progress es el porcentaje de la secuencia de subidas actual.
func (s *Store) Progress() int {
	return s.progress.Value()
}

func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *Store) Selected() *pets.Pet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor.Selected()
}

func (s *Store) Editing() *pets.Pet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor.Editing()
}

// Select marca p como seleccionado (nil limpia). No valida que exista.
func (s *Store) Select(p *pets.Pet) {
	s.mu.Lock()
	s.cursor.Select(p)
	s.mu.Unlock()
	s.notify()
}

// Edit marca p como en edición (nil limpia). Un borrador (sin id) es válido.
func (s *Store) Edit(p *pets.Pet) {
	s.mu.Lock()
	s.cursor.Edit(p)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) ClearSelection() { s.Select(nil) }
func (s *Store) ClearEditing()   { s.Edit(nil) }
