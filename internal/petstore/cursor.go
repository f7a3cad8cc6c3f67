package petstore

import "pet-marketplace/internal/domain/pets"

// Cursor guarda a lo sumo un pet seleccionado y uno en edición.
// No valida que existan en la colección: la UI maneja el caso nil.
// No es seguro para uso concurrente; el Store lo protege con su lock.
type Cursor struct {
	selected *pets.Pet
	editing  *pets.Pet
}

func (c *Cursor) Select(p *pets.Pet) { c.selected = clonePtr(p) }
func (c *Cursor) Edit(p *pets.Pet)   { c.editing = clonePtr(p) }

func (c *Cursor) Selected() *pets.Pet { return clonePtr(c.selected) }
func (c *Cursor) Editing() *pets.Pet  { return clonePtr(c.editing) }

// forget nulea las referencias que apuntan a id.
func (c *Cursor) forget(id string) {
	if c.selected != nil && c.selected.ID == id {
		c.selected = nil
	}
	if c.editing != nil && c.editing.ID == id {
		c.editing = nil
	}
}

// refresh reemplaza las referencias con el mismo id por p.
func (c *Cursor) refresh(p pets.Pet, includeEditing bool) {
	if p.ID == "" {
		return
	}
	if c.selected != nil && c.selected.ID == p.ID && !isStale(p, *c.selected) {
		c.selected = clonePtr(&p)
	}
	if includeEditing && c.editing != nil && c.editing.ID == p.ID && !isStale(p, *c.editing) {
		c.editing = clonePtr(&p)
	}
}

func (c *Cursor) reset() {
	c.selected = nil
	c.editing = nil
}

func clonePtr(p *pets.Pet) *pets.Pet {
	if p == nil {
		return nil
	}
	cp := p.Clone()
	return &cp
}
