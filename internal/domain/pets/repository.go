package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)
}

// ChangeKind clasifica una escritura confirmada.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
)

// Change describe una escritura ya persistida. Old va en UPDATE/DELETE,
// New en INSERT/UPDATE.
type Change struct {
	Kind ChangeKind
	New  *Pet
	Old  *Pet
}

// OwnerUserID devuelve el owner de la fila afectada.
func (c Change) OwnerUserID() string {
	if c.New != nil {
		return c.New.OwnerUserID
	}
	if c.Old != nil {
		return c.Old.OwnerUserID
	}
	return ""
}

// Publisher recibe cada cambio confirmado (el hub realtime lo implementa).
type Publisher interface {
	Publish(ctx context.Context, c Change)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Change) {}
