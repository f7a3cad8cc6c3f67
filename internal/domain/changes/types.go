package changes

import (
	"strings"
	"time"

	"pet-marketplace/internal/domain/pets"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// ParseEventType acepta insert/INSERT/Insert, etc.
func ParseEventType(s string) (EventType, bool) {
	switch EventType(strings.ToUpper(strings.TrimSpace(s))) {
	case EventInsert:
		return EventInsert, true
	case EventUpdate:
		return EventUpdate, true
	case EventDelete:
		return EventDelete, true
	default:
		return "", false
	}
}

const TablePets = "pets"

// Record es el frame JSON que viaja por el feed realtime.
type Record struct {
	EventType       string    `json:"eventType"`
	Table           string    `json:"table"`
	CommitTimestamp time.Time `json:"commit_timestamp"`
	New             *pets.Row `json:"new,omitempty"`
	Old             *pets.Row `json:"old,omitempty"`
}

// Event es un Record ya decodificado y clasificado.
type Event struct {
	Type EventType
	New  *pets.Pet
	Old  *pets.Pet
}

// ID devuelve el identificador afectado (New para insert/update, Old para delete).
func (e Event) ID() string {
	switch e.Type {
	case EventDelete:
		if e.Old != nil {
			return e.Old.ID
		}
	default:
		if e.New != nil {
			return e.New.ID
		}
	}
	return ""
}

// FromChange arma el Record que publica el backend.
func FromChange(c pets.Change, at time.Time) Record {
	rec := Record{
		EventType:       string(c.Kind),
		Table:           TablePets,
		CommitTimestamp: at.UTC(),
	}
	if c.New != nil {
		row := pets.ToRow(*c.New)
		rec.New = &row
	}
	if c.Old != nil {
		row := pets.ToRow(*c.Old)
		rec.Old = &row
	}
	return rec
}
