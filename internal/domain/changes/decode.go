package changes

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrDecode = errors.New("decode change record")

// Decode parsea un frame y lo clasifica. Cualquier frame que no se pueda
// aplicar (tipo desconocido, fila faltante o sin id) devuelve ErrDecode.
func Decode(raw []byte) (Event, error) {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Classify(rec)
}

func Classify(rec Record) (Event, error) {
	if rec.Table != "" && rec.Table != TablePets {
		return Event{}, fmt.Errorf("%w: unexpected table %q", ErrDecode, rec.Table)
	}

	typ, ok := ParseEventType(rec.EventType)
	if !ok {
		return Event{}, fmt.Errorf("%w: unknown event type %q", ErrDecode, rec.EventType)
	}

	ev := Event{Type: typ}
	if rec.New != nil {
		p := rec.New.Pet()
		ev.New = &p
	}
	if rec.Old != nil {
		p := rec.Old.Pet()
		ev.Old = &p
	}

	switch typ {
	case EventInsert, EventUpdate:
		if ev.New == nil {
			return Event{}, fmt.Errorf("%w: %s without new row", ErrDecode, typ)
		}
	case EventDelete:
		if ev.Old == nil {
			return Event{}, fmt.Errorf("%w: delete without old row", ErrDecode)
		}
	}

	if strings.TrimSpace(ev.ID()) == "" {
		return Event{}, fmt.Errorf("%w: row without id", ErrDecode)
	}
	return ev, nil
}
