package petstore

import (
	"context"
	"strings"
	"sync"

	"pet-marketplace/internal/domain/changes"
	"pet-marketplace/internal/domain/pets"
	"pet-marketplace/internal/platform/logger"
	"pet-marketplace/internal/realtime"
)

type Options struct {
	Gateway Gateway

	// Listener es opcional: sin él, el store no recibe cambios remotos
	// salvo que el caller llame ApplyRemoteEvent.
	Listener Subscriber

	Logger logger.Logger

	// OnChange se llama (fuera del lock) después de cada mutación aplicada.
	OnChange func()
	// OnProgress recibe cada valor del progreso de subidas.
	OnProgress func(int)
	// OnFeedClosed se llama si el feed realtime del owner actual se corta.
	// El store queda sin suscripción hasta el próximo Init.
	OnFeedClosed func(error)
}

// Store es la caché cliente de los pets de un owner.
//
// Cada operación asíncrona captura la generación al emitirse y solo aplica
// su resultado si sigue vigente; Init y Dispose la incrementan. Las llamadas
// al gateway se hacen sin el lock tomado.
type Store struct {
	gw       Gateway
	listener Subscriber
	log      logger.Logger
	onChange func()
	onClosed func(error)
	progress *Progress

	// uploadMu serializa UploadPhotos: hay un solo tracker de progreso.
	uploadMu sync.Mutex

	mu         sync.RWMutex
	ownerID    string
	generation uint64
	loadSeq    uint64
	pending    int
	items      []pets.Pet
	tombstones map[string]struct{}
	err        error
	cursor     Cursor
	handle     realtime.Handle
}

func New(opts Options) (*Store, error) {
	if opts.Gateway == nil {
		return nil, ErrNoGateway
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		gw:         opts.Gateway,
		listener:   opts.Listener,
		log:        log.With(map[string]any{"component": "petstore"}),
		onChange:   opts.OnChange,
		onClosed:   opts.OnFeedClosed,
		progress:   NewProgress(opts.OnProgress),
		items:      []pets.Pet{},
		tombstones: make(map[string]struct{}),
	}, nil
}

// Init apunta el store a ownerID: limpia el estado, se suscribe al feed
// realtime (si hay listener) y carga la colección. Reemplaza cualquier
// owner anterior.
func (s *Store) Init(ctx context.Context, ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		err := validationErr("owner is required")
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	prev := s.handle
	s.resetLocked()
	s.ownerID = ownerID
	gen := s.generation
	s.mu.Unlock()

	s.unsubscribe(prev)
	s.notify()

	var subErr error
	if s.listener != nil {
		h, err := s.listener.Subscribe(ctx, ownerID, func(ev changes.Event) {
			s.applyRemote(gen, ev)
		}, func(err error) {
			s.feedClosed(gen, err)
		})
		if err != nil {
			subErr = backendErr("subscribe", err)
			s.log.Warn("realtime subscribe failed", map[string]any{"owner_id": ownerID, "err": err.Error()})
		} else {
			s.mu.Lock()
			current := gen == s.generation
			if current {
				s.handle = h
			}
			s.mu.Unlock()
			if !current {
				s.unsubscribe(h)
				return ErrStale
			}
		}
	}

	if err := s.load(ctx, gen, ownerID); err != nil {
		return err
	}
	if subErr != nil {
		s.setErrIfCurrent(gen, subErr)
	}
	return subErr
}

// Dispose suelta la suscripción y descarta el estado. Las respuestas que
// lleguen después no se aplican.
func (s *Store) Dispose() {
	s.mu.Lock()
	h := s.handle
	s.resetLocked()
	s.mu.Unlock()

	s.unsubscribe(h)
	s.notify()
}

func (s *Store) resetLocked() {
	s.generation++
	s.ownerID = ""
	s.loadSeq = 0
	s.pending = 0
	s.items = []pets.Pet{}
	s.tombstones = make(map[string]struct{})
	s.err = nil
	s.cursor.reset()
	s.handle = realtime.Handle{}
	s.progress.Fail()
}

// feedClosed suelta el handle muerto y registra el corte como error de
// backend, solo si gen sigue vigente.
func (s *Store) feedClosed(gen uint64, cause error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.handle = realtime.Handle{}
	err := backendErr("realtime feed closed", cause)
	s.err = err
	owner := s.ownerID
	s.mu.Unlock()

	s.log.Warn("realtime feed closed", map[string]any{"owner_id": owner, "err": cause.Error()})
	s.notify()
	if s.onClosed != nil {
		s.onClosed(err)
	}
}

func (s *Store) unsubscribe(h realtime.Handle) {
	if s.listener != nil && !h.IsZero() {
		s.listener.Unsubscribe(h)
	}
}

// Load trae la colección completa del owner y la reemplaza. Si hay varias
// cargas en vuelo, solo se aplica la última emitida.
func (s *Store) Load(ctx context.Context, ownerID string) error {
	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()
	return s.load(ctx, gen, ownerID)
}

// load corre una carga emitida en gen. Si la generación ya cambió (un
// Dispose o Init en el medio) devuelve ErrStale sin tocar el estado.
func (s *Store) load(ctx context.Context, gen uint64, ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return ErrStale
	}
	if ownerID == "" {
		ownerID = s.ownerID
	}
	if ownerID == "" || (s.ownerID != "" && s.ownerID != ownerID) {
		err := validationErr("load owner %q does not match store owner", ownerID)
		s.err = err
		s.mu.Unlock()
		s.notify()
		return err
	}
	s.ownerID = ownerID
	s.loadSeq++
	seq := s.loadSeq
	s.beginLocked()
	s.mu.Unlock()
	s.notify()

	list, err := s.gw.List(ctx, ownerID)

	s.mu.Lock()
	if !s.endLocked(gen) {
		s.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		s.err = backendErr("load pets", err)
		s.mu.Unlock()
		s.notify()
		return s.Err()
	}
	if seq != s.loadSeq {
		// Una carga posterior ya está en vuelo; esa decide.
		s.mu.Unlock()
		s.notify()
		return nil
	}

	seen := make(map[string]struct{}, len(list))
	items := make([]pets.Pet, 0, len(list))
	for _, p := range list {
		if p.IsDraft() {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		if _, gone := s.tombstones[p.ID]; gone {
			continue
		}
		seen[p.ID] = struct{}{}
		items = append(items, p.Clone())
	}
	s.items = items
	s.err = nil
	s.mu.Unlock()

	s.log.Debug("pets loaded", map[string]any{"owner_id": ownerID, "count": len(items)})
	s.notify()
	return nil
}

// Create persiste un borrador y lo inserta al principio de la colección,
// salvo que el id ya esté (el evento realtime llegó antes) o haya sido
// borrado en el medio.
func (s *Store) Create(ctx context.Context, d pets.Draft) (pets.Pet, error) {
	s.mu.Lock()
	ownerID := s.ownerID
	s.mu.Unlock()

	if ownerID == "" {
		err := validationErr("store has no owner; call Init first")
		s.setErr(err)
		return pets.Pet{}, err
	}
	if err := pets.Validate(pets.FromDraft(ownerID, d)); err != nil {
		err = validationErr("%v", err)
		s.setErr(err)
		return pets.Pet{}, err
	}

	s.mu.Lock()
	gen := s.beginLocked()
	s.mu.Unlock()
	s.notify()

	created, err := s.gw.Create(ctx, ownerID, d)

	s.mu.Lock()
	if !s.endLocked(gen) {
		s.mu.Unlock()
		return created, ErrStale
	}
	if err != nil {
		s.err = backendErr("create pet", err)
		s.mu.Unlock()
		s.notify()
		return pets.Pet{}, s.Err()
	}
	if created.IsDraft() {
		s.err = backendErr("create pet", validationErr("backend returned a pet without id"))
		s.mu.Unlock()
		s.notify()
		return pets.Pet{}, s.Err()
	}

	s.err = nil
	if _, gone := s.tombstones[created.ID]; !gone {
		if i := s.indexLocked(created.ID); i >= 0 {
			if !isStale(created, s.items[i]) {
				s.items[i] = created.Clone()
			}
		} else {
			s.items = append([]pets.Pet{created.Clone()}, s.items...)
		}
	}
	s.mu.Unlock()

	s.notify()
	return created, nil
}

// Update aplica un patch parcial y reemplaza el pet en su misma posición.
// También refresca selected/editing si apuntan a ese id.
func (s *Store) Update(ctx context.Context, id string, patch pets.Patch) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		err := validationErr("id is required")
		s.setErr(err)
		return pets.Pet{}, err
	}
	if patch.IsEmpty() {
		err := validationErr("empty patch")
		s.setErr(err)
		return pets.Pet{}, err
	}

	s.mu.Lock()
	gen := s.beginLocked()
	s.mu.Unlock()
	s.notify()

	updated, err := s.gw.Update(ctx, id, patch)

	s.mu.Lock()
	if !s.endLocked(gen) {
		s.mu.Unlock()
		return updated, ErrStale
	}
	if err != nil {
		s.err = backendErr("update pet", err)
		s.mu.Unlock()
		s.notify()
		return pets.Pet{}, s.Err()
	}

	s.err = nil
	if i := s.indexLocked(updated.ID); i >= 0 && !isStale(updated, s.items[i]) {
		s.items[i] = updated.Clone()
	}
	s.cursor.refresh(updated, true)
	s.mu.Unlock()

	s.notify()
	return updated, nil
}

// Delete borra el pet y limpia selected/editing si apuntaban a él.
func (s *Store) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		err := validationErr("id is required")
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	gen := s.beginLocked()
	s.mu.Unlock()
	s.notify()

	err := s.gw.Delete(ctx, id)

	s.mu.Lock()
	if !s.endLocked(gen) {
		s.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		s.err = backendErr("delete pet", err)
		s.mu.Unlock()
		s.notify()
		return s.Err()
	}

	s.err = nil
	s.removeLocked(id)
	s.mu.Unlock()

	s.notify()
	return nil
}

// ApplyRemoteEvent mergea un evento realtime sobre la generación actual.
// Es idempotente y nunca falla: los eventos inválidos se descartan.
func (s *Store) ApplyRemoteEvent(ev changes.Event) {
	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()
	s.applyRemote(gen, ev)
}

func (s *Store) applyRemote(gen uint64, ev changes.Event) {
	typ, ok := changes.ParseEventType(string(ev.Type))
	if !ok {
		s.log.Debug("dropping remote event with unknown type", map[string]any{"type": string(ev.Type)})
		return
	}
	ev.Type = typ

	id := strings.TrimSpace(ev.ID())
	if id == "" {
		s.log.Debug("dropping remote event without id", map[string]any{"type": string(ev.Type)})
		return
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	if owner := eventOwner(ev); owner != "" && s.ownerID != "" && owner != s.ownerID {
		s.mu.Unlock()
		s.log.Debug("dropping remote event for another owner", map[string]any{"pet_id": id})
		return
	}

	changed := false
	switch ev.Type {
	case changes.EventInsert:
		_, gone := s.tombstones[id]
		if !gone && s.indexLocked(id) < 0 {
			s.items = append([]pets.Pet{ev.New.Clone()}, s.items...)
			changed = true
		}
	case changes.EventUpdate:
		if i := s.indexLocked(id); i >= 0 && !isStale(*ev.New, s.items[i]) {
			s.items[i] = ev.New.Clone()
			changed = true
		}
		// No pisamos editing: el form abierto conserva lo que el usuario tipea.
		s.cursor.refresh(*ev.New, false)
	case changes.EventDelete:
		changed = s.removeLocked(id)
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// removeLocked saca id de la colección, lo marca como borrado y limpia el
// cursor. Devuelve true si algo cambió.
func (s *Store) removeLocked(id string) bool {
	s.tombstones[id] = struct{}{}

	before := s.cursor.selected != nil || s.cursor.editing != nil
	s.cursor.forget(id)
	after := s.cursor.selected != nil || s.cursor.editing != nil

	i := s.indexLocked(id)
	if i < 0 {
		return before != after
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return true
}

func (s *Store) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) beginLocked() uint64 {
	s.pending++
	return s.generation
}

// endLocked cierra una operación emitida en gen. Devuelve false si la
// generación cambió (el resultado no debe aplicarse).
func (s *Store) endLocked(gen uint64) bool {
	if gen != s.generation {
		return false
	}
	if s.pending > 0 {
		s.pending--
	}
	return true
}

func (s *Store) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.notify()
}

func (s *Store) setErrIfCurrent(gen uint64, err error) {
	s.mu.Lock()
	if gen == s.generation {
		s.err = err
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// isStale indica si incoming es más viejo que cached. Usa Version si ambos
// la tienen, si no UpdatedAt; sin datos no se considera viejo.
func isStale(incoming, cached pets.Pet) bool {
	if incoming.Version > 0 && cached.Version > 0 {
		return incoming.Version < cached.Version
	}
	if !incoming.UpdatedAt.IsZero() && !cached.UpdatedAt.IsZero() {
		return incoming.UpdatedAt.Before(cached.UpdatedAt)
	}
	return false
}

func eventOwner(ev changes.Event) string {
	if ev.New != nil && ev.New.OwnerUserID != "" {
		return ev.New.OwnerUserID
	}
	if ev.Old != nil {
		return ev.Old.OwnerUserID
	}
	return ""
}
