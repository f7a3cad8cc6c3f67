package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pet-marketplace/internal/domain/changes"
	"pet-marketplace/internal/platform/logger"
)

var (
	ErrOwnerRequired = errors.New("realtime: owner required")
	ErrUnsubscribed  = errors.New("realtime: unsubscribed while connecting")
)

// State es el estado de la suscripción de un owner.
type State int

const (
	Unsubscribed State = iota
	Subscribing
	Subscribed
)

func (s State) String() string {
	switch s {
	case Subscribing:
		return "subscribing"
	case Subscribed:
		return "subscribed"
	default:
		return "unsubscribed"
	}
}

// Handle identifica una suscripción activa. El valor cero no apunta a nada.
type Handle struct {
	ID      string
	OwnerID string
}

func (h Handle) IsZero() bool { return h.ID == "" }

// Feed es un canal de cambios ya abierto (una conexión).
type Feed interface {
	// Next bloquea hasta el próximo frame. Devuelve error al cerrarse
	// el feed o cancelarse ctx.
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// Dialer abre el feed de cambios filtrado por owner.
type Dialer interface {
	Dial(ctx context.Context, ownerID string) (Feed, error)
}

type subscription struct {
	handle Handle
	state  State
	feed   Feed
	cancel context.CancelFunc
	done   chan struct{}
}

// Listener mantiene como máximo una suscripción por owner.
type Listener struct {
	dialer Dialer
	log    logger.Logger

	mu   sync.Mutex
	subs map[string]*subscription
}

func NewListener(d Dialer, log logger.Logger) *Listener {
	if log == nil {
		log = logger.Nop()
	}
	return &Listener{
		dialer: d,
		log:    log.With(map[string]any{"component": "realtime.listener"}),
		subs:   make(map[string]*subscription),
	}
}

// Subscribe abre el feed del owner y entrega cada evento decodificado a
// onEvent desde una goroutine propia. Si ya hay una suscripción (activa o
// conectando) devuelve ese mismo handle sin volver a conectar.
//
// onClosed (opcional) se llama una vez si el feed se corta sin un
// Unsubscribe; para entonces el owner ya volvió a Unsubscribed.
func (l *Listener) Subscribe(ctx context.Context, ownerID string, onEvent func(changes.Event), onClosed func(error)) (Handle, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Handle{}, ErrOwnerRequired
	}
	if onEvent == nil {
		onEvent = func(changes.Event) {}
	}
	if onClosed == nil {
		onClosed = func(error) {}
	}

	l.mu.Lock()
	if existing, ok := l.subs[ownerID]; ok {
		l.mu.Unlock()
		return existing.handle, nil
	}
	sub := &subscription{
		handle: Handle{ID: uuid.NewString(), OwnerID: ownerID},
		state:  Subscribing,
		done:   make(chan struct{}),
	}
	l.subs[ownerID] = sub
	l.mu.Unlock()

	feed, err := l.dialer.Dial(ctx, ownerID)

	l.mu.Lock()
	current := l.subs[ownerID] == sub
	if err != nil {
		if current {
			delete(l.subs, ownerID)
		}
		l.mu.Unlock()
		close(sub.done)
		return Handle{}, fmt.Errorf("subscribe %s: %w", ownerID, err)
	}
	if !current {
		l.mu.Unlock()
		_ = feed.Close()
		close(sub.done)
		return Handle{}, ErrUnsubscribed
	}

	runCtx, cancel := context.WithCancel(context.Background())
	sub.feed = feed
	sub.cancel = cancel
	sub.state = Subscribed
	l.mu.Unlock()

	l.log.Info("subscribed", map[string]any{"owner_id": ownerID, "handle": sub.handle.ID})

	go l.readLoop(runCtx, sub, onEvent, onClosed)
	return sub.handle, nil
}

// Unsubscribe cierra la suscripción del handle. Handles desconocidos o ya
// cerrados son no-op.
func (l *Listener) Unsubscribe(h Handle) {
	if h.IsZero() {
		return
	}

	l.mu.Lock()
	sub, ok := l.subs[h.OwnerID]
	if !ok || sub.handle.ID != h.ID {
		l.mu.Unlock()
		return
	}
	delete(l.subs, h.OwnerID)
	cancel := sub.cancel
	l.mu.Unlock()

	// Si estaba conectando, Subscribe ve que ya no es la actual y cierra el feed.
	if cancel != nil {
		cancel()
	}
	l.log.Info("unsubscribed", map[string]any{"owner_id": h.OwnerID, "handle": h.ID})
}

// State devuelve el estado actual de la suscripción del owner.
func (l *Listener) State(ownerID string) State {
	l.mu.Lock()
	defer l.mu.Unlock()

	sub, ok := l.subs[strings.TrimSpace(ownerID)]
	if !ok {
		return Unsubscribed
	}
	return sub.state
}

// Close cierra todas las suscripciones y espera a que terminen sus loops.
// No llamar desde dentro de un onEvent.
func (l *Listener) Close() {
	l.mu.Lock()
	subs := make([]*subscription, 0, len(l.subs))
	for owner, sub := range l.subs {
		subs = append(subs, sub)
		delete(l.subs, owner)
	}
	l.mu.Unlock()

	for _, sub := range subs {
		if sub.cancel != nil {
			sub.cancel()
		}
		<-sub.done
	}
}

func (l *Listener) readLoop(ctx context.Context, sub *subscription, onEvent func(changes.Event), onClosed func(error)) {
	defer close(sub.done)
	defer func() { _ = sub.feed.Close() }()

	log := l.log.With(map[string]any{"owner_id": sub.handle.OwnerID})

	for {
		raw, err := sub.feed.Next(ctx)
		if err != nil {
			l.forget(sub)
			if ctx.Err() == nil {
				log.Warn("change feed closed", map[string]any{"err": err.Error()})
				onClosed(err)
			}
			return
		}

		ev, err := changes.Decode(raw)
		if err != nil {
			log.Warn("dropping change record", map[string]any{"err": err.Error()})
			continue
		}
		onEvent(ev)
	}
}

// forget saca la suscripción del mapa si el feed murió solo.
func (l *Listener) forget(sub *subscription) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.subs[sub.handle.OwnerID] == sub {
		delete(l.subs, sub.handle.OwnerID)
	}
}
