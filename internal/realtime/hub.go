package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"pet-marketplace/internal/domain/changes"
	"pet-marketplace/internal/domain/pets"
	"pet-marketplace/internal/platform/logger"
)

const (
	hubBuffer    = 256
	writeTimeout = 5 * time.Second
)

type outbound struct {
	ownerID string
	record  changes.Record
}

// Hub reparte los cambios confirmados de pets a los websockets del owner.
// Implementa pets.Publisher. Un solo loop de broadcast mantiene el orden de
// publicación por owner.
type Hub struct {
	log logger.Logger
	now func() time.Time

	mu      sync.RWMutex
	clients map[string]map[*websocket.Conn]struct{}

	broadcast chan outbound

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		log:       log.With(map[string]any{"component": "realtime.hub"}),
		now:       time.Now,
		clients:   make(map[string]map[*websocket.Conn]struct{}),
		broadcast: make(chan outbound, hubBuffer),
		ctx:       ctx,
		cancel:    cancel,
	}

	h.wg.Add(1)
	go h.broadcastLoop()
	return h
}

// Publish encola el cambio. Si el buffer está lleno, se descarta (los
// clientes reconcilian con un Load).
func (h *Hub) Publish(_ context.Context, c pets.Change) {
	owner := c.OwnerUserID()
	if owner == "" {
		return
	}
	msg := outbound{ownerID: owner, record: changes.FromChange(c, h.now())}

	select {
	case h.broadcast <- msg:
	case <-h.ctx.Done():
	default:
		h.log.Warn("broadcast buffer full, dropping change", map[string]any{
			"owner_id": owner,
			"type":     string(c.Kind),
		})
	}
}

// Serve hace upgrade a websocket y registra la conexión bajo ownerID.
// Bloquea hasta que el cliente se desconecta o el hub se cierra.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, ownerID string) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn("websocket upgrade failed", map[string]any{"err": err.Error()})
		return
	}

	h.add(ownerID, conn)
	defer h.remove(ownerID, conn)

	// No procesamos mensajes del cliente; el read detecta desconexiones.
	for {
		if _, _, err := conn.Read(h.ctx); err != nil {
			return
		}
	}
}

// Clients devuelve cuántas conexiones tiene abiertas el owner.
func (h *Hub) Clients(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[ownerID])
}

// Close corta todas las conexiones y detiene el broadcast.
func (h *Hub) Close() {
	h.cancel()

	h.mu.Lock()
	for owner, conns := range h.clients {
		for conn := range conns {
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		delete(h.clients, owner)
	}
	h.mu.Unlock()

	h.wg.Wait()
}

func (h *Hub) broadcastLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return
		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

func (h *Hub) send(msg outbound) {
	data, err := json.Marshal(msg.record)
	if err != nil {
		h.log.Error("marshal change record", map[string]any{"err": err.Error()})
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[msg.ownerID]))
	for conn := range h.clients[msg.ownerID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, data)
		cancel()

		if err != nil {
			h.log.Warn("write to client failed", map[string]any{"owner_id": msg.ownerID, "err": err.Error()})
			h.remove(msg.ownerID, conn)
		}
	}
}

func (h *Hub) add(ownerID string, conn *websocket.Conn) {
	h.mu.Lock()
	if h.clients[ownerID] == nil {
		h.clients[ownerID] = make(map[*websocket.Conn]struct{})
	}
	h.clients[ownerID][conn] = struct{}{}
	n := len(h.clients[ownerID])
	h.mu.Unlock()

	h.log.Debug("client connected", map[string]any{"owner_id": ownerID, "clients": n})
}

func (h *Hub) remove(ownerID string, conn *websocket.Conn) {
	h.mu.Lock()
	conns, ok := h.clients[ownerID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, exists := conns[conn]; !exists {
		h.mu.Unlock()
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.clients, ownerID)
	}
	h.mu.Unlock()

	_ = conn.Close(websocket.StatusNormalClosure, "")
	h.log.Debug("client disconnected", map[string]any{"owner_id": ownerID})
}
