// Package websocket streams toasts to the browser sessions they were raised for.
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yigit/majlis/internal/app/models"
)

// EventToast is the only event type pushed to clients
const EventToast = "toast"

// Event is the frame written to a connection
type Event struct {
	Type  string       `json:"type"`
	Toast models.Toast `json:"toast"`
}

type delivery struct {
	sessionID string
	event     Event
}

// Hub maintains the active connections per session and fans toasts out to them
type Hub struct {
	// connections by session ID
	clients map[string]map[*Client]bool

	broadcast  chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// guards clients for readers outside the run loop
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and deliveries until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.broadcast:
			h.deliver(d)
		}
	}
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// NotifyToast queues a toast for every connection of the session.
// It never blocks; when the queue is full the toast is only kept in the store.
func (h *Hub) NotifyToast(sessionID string, toast models.Toast) {
	select {
	case h.broadcast <- delivery{sessionID: sessionID, event: Event{Type: EventToast, Toast: toast}}:
	default:
		h.logger.Warn().Str("sessionID", sessionID).Msg("Toast queue full, dropping live delivery")
	}
}

// ClientsCount returns the number of open connections for a session
func (h *Hub) ClientsCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.sessionID]; !ok {
		h.clients[client.sessionID] = make(map[*Client]bool)
	}
	h.clients[client.sessionID][client] = true

	h.logger.Debug().Str("sessionID", client.sessionID).Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	conns, ok := h.clients[client.sessionID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.sessionID)
	}
	h.logger.Debug().Str("sessionID", client.sessionID).Msg("Client unregistered")
}

func (h *Hub) deliver(d delivery) {
	data, err := json.Marshal(d.event)
	if err != nil {
		h.logger.Error().Err(err).Str("sessionID", d.sessionID).Msg("Failed to marshal toast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients[d.sessionID] {
		select {
		case client.send <- data:
		default:
			// slow reader, drop the connection
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			h.removeLocked(client)
		}
	}
}
