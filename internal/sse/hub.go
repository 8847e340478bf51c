package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/drapery_api/internal/models"
)

// EventType defines the SSE event name.
type EventType string

const (
	EventItemSelected   EventType = "selection.item_selected"
	EventItemDeselected EventType = "selection.item_deselected"
	EventPanelClosed    EventType = "selection.panel_closed"
)

// SelectionEvent is the payload streamed to clients watching a panel.
type SelectionEvent struct {
	Event     EventType                `json:"event"`
	PanelID   string                   `json:"panelId"`
	Category  models.SelectionCategory `json:"category,omitempty"`
	Item      *models.CatalogItem      `json:"item,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
}

// Client represents a connected SSE client watching one panel.
type Client struct {
	ID      string
	PanelID string
	Events  chan []byte
}

// Hub manages SSE client connections and fans events out per panel.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client for panelID and returns it for streaming.
func (h *Hub) Register(clientID, panelID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &Client{
		ID:      clientID,
		PanelID: panelID,
		Events:  make(chan []byte, 64),
	}
	h.clients[clientID] = c
	log.Info().Str("client_id", clientID).Str("panel_id", panelID).Int("total_clients", len(h.clients)).Msg("SSE client connected")
	return c
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.Events)
		delete(h.clients, clientID)
		log.Info().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client disconnected")
	}
}

// Publish sends an event to the clients watching its panel.
// Non-blocking: drops message if client buffer is full.
func (h *Hub) Publish(event *SelectionEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal SSE event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if c.PanelID != event.PanelID {
			continue
		}
		select {
		case c.Events <- data:
		default:
			log.Warn().Str("client_id", c.ID).Msg("SSE client buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
