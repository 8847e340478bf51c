package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/drapery_api/internal/service"
	"github.com/GTDGit/drapery_api/internal/sse"
)

// SSEHandler streams selection changes of one panel.
type SSEHandler struct {
	hub        *sse.Hub
	selections *service.SelectionService
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(hub *sse.Hub, selections *service.SelectionService) *SSEHandler {
	return &SSEHandler{hub: hub, selections: selections}
}

// Stream handles GET /v1/panels/:id/events?token=<jwt>
func (h *SSEHandler) Stream(c *gin.Context) {
	panelID := c.Param("id")
	if _, err := h.selections.Get(owner(c), panelID); err != nil {
		writeSelectionError(c, err)
		return
	}

	clientID := fmt.Sprintf("user-%s-%d", owner(c), time.Now().UnixNano())

	// SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	client := h.hub.Register(clientID, panelID)
	defer h.hub.Unregister(clientID)

	c.SSEvent("connected", gin.H{
		"clientId":  clientID,
		"panelId":   panelID,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	c.Writer.Flush()

	log.Info().Str("client_id", clientID).Str("panel_id", panelID).Msg("Panel SSE stream started")

	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent("selection", string(data))
			return true
		case <-time.After(30 * time.Second):
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
