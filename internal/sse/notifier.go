package sse

import (
	"time"

	"github.com/GTDGit/drapery_api/internal/models"
)

// PanelNotifier streams the selection changes of one panel through the Hub.
// It satisfies selection.Listener.
type PanelNotifier struct {
	hub     *Hub
	panelID string
}

// NewPanelNotifier creates a notifier for panelID backed by the given Hub.
func NewPanelNotifier(hub *Hub, panelID string) *PanelNotifier {
	return &PanelNotifier{hub: hub, panelID: panelID}
}

func (n *PanelNotifier) OnItemSelect(category models.SelectionCategory, item models.CatalogItem) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Publish(&SelectionEvent{
		Event:     EventItemSelected,
		PanelID:   n.panelID,
		Category:  category,
		Item:      &item,
		Timestamp: time.Now(),
	})
}

func (n *PanelNotifier) OnItemDeselect(category models.SelectionCategory) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Publish(&SelectionEvent{
		Event:     EventItemDeselected,
		PanelID:   n.panelID,
		Category:  category,
		Timestamp: time.Now(),
	})
}

// NotifyClosed tells watchers the panel is gone.
func (n *PanelNotifier) NotifyClosed() {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Publish(&SelectionEvent{
		Event:     EventPanelClosed,
		PanelID:   n.panelID,
		Timestamp: time.Now(),
	})
}
