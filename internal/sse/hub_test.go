package sse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/drapery_api/internal/models"
)

func TestPanelNotifierRoutesByPanel(t *testing.T) {
	hub := NewHub()
	watcher := hub.Register("c1", "panel-a")
	other := hub.Register("c2", "panel-b")
	defer hub.Unregister("c1")
	defer hub.Unregister("c2")

	n := NewPanelNotifier(hub, "panel-a")
	n.OnItemSelect(models.SelectionFabric, models.CatalogItem{ID: "f1", Name: "Linen"})

	require.Len(t, watcher.Events, 1)
	assert.Empty(t, other.Events)

	var ev SelectionEvent
	require.NoError(t, json.Unmarshal(<-watcher.Events, &ev))
	assert.Equal(t, EventItemSelected, ev.Event)
	assert.Equal(t, "panel-a", ev.PanelID)
	assert.Equal(t, models.SelectionFabric, ev.Category)
	require.NotNil(t, ev.Item)
	assert.Equal(t, "f1", ev.Item.ID)
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c := hub.Register("c1", "p")
	defer hub.Unregister("c1")

	n := NewPanelNotifier(hub, "p")
	for i := 0; i < cap(c.Events)+5; i++ {
		n.OnItemDeselect(models.SelectionHardware)
	}
	assert.Len(t, c.Events, cap(c.Events))
}

func TestUnregisterClosesChannel(t *testing.T) {
	hub := NewHub()
	c := hub.Register("c1", "p")
	hub.Unregister("c1")

	_, ok := <-c.Events
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())
}
