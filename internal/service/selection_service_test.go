package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/drapery_api/internal/config"
	"github.com/GTDGit/drapery_api/internal/models"
	"github.com/GTDGit/drapery_api/internal/selection"
	"github.com/GTDGit/drapery_api/internal/sse"
	"github.com/GTDGit/drapery_api/internal/utils"
)

type stubSource struct {
	items     []models.CatalogItem
	inventory []models.CatalogItem
}

func (s *stubSource) FetchPage(_ context.Context, _ selection.CatalogQuery, page int) (selection.Page, error) {
	if page > 1 {
		return selection.Page{Page: page}, nil
	}
	return selection.Page{Items: s.items, Page: 1}, nil
}

func (s *stubSource) FetchInventory(context.Context) ([]models.CatalogItem, error) {
	return s.inventory, nil
}

type stubLookup map[string]models.CatalogItem

func (l stubLookup) GetItem(_ context.Context, id string) (*models.CatalogItem, error) {
	it, ok := l[id]
	if !ok {
		return nil, utils.ErrItemNotFound
	}
	return &it, nil
}

func catalogItem(id, name string, cat models.ItemCategory) models.CatalogItem {
	return models.CatalogItem{
		ID:           id,
		Name:         name,
		Category:     cat,
		Subcategory:  "curtain_fabric",
		Tags:         []string{},
		PricePerUnit: decimal.NewFromInt(10),
		IsActive:     true,
	}
}

func newSelectionService(src selection.CatalogSource, items ItemLookup, hub *sse.Hub) *SelectionService {
	return NewSelectionService(src, items, nil,
		selection.NewMemoryRecentStore(), selection.NewMemoryFavoriteStore(), hub,
		config.SelectionConfig{RecentLimit: 5, PageSize: 20})
}

func TestSelectionService_OpenGetClose(t *testing.T) {
	src := &stubSource{items: []models.CatalogItem{catalogItem("f1", "Linen", models.ItemCategoryFabric)}}
	hub := sse.NewHub()
	svc := newSelectionService(src, nil, hub)
	ctx := context.Background()

	p, err := svc.Open(ctx, "7", OpenPanelRequest{TreatmentCategory: models.TreatmentCurtains})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Count())
	assert.Equal(t, []string{"f1"}, itemIDs(p.Snapshot().Items))

	got, err := svc.Get("7", p.ID())
	require.NoError(t, err)
	assert.Same(t, p, got)

	_, err = svc.Get("8", p.ID())
	assert.ErrorIs(t, err, utils.ErrPanelForbidden)
	_, err = svc.Get("7", "missing")
	assert.ErrorIs(t, err, utils.ErrPanelNotFound)

	client := hub.Register("c1", p.ID())
	defer hub.Unregister(client.ID)

	assert.ErrorIs(t, svc.Close("8", p.ID()), utils.ErrPanelForbidden)
	require.NoError(t, svc.Close("7", p.ID()))
	assert.Equal(t, 0, svc.Count())

	select {
	case raw := <-client.Events:
		var ev sse.SelectionEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, sse.EventPanelClosed, ev.Event)
		assert.Equal(t, p.ID(), ev.PanelID)
	case <-time.After(time.Second):
		t.Fatal("expected panel_closed event")
	}
}

func TestSelectionService_OpenValidation(t *testing.T) {
	svc := newSelectionService(&stubSource{}, nil, nil)
	ctx := context.Background()

	_, err := svc.Open(ctx, "7", OpenPanelRequest{})
	assert.ErrorIs(t, err, utils.ErrUnknownTreatment)

	_, err = svc.Open(ctx, "7", OpenPanelRequest{TreatmentCategory: models.TreatmentCurtains, Tab: models.SelectionMaterial})
	assert.ErrorIs(t, err, selection.ErrTabNotOffered)
	assert.Equal(t, 0, svc.Count())

	// Unknown treatments still open, on a single fabric tab.
	p, err := svc.Open(ctx, "7", OpenPanelRequest{TreatmentCategory: "macrame"})
	require.NoError(t, err)
	snap := p.Snapshot()
	require.Len(t, snap.Tabs, 1)
	assert.Equal(t, models.SelectionFabric, snap.Tabs[0].Key)
}

func TestSelectionService_OpenOnRequestedTab(t *testing.T) {
	src := &stubSource{inventory: []models.CatalogItem{catalogItem("h1", "Track", models.ItemCategoryHardware)}}
	svc := newSelectionService(src, nil, nil)

	p, err := svc.Open(context.Background(), "7", OpenPanelRequest{
		TreatmentCategory: models.TreatmentCurtains,
		Tab:               models.SelectionHardware,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SelectionHardware, p.Filter().ActiveTab)
	assert.Equal(t, []string{"h1"}, itemIDs(p.Displayed()))
}

func TestSelectionService_Sweep(t *testing.T) {
	svc := newSelectionService(&stubSource{}, nil, nil)
	ctx := context.Background()

	_, err := svc.Open(ctx, "7", OpenPanelRequest{TreatmentCategory: models.TreatmentCurtains})
	require.NoError(t, err)

	assert.Equal(t, 0, svc.Sweep(time.Hour))
	assert.Equal(t, 1, svc.Count())

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, svc.Sweep(time.Hour))
	assert.Equal(t, 0, svc.Count())
}

func TestSelectionService_SelectRecentFallsBackToCatalog(t *testing.T) {
	loaded := catalogItem("f1", "Linen", models.ItemCategoryFabric)
	elsewhere := catalogItem("h9", "Brass rod", models.ItemCategoryHardware)
	svc := newSelectionService(&stubSource{items: []models.CatalogItem{loaded}}, stubLookup{"h9": elsewhere}, nil)
	ctx := context.Background()

	p, err := svc.Open(ctx, "7", OpenPanelRequest{
		TreatmentCategory: models.TreatmentCurtains,
		Measurements:      models.Measurements{Width: 150, Height: 200, Unit: models.UnitCM},
	})
	require.NoError(t, err)

	c, err := svc.SelectRecent(ctx, "7", p.ID(), "f1")
	require.NoError(t, err)
	assert.Equal(t, models.SelectionFabric, c.Category)

	c, err = svc.SelectRecent(ctx, "7", p.ID(), "h9")
	require.NoError(t, err)
	assert.Equal(t, models.SelectionHardware, c.Category)

	_, err = svc.SelectRecent(ctx, "7", p.ID(), "gone")
	assert.ErrorIs(t, err, utils.ErrItemNotFound)

	lines := svc.Lines(p)
	require.Len(t, lines, 2)
	assert.Equal(t, models.SelectionFabric, lines[0].Category)
	assert.True(t, decimal.NewFromInt(20).Equal(lines[0].Cost), "fabric cost %s", lines[0].Cost)
	assert.Equal(t, models.SelectionHardware, lines[1].Category)
	assert.True(t, decimal.NewFromInt(15).Equal(lines[1].Cost), "hardware cost %s", lines[1].Cost)

	recents, err := svc.Recents(ctx, "7")
	require.NoError(t, err)
	require.Len(t, recents, 2)
	assert.Equal(t, "h9", recents[0].ItemID)

	require.NoError(t, svc.ClearRecents(ctx, "7"))
	recents, err = svc.Recents(ctx, "7")
	require.NoError(t, err)
	assert.NotNil(t, recents)
	assert.Empty(t, recents)
}

func TestSelectionService_Favorites(t *testing.T) {
	svc := newSelectionService(&stubSource{}, nil, nil)
	ctx := context.Background()

	on, err := svc.ToggleFavorite(ctx, "7", "f1")
	require.NoError(t, err)
	assert.True(t, on)

	favs, err := svc.Favorites(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"f1"}, favs)

	// New panels start with the stored favorites.
	p, err := svc.Open(ctx, "7", OpenPanelRequest{TreatmentCategory: models.TreatmentCurtains})
	require.NoError(t, err)
	assert.Equal(t, []string{"f1"}, p.Snapshot().Favorites)

	others, err := svc.Favorites(ctx, "8")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestSelectionService_ToggleFavoriteRefreshesOpenPanels(t *testing.T) {
	src := &stubSource{items: []models.CatalogItem{
		catalogItem("f1", "Linen", models.ItemCategoryFabric),
		catalogItem("f2", "Velvet", models.ItemCategoryFabric),
	}}
	svc := newSelectionService(src, nil, nil)
	ctx := context.Background()

	mine, err := svc.Open(ctx, "7", OpenPanelRequest{TreatmentCategory: models.TreatmentCurtains})
	require.NoError(t, err)
	theirs, err := svc.Open(ctx, "8", OpenPanelRequest{TreatmentCategory: models.TreatmentCurtains})
	require.NoError(t, err)
	only := true
	for _, p := range []*selection.Panel{mine, theirs} {
		require.NoError(t, p.ApplyFilter(ctx, selection.FilterPatch{FavoritesOnly: &only}))
		assert.Empty(t, p.Snapshot().Items)
	}

	_, err = svc.ToggleFavorite(ctx, "7", "f2")
	require.NoError(t, err)

	snap := mine.Snapshot()
	assert.Equal(t, []string{"f2"}, itemIDs(snap.Items))
	assert.Equal(t, []string{"f2"}, snap.Favorites)
	assert.Empty(t, theirs.Snapshot().Items)

	_, err = svc.ToggleFavorite(ctx, "7", "f2")
	require.NoError(t, err)
	assert.Empty(t, mine.Snapshot().Items)
}

func TestSelectionService_CloseAll(t *testing.T) {
	svc := newSelectionService(&stubSource{}, nil, nil)
	for i := 0; i < 3; i++ {
		_, err := svc.Open(context.Background(), "7", OpenPanelRequest{TreatmentCategory: models.TreatmentCurtains})
		require.NoError(t, err)
	}
	require.Equal(t, 3, svc.Count())
	svc.CloseAll()
	assert.Equal(t, 0, svc.Count())
}

func itemIDs(items []models.CatalogItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
