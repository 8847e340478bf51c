package selection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/drapery_api/internal/models"
)

func TestSelectionState_ClickToggles(t *testing.T) {
	s := NewSelectionState()
	a := fabric("f1", "Linen", "curtain_fabric")
	b := fabric("f2", "Velvet", "curtain_fabric")

	c := s.Click(models.SelectionFabric, a)
	assert.True(t, c.Selected)
	assert.Equal(t, models.SelectionFabric, c.Category)

	c = s.Click(models.SelectionFabric, b)
	assert.True(t, c.Selected)
	got, ok := s.Get(models.SelectionFabric)
	require.True(t, ok)
	assert.Equal(t, "f2", got.ID)

	c = s.Click(models.SelectionFabric, b)
	assert.False(t, c.Selected)
	_, ok = s.Get(models.SelectionFabric)
	assert.False(t, ok)
}

func TestSelectionState_SlotsAreIndependent(t *testing.T) {
	s := NewSelectionState()
	s.Click(models.SelectionBoth, fabric("f1", "Vane fabric", "vertical_fabric"))
	s.Click(models.SelectionBoth, material("m1", "PVC vane", "vertical_vanes"))
	s.Select(models.SelectionHardware, hardware("h1", "Track"))

	res := s.Result()
	assert.Len(t, res, 3)
	assert.Equal(t, "f1", res[models.SelectionFabric].ID)
	assert.Equal(t, "m1", res[models.SelectionMaterial].ID)

	_, ok := s.Deselect(models.SelectionMaterial)
	assert.True(t, ok)
	_, ok = s.Deselect(models.SelectionMaterial)
	assert.False(t, ok)
	assert.Len(t, s.Result(), 2)
	// Result is a copy.
	res[models.SelectionFabric] = models.CatalogItem{}
	got, _ := s.Get(models.SelectionFabric)
	assert.Equal(t, "f1", got.ID)
}

func TestShouldAutoSelect(t *testing.T) {
	only := fabric("f1", "Linen", "curtain_fabric")
	other := fabric("f2", "Velvet", "curtain_fabric")
	current := other

	tests := []struct {
		name string
		in   AutoSelectInput
		want bool
	}{
		{"fires", AutoSelectInput{ParentProductID: "p1", Candidates: []models.CatalogItem{only}}, true},
		{"loading", AutoSelectInput{Loading: true, ParentProductID: "p1", Candidates: []models.CatalogItem{only}}, false},
		{"refetching", AutoSelectInput{Refetching: true, ParentProductID: "p1", Candidates: []models.CatalogItem{only}}, false},
		{"free browsing", AutoSelectInput{Candidates: []models.CatalogItem{only}}, false},
		{"already selected", AutoSelectInput{ParentProductID: "p1", Candidates: []models.CatalogItem{only}, Current: &current}, false},
		{"ambiguous", AutoSelectInput{ParentProductID: "p1", Candidates: []models.CatalogItem{only, other}}, false},
		{"empty", AutoSelectInput{ParentProductID: "p1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := ShouldAutoSelect(tt.in)
			assert.Equal(t, tt.want, ok)
			if ok {
				assert.Equal(t, "f1", item.ID)
			}
		})
	}
}

func TestPushRecent(t *testing.T) {
	entry := func(id string) models.RecentSelection { return models.RecentSelection{ItemID: id} }
	recentIDs := func(list []models.RecentSelection) []string {
		var out []string
		for _, r := range list {
			out = append(out, r.ItemID)
		}
		return out
	}

	list := []models.RecentSelection{entry("a"), entry("b"), entry("c")}

	got := PushRecent(list, entry("b"), 10)
	assert.Equal(t, []string{"b", "a", "c"}, recentIDs(got))
	assert.Equal(t, []string{"a", "b", "c"}, recentIDs(list))

	got = PushRecent(list, entry("d"), 3)
	assert.Equal(t, []string{"d", "a", "b"}, recentIDs(got))

	got = PushRecent(nil, entry("a"), 0)
	assert.Equal(t, []string{"a"}, recentIDs(got))
}

func TestRecentTracker(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRecentStore()
	tr := NewRecentTracker(store, "7", 2)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return fixed }

	for _, it := range []models.CatalogItem{fabric("f1", "A", "x"), fabric("f2", "B", "x"), fabric("f1", "A", "x"), fabric("f3", "C", "x")} {
		_, err := tr.Add(ctx, it)
		require.NoError(t, err)
	}

	list, err := tr.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "f3", list[0].ItemID)
	assert.Equal(t, "f1", list[1].ItemID)
	assert.Equal(t, fixed, list[0].SelectedAt)

	other, err := NewRecentTracker(store, "8", 2).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, tr.Clear(ctx))
	list, err = tr.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

type failingRecentStore struct{}

func (failingRecentStore) LoadRecent(context.Context, string) ([]models.RecentSelection, error) {
	return nil, errors.New("redis down")
}

func (failingRecentStore) SaveRecent(context.Context, string, []models.RecentSelection) error {
	return errors.New("redis down")
}

func (failingRecentStore) ClearRecent(context.Context, string) error { return nil }

func TestRecentTracker_StoreError(t *testing.T) {
	tr := NewRecentTracker(failingRecentStore{}, "7", 5)
	_, err := tr.Add(context.Background(), fabric("f1", "A", "x"))
	assert.ErrorContains(t, err, "redis down")
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "Just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
		{9 * 24 * time.Hour, "1 Mar 2026"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeTime(now.Add(-tt.ago), now))
	}
}

func TestFavoriteTracker(t *testing.T) {
	ctx := context.Background()
	tr := NewFavoriteTracker(NewMemoryFavoriteStore(), "7")
	require.NoError(t, tr.Load(ctx))

	on, err := tr.Toggle(ctx, "f1")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, tr.IsFavorite("f1"))

	on, err = tr.Toggle(ctx, "f1")
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, tr.IsFavorite("f1"))

	_, err = tr.Toggle(ctx, "f2")
	require.NoError(t, err)

	// A fresh tracker over the same store sees the persisted set.
	again := NewFavoriteTracker(tr.store, "7")
	require.NoError(t, again.Load(ctx))
	assert.Equal(t, []string{"f2"}, again.Set().IDs())
}

func TestApplyFavorites(t *testing.T) {
	items := []models.CatalogItem{fabric("f1", "A", "x"), fabric("f2", "B", "x"), fabric("f3", "C", "x")}
	set := models.NewFavoriteSet("f3", "f1")

	assert.Equal(t, []string{"f1", "f2", "f3"}, ids(ApplyFavorites(items, set, false)))
	assert.Equal(t, []string{"f1", "f3"}, ids(ApplyFavorites(items, set, true)))
	assert.Empty(t, ApplyFavorites(items, models.NewFavoriteSet(), true))
}

func TestEstimateCost(t *testing.T) {
	item := fabric("f1", "Linen", "curtain_fabric")
	item.PricePerUnit = decimal.RequireFromString("20")
	m := models.Measurements{Width: 180, Height: 250, Unit: models.UnitCM}

	tests := []struct {
		slot models.SelectionCategory
		want string
	}{
		{models.SelectionFabric, "50"},
		{models.SelectionHardware, "36"},
		{models.SelectionMaterial, "90"},
		{models.SelectionBoth, "0"},
	}
	for _, tt := range tests {
		t.Run(string(tt.slot), func(t *testing.T) {
			got := EstimateCost(tt.slot, item, m)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	mm := models.Measurements{Width: 1000, Height: 2000, Unit: models.UnitMM}
	assert.True(t, decimal.RequireFromString("40").Equal(EstimateCost(models.SelectionFabric, item, mm)))
}

func TestManualEntry(t *testing.T) {
	_, err := ManualEntry{Price: decimal.NewFromInt(5)}.Item(models.SelectionFabric)
	assert.ErrorIs(t, err, ErrManualEntryName)

	_, err = ManualEntry{Name: "Custom", Price: decimal.Zero}.Item(models.SelectionFabric)
	assert.ErrorIs(t, err, ErrManualEntryPrice)

	item, err := ManualEntry{Name: "  Custom rod ", Price: decimal.NewFromInt(45), Supplier: "Local"}.Item(models.SelectionHardware)
	require.NoError(t, err)
	assert.Equal(t, "Custom rod", item.Name)
	assert.Equal(t, models.ItemCategoryHardware, item.Category)
	assert.Contains(t, item.ID, "manual-")
	assert.True(t, decimal.NewFromInt(45).Equal(item.EffectivePrice()))
}
