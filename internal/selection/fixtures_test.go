package selection

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/drapery_api/internal/models"
)

func strp(s string) *string { return &s }

func newItem(id, name string, cat models.ItemCategory, sub string) models.CatalogItem {
	return models.CatalogItem{
		ID:           id,
		Name:         name,
		Category:     cat,
		Subcategory:  sub,
		Tags:         []string{},
		SellingPrice: decimal.NewFromInt(10),
		IsActive:     true,
	}
}

func fabric(id, name, sub string) models.CatalogItem {
	return newItem(id, name, models.ItemCategoryFabric, sub)
}

func material(id, name, sub string) models.CatalogItem {
	return newItem(id, name, models.ItemCategoryMaterial, sub)
}

func hardware(id, name string) models.CatalogItem {
	return newItem(id, name, models.ItemCategoryHardware, "track")
}

func ids(items []models.CatalogItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

// fakeSource serves pages through a test-supplied func and records queries.
type fakeSource struct {
	mu        sync.Mutex
	page      func(ctx context.Context, q CatalogQuery, page int) (Page, error)
	inventory []models.CatalogItem
	invErr    error
	queries   []CatalogQuery
}

func (f *fakeSource) FetchPage(ctx context.Context, q CatalogQuery, page int) (Page, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	fn := f.page
	f.mu.Unlock()
	if fn == nil {
		return Page{Page: page}, nil
	}
	return fn(ctx, q, page)
}

func (f *fakeSource) FetchInventory(context.Context) ([]models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invErr != nil {
		return nil, f.invErr
	}
	return append([]models.CatalogItem(nil), f.inventory...), nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeSource) searches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, q := range f.queries {
		out = append(out, q.Search)
	}
	return out
}

func (f *fakeSource) setPage(fn func(ctx context.Context, q CatalogQuery, page int) (Page, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.page = fn
}

// staticPages serves items as a single page.
func staticPages(items ...models.CatalogItem) func(context.Context, CatalogQuery, int) (Page, error) {
	return func(_ context.Context, _ CatalogQuery, page int) (Page, error) {
		if page > 1 {
			return Page{Page: page}, nil
		}
		return Page{Items: items, Page: 1}, nil
	}
}

type recordedEvent struct {
	Category models.SelectionCategory
	ItemID   string
	Selected bool
}

type recordingListener struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (l *recordingListener) OnItemSelect(c models.SelectionCategory, item models.CatalogItem) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, recordedEvent{Category: c, ItemID: item.ID, Selected: true})
}

func (l *recordingListener) OnItemDeselect(c models.SelectionCategory) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, recordedEvent{Category: c})
}

func (l *recordingListener) all() []recordedEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedEvent(nil), l.events...)
}
