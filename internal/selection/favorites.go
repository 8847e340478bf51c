package selection

import (
	"context"
	"fmt"
	"sync"

	"github.com/GTDGit/drapery_api/internal/models"
)

// FavoriteStore is the user-scoped persistent favorites store.
type FavoriteStore interface {
	ListFavorites(ctx context.Context, owner string) ([]string, error)
	// ToggleFavorite flips membership of itemID and reports the new state.
	ToggleFavorite(ctx context.Context, owner, itemID string) (bool, error)
}

// FavoriteTracker caches one owner's favorites in front of a FavoriteStore.
type FavoriteTracker struct {
	store FavoriteStore
	owner string
	set   models.FavoriteSet
}

// NewFavoriteTracker builds a tracker; call Load before use.
func NewFavoriteTracker(store FavoriteStore, owner string) *FavoriteTracker {
	return &FavoriteTracker{store: store, owner: owner, set: models.NewFavoriteSet()}
}

// Load refreshes the cached set from the store.
func (t *FavoriteTracker) Load(ctx context.Context) error {
	ids, err := t.store.ListFavorites(ctx, t.owner)
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	t.set = models.NewFavoriteSet(ids...)
	return nil
}

// IsFavorite reports whether id is starred.
func (t *FavoriteTracker) IsFavorite(id string) bool {
	return t.set.Has(id)
}

// Toggle flips id's membership; repeated toggles alternate.
func (t *FavoriteTracker) Toggle(ctx context.Context, id string) (bool, error) {
	on, err := t.store.ToggleFavorite(ctx, t.owner, id)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	if on {
		t.set[id] = struct{}{}
	} else {
		delete(t.set, id)
	}
	return on, nil
}

// Set returns a copy of the cached set.
func (t *FavoriteTracker) Set() models.FavoriteSet {
	return models.NewFavoriteSet(t.set.IDs()...)
}

// ApplyFavorites is the display-layer overlay. When only is false items are
// returned unchanged; otherwise the non-favorites are dropped, order kept.
func ApplyFavorites(items []models.CatalogItem, set models.FavoriteSet, only bool) []models.CatalogItem {
	if !only {
		return items
	}
	return filterItems(items, func(it models.CatalogItem) bool { return set.Has(it.ID) })
}

// MemoryFavoriteStore keeps favorites in process memory.
type MemoryFavoriteStore struct {
	mu   sync.Mutex
	sets map[string]models.FavoriteSet
}

// NewMemoryFavoriteStore creates an empty MemoryFavoriteStore.
func NewMemoryFavoriteStore() *MemoryFavoriteStore {
	return &MemoryFavoriteStore{sets: make(map[string]models.FavoriteSet)}
}

func (s *MemoryFavoriteStore) ListFavorites(_ context.Context, owner string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[owner].IDs(), nil
}

func (s *MemoryFavoriteStore) ToggleFavorite(_ context.Context, owner, itemID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[owner]
	if !ok {
		set = models.NewFavoriteSet()
		s.sets[owner] = set
	}
	if set.Has(itemID) {
		delete(set, itemID)
		return false, nil
	}
	set[itemID] = struct{}{}
	return true, nil
}
