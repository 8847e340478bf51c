package selection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GTDGit/drapery_api/internal/models"
)

// DefaultRecentLimit bounds the recent selections log.
const DefaultRecentLimit = 10

// RecentStore persists the recent selections of one owner.
type RecentStore interface {
	LoadRecent(ctx context.Context, owner string) ([]models.RecentSelection, error)
	SaveRecent(ctx context.Context, owner string, list []models.RecentSelection) error
	ClearRecent(ctx context.Context, owner string) error
}

// PushRecent returns a new list with entry at the head, any older entry with
// the same item id removed, truncated to limit. list is not modified.
func PushRecent(list []models.RecentSelection, entry models.RecentSelection, limit int) []models.RecentSelection {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	out := make([]models.RecentSelection, 0, min(len(list)+1, limit))
	out = append(out, entry)
	for _, r := range list {
		if len(out) == limit {
			break
		}
		if r.ItemID == entry.ItemID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// RecentTracker maintains the most-recent-first log for one owner.
type RecentTracker struct {
	store RecentStore
	owner string
	limit int
	now   func() time.Time
}

// NewRecentTracker builds a tracker; limit <= 0 uses DefaultRecentLimit.
func NewRecentTracker(store RecentStore, owner string, limit int) *RecentTracker {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &RecentTracker{store: store, owner: owner, limit: limit, now: time.Now}
}

// Add records item as the most recent selection.
func (t *RecentTracker) Add(ctx context.Context, item models.CatalogItem) ([]models.RecentSelection, error) {
	list, err := t.store.LoadRecent(ctx, t.owner)
	if err != nil {
		return nil, fmt.Errorf("load recent selections: %w", err)
	}
	list = PushRecent(list, models.RecentSelection{
		ItemID:     item.ID,
		Name:       item.Name,
		ImageURL:   item.ImageURL,
		Color:      item.Color,
		SelectedAt: t.now(),
	}, t.limit)
	if err := t.store.SaveRecent(ctx, t.owner, list); err != nil {
		return nil, fmt.Errorf("save recent selections: %w", err)
	}
	return list, nil
}

// List returns the current log.
func (t *RecentTracker) List(ctx context.Context) ([]models.RecentSelection, error) {
	return t.store.LoadRecent(ctx, t.owner)
}

// Clear empties the log.
func (t *RecentTracker) Clear(ctx context.Context) error {
	return t.store.ClearRecent(ctx, t.owner)
}

// RelativeTime formats ts relative to now for the recently-used strip.
func RelativeTime(ts, now time.Time) string {
	d := now.Sub(ts)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return ts.Format("2 Jan 2006")
	}
}

// MemoryRecentStore keeps recent selections in process memory.
type MemoryRecentStore struct {
	mu    sync.Mutex
	lists map[string][]models.RecentSelection
}

// NewMemoryRecentStore creates an empty MemoryRecentStore.
func NewMemoryRecentStore() *MemoryRecentStore {
	return &MemoryRecentStore{lists: make(map[string][]models.RecentSelection)}
}

func (s *MemoryRecentStore) LoadRecent(_ context.Context, owner string) ([]models.RecentSelection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.RecentSelection(nil), s.lists[owner]...), nil
}

func (s *MemoryRecentStore) SaveRecent(_ context.Context, owner string, list []models.RecentSelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[owner] = append([]models.RecentSelection(nil), list...)
	return nil
}

func (s *MemoryRecentStore) ClearRecent(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, owner)
	return nil
}
