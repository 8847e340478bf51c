package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/drapery_api/internal/config"
	"github.com/GTDGit/drapery_api/internal/models"
	"github.com/GTDGit/drapery_api/internal/selection"
	"github.com/GTDGit/drapery_api/internal/sse"
	"github.com/GTDGit/drapery_api/internal/utils"
)

// ItemLookup resolves a single catalog item by id.
type ItemLookup interface {
	GetItem(ctx context.Context, id string) (*models.CatalogItem, error)
}

// OpenPanelRequest describes the panel a quote editor wants to open.
type OpenPanelRequest struct {
	TreatmentType     string                   `json:"treatmentType"`
	TreatmentCategory models.TreatmentCategory `json:"treatmentCategory" binding:"required"`
	Measurements      models.Measurements      `json:"measurements"`
	TemplateID        string                   `json:"templateId"`
	ParentProductID   string                   `json:"parentProductId"`
	Tab               models.SelectionCategory `json:"tab"`
}

// SelectionLine is one selected slot with its estimated cost.
type SelectionLine struct {
	Category models.SelectionCategory `json:"category"`
	Item     models.CatalogItem       `json:"item"`
	Cost     decimal.Decimal          `json:"cost"`
}

type panelEntry struct {
	panel    *selection.Panel
	notifier *sse.PanelNotifier
}

// SelectionService owns the open selection panels of all users.
type SelectionService struct {
	source    selection.CatalogSource
	items     ItemLookup
	resolver  *selection.Resolver
	recents   selection.RecentStore
	favorites selection.FavoriteStore
	hub       *sse.Hub
	cfg       config.SelectionConfig

	mu     sync.RWMutex
	panels map[string]*panelEntry
	now    func() time.Time
}

// NewSelectionService creates a new SelectionService. hub may be nil.
func NewSelectionService(
	source selection.CatalogSource,
	items ItemLookup,
	resolver *selection.Resolver,
	recents selection.RecentStore,
	favorites selection.FavoriteStore,
	hub *sse.Hub,
	cfg config.SelectionConfig,
) *SelectionService {
	if resolver == nil {
		resolver = selection.DefaultResolver()
	}
	return &SelectionService{
		source:    source,
		items:     items,
		resolver:  resolver,
		recents:   recents,
		favorites: favorites,
		hub:       hub,
		cfg:       cfg,
		panels:    make(map[string]*panelEntry),
		now:       time.Now,
	}
}

// Resolver exposes the treatment rules for tab listings.
func (s *SelectionService) Resolver() *selection.Resolver {
	return s.resolver
}

// Open creates a panel for owner, loads it and registers it.
func (s *SelectionService) Open(ctx context.Context, owner string, req OpenPanelRequest) (*selection.Panel, error) {
	if req.TreatmentCategory == "" {
		return nil, utils.ErrUnknownTreatment
	}
	if !s.resolver.Known(req.TreatmentCategory) {
		log.Warn().Str("treatment", string(req.TreatmentCategory)).Msg("unknown treatment, offering fabric only")
	}

	id := uuid.NewString()
	entry := &panelEntry{}
	var listener selection.Listener = selection.NopListener{}
	if s.hub != nil {
		entry.notifier = sse.NewPanelNotifier(s.hub, id)
		listener = entry.notifier
	}

	entry.panel = selection.NewPanel(selection.Config{
		PanelID:           id,
		Owner:             owner,
		TreatmentType:     req.TreatmentType,
		TreatmentCategory: req.TreatmentCategory,
		Measurements:      req.Measurements,
		TemplateID:        req.TemplateID,
		ParentProductID:   req.ParentProductID,
		PageSize:          s.cfg.PageSize,
		SearchDebounce:    s.cfg.SearchDebounce,
	}, selection.Deps{
		Source:    s.source,
		Resolver:  s.resolver,
		Recents:   selection.NewRecentTracker(s.recents, owner, s.cfg.RecentLimit),
		Favorites: selection.NewFavoriteTracker(s.favorites, owner),
		Listener:  listener,
		Logger:    log.Logger.With().Str("owner", owner).Logger(),
	})

	if err := entry.panel.Open(ctx); err != nil {
		entry.panel.Close()
		return nil, err
	}
	if req.Tab != "" {
		if err := entry.panel.SetTab(ctx, req.Tab); err != nil && !isFetchError(err) {
			entry.panel.Close()
			return nil, err
		}
	}

	s.mu.Lock()
	s.panels[id] = entry
	total := len(s.panels)
	s.mu.Unlock()

	log.Info().Str("panel_id", id).Str("owner", owner).Str("treatment", string(req.TreatmentCategory)).Int("open_panels", total).Msg("Selection panel opened")
	return entry.panel, nil
}

// Get returns owner's panel id.
func (s *SelectionService) Get(owner, id string) (*selection.Panel, error) {
	s.mu.RLock()
	entry, ok := s.panels[id]
	s.mu.RUnlock()
	if !ok {
		return nil, utils.ErrPanelNotFound
	}
	if entry.panel.Owner() != owner {
		return nil, utils.ErrPanelForbidden
	}
	return entry.panel, nil
}

// Close discards owner's panel id.
func (s *SelectionService) Close(owner, id string) error {
	if _, err := s.Get(owner, id); err != nil {
		return err
	}
	s.remove(id)
	return nil
}

func (s *SelectionService) remove(id string) {
	s.mu.Lock()
	entry, ok := s.panels[id]
	delete(s.panels, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	entry.panel.Close()
	if entry.notifier != nil {
		entry.notifier.NotifyClosed()
	}
}

// Sweep closes panels idle for longer than ttl and returns how many.
func (s *SelectionService) Sweep(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.RLock()
	var stale []string
	for id, entry := range s.panels {
		if entry.panel.LastUsed().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range stale {
		s.remove(id)
	}
	return len(stale)
}

// Count returns the number of open panels.
func (s *SelectionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.panels)
}

// CloseAll closes every panel. Used at shutdown.
func (s *SelectionService) CloseAll() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.panels))
	for id := range s.panels {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	for _, id := range ids {
		s.remove(id)
	}
}

// SelectRecent selects a recent item on a panel. When the item is not on
// any loaded page it is looked up in the catalog.
func (s *SelectionService) SelectRecent(ctx context.Context, owner, panelID, itemID string) (selection.Change, error) {
	p, err := s.Get(owner, panelID)
	if err != nil {
		return selection.Change{}, err
	}
	change, err := p.SelectRecent(ctx, itemID)
	if !errors.Is(err, selection.ErrItemNotFound) {
		return change, err
	}
	if s.items == nil {
		return selection.Change{}, utils.ErrItemNotFound
	}
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return selection.Change{}, err
	}
	return p.SelectItem(ctx, *item), nil
}

// Lines returns the panel's selection with cost estimates in slot order.
func (s *SelectionService) Lines(p *selection.Panel) []SelectionLine {
	sel := p.Selection()
	m := p.Measurements()
	lines := make([]SelectionLine, 0, len(sel))
	for _, cat := range []models.SelectionCategory{models.SelectionFabric, models.SelectionMaterial, models.SelectionHardware} {
		item, ok := sel[cat]
		if !ok {
			continue
		}
		lines = append(lines, SelectionLine{
			Category: cat,
			Item:     item,
			Cost:     selection.EstimateCost(cat, item, m),
		})
	}
	return lines
}

// Recents returns owner's recently selected items, newest first.
func (s *SelectionService) Recents(ctx context.Context, owner string) ([]models.RecentSelection, error) {
	list, err := selection.NewRecentTracker(s.recents, owner, s.cfg.RecentLimit).List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.RecentSelection{}
	}
	return list, nil
}

// ClearRecents empties owner's recent list.
func (s *SelectionService) ClearRecents(ctx context.Context, owner string) error {
	return selection.NewRecentTracker(s.recents, owner, s.cfg.RecentLimit).Clear(ctx)
}

// Favorites returns owner's favorite item ids.
func (s *SelectionService) Favorites(ctx context.Context, owner string) ([]string, error) {
	t := selection.NewFavoriteTracker(s.favorites, owner)
	if err := t.Load(ctx); err != nil {
		return nil, err
	}
	return t.Set().IDs(), nil
}

// ToggleFavorite flips one of owner's favorites and refreshes owner's open
// panels so favorites-only views follow the change.
func (s *SelectionService) ToggleFavorite(ctx context.Context, owner, itemID string) (bool, error) {
	on, err := s.favorites.ToggleFavorite(ctx, owner, itemID)
	if err != nil {
		return false, err
	}
	for _, p := range s.ownerPanels(owner) {
		if err := p.ReloadFavorites(ctx); err != nil {
			log.Warn().Err(err).Str("panel_id", p.ID()).Msg("Failed to refresh panel favorites")
		}
	}
	return on, nil
}

func (s *SelectionService) ownerPanels(owner string) []*selection.Panel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*selection.Panel
	for _, entry := range s.panels {
		if entry.panel.Owner() == owner {
			out = append(out, entry.panel)
		}
	}
	return out
}

// isFetchError reports whether err came from the catalog source rather than
// from tab validation. Fetch failures are rendered on the panel itself.
func isFetchError(err error) bool {
	return !errors.Is(err, selection.ErrInvalidCategory) && !errors.Is(err, selection.ErrTabNotOffered)
}
