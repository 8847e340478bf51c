package selection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/drapery_api/internal/models"
)

// DefaultSearchDebounce coalesces keystrokes into one remote fetch.
const DefaultSearchDebounce = 300 * time.Millisecond

// Config is the per-panel configuration supplied by the quote editor.
type Config struct {
	PanelID           string
	Owner             string
	TreatmentType     string
	TreatmentCategory models.TreatmentCategory
	Measurements      models.Measurements
	TemplateID        string
	ParentProductID   string
	PageSize          int
	SearchDebounce    time.Duration
}

// Deps are the collaborators injected into a Panel.
type Deps struct {
	Source    CatalogSource
	Resolver  *Resolver
	Recents   *RecentTracker
	Favorites *FavoriteTracker
	Listener  Listener
	Logger    zerolog.Logger
}

// Notice is a toast-style message surfaced to the user.
type Notice struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// FilterPatch changes a subset of the filter. Nil fields are left alone.
type FilterPatch struct {
	Search        *string   `json:"search"`
	VendorID      *string   `json:"vendorId"`
	VendorName    *string   `json:"vendorName"`
	CollectionID  *string   `json:"collectionId"`
	Tags          *[]string `json:"tags"`
	PriceGroup    *string   `json:"priceGroup"`
	QuickTypes    *[]string `json:"quickTypes"`
	FavoritesOnly *bool     `json:"favoritesOnly"`
}

// Snapshot is a read-only view of a panel for rendering.
type Snapshot struct {
	ID                string                   `json:"id"`
	TreatmentType     string                   `json:"treatmentType"`
	TreatmentCategory models.TreatmentCategory `json:"treatmentCategory"`
	Tabs              []Tab                    `json:"tabs"`
	Filter            models.FilterState       `json:"filter"`
	Items             []models.CatalogItem     `json:"items"`
	LegacyItems       []models.CatalogItem     `json:"legacyItems"`
	Selection         models.SelectionResult   `json:"selection"`
	Favorites         []string                 `json:"favorites"`
	Loading           bool                     `json:"loading"`
	FetchingNext      bool                     `json:"fetchingNext"`
	HasMore           bool                     `json:"hasMore"`
	LoadError         string                   `json:"loadError,omitempty"`
	Notices           []Notice                 `json:"notices,omitempty"`
}

// Panel is one selection panel instance. All state changes go through its
// methods; remote fetches run without the lock and are tagged with a
// generation so superseded responses are dropped.
type Panel struct {
	mu     sync.Mutex
	cfg    Config
	deps   Deps
	engine *Engine
	log    zerolog.Logger

	filter models.FilterState

	gen          uint64
	loading      bool
	fetchingNext bool
	pages        [][]models.CatalogItem
	nextPage     int
	hasMore      bool
	loadErr      error

	inventory []models.CatalogItem
	invErr    error
	manual    []models.CatalogItem

	state    *SelectionState
	notices  []Notice
	debounce *time.Timer
	lastUsed time.Time
	closed   bool
}

// NewPanel builds a panel on the first tab of the configured treatment.
func NewPanel(cfg Config, deps Deps) *Panel {
	if deps.Resolver == nil {
		deps.Resolver = DefaultResolver()
	}
	if deps.Listener == nil {
		deps.Listener = NopListener{}
	}
	if cfg.SearchDebounce < 0 {
		cfg.SearchDebounce = 0
	}
	return &Panel{
		cfg:      cfg,
		deps:     deps,
		engine:   NewEngine(deps.Resolver),
		log:      deps.Logger.With().Str("panel_id", cfg.PanelID).Logger(),
		filter:   models.DefaultFilterState(deps.Resolver.DefaultTab(cfg.TreatmentCategory)),
		state:    NewSelectionState(),
		lastUsed: time.Now(),
	}
}

// ID returns the panel id.
func (p *Panel) ID() string { return p.cfg.PanelID }

// Owner returns the user the panel belongs to.
func (p *Panel) Owner() string { return p.cfg.Owner }

// Open loads favorites, the full inventory and the first remote page in
// parallel. Catalog failures are recorded on the panel and rendered as an
// empty state; only a favorites store failure is returned.
func (p *Panel) Open(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if p.deps.Favorites != nil {
		g.Go(func() error { return p.deps.Favorites.Load(gctx) })
	}
	g.Go(func() error {
		p.loadInventory(gctx)
		return nil
	})
	g.Go(func() error {
		_ = p.Reload(gctx)
		return nil
	})

	return g.Wait()
}

func (p *Panel) loadInventory(ctx context.Context) {
	items, err := p.deps.Source.FetchInventory(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.log.Warn().Err(err).Msg("inventory fetch failed")
		p.invErr = err
		return
	}
	p.invErr = nil
	p.inventory = items
	p.autoSelectLocked(ctx)
}

// Reload starts a new generation and fetches the first page for the active
// tab. Any response of an older generation that arrives later is ignored.
func (p *Panel) Reload(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.gen++
	gen := p.gen
	q, remote := p.catalogQueryLocked()
	p.fetchingNext = false
	if !remote {
		p.loading = false
		p.pages = nil
		p.hasMore = false
		p.loadErr = nil
		p.autoSelectLocked(ctx)
		p.mu.Unlock()
		return nil
	}
	p.loading = true
	p.mu.Unlock()

	page, err := p.deps.Source.FetchPage(ctx, q, 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		p.log.Debug().Uint64("gen", gen).Uint64("current", p.gen).Msg("discarding stale page")
		return nil
	}
	p.loading = false
	if err != nil {
		p.log.Warn().Err(err).Msg("catalog fetch failed")
		p.pages = nil
		p.hasMore = false
		p.loadErr = err
		return fmt.Errorf("fetch first page: %w", err)
	}
	p.loadErr = nil
	p.pages = [][]models.CatalogItem{page.Items}
	p.nextPage = 2
	p.hasMore = page.HasMore
	p.autoSelectLocked(ctx)
	return nil
}

// LoadMore fetches the next page. Pages are strictly sequential: it is
// refused while any fetch is in flight.
func (p *Panel) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	if p.loading || p.fetchingNext {
		p.mu.Unlock()
		return ErrFetchInFlight
	}
	if !p.hasMore {
		p.mu.Unlock()
		return ErrNoMorePages
	}
	gen := p.gen
	pageNo := p.nextPage
	q, _ := p.catalogQueryLocked()
	p.fetchingNext = true
	p.lastUsed = time.Now()
	p.mu.Unlock()

	page, err := p.deps.Source.FetchPage(ctx, q, pageNo)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return nil
	}
	p.fetchingNext = false
	if err != nil {
		p.log.Warn().Err(err).Int("page", pageNo).Msg("next page fetch failed")
		p.loadErr = err
		return fmt.Errorf("fetch page %d: %w", pageNo, err)
	}
	p.pages = append(p.pages, page.Items)
	p.nextPage = pageNo + 1
	p.hasMore = page.HasMore
	p.autoSelectLocked(ctx)
	return nil
}

// SetTreatmentCategory switches treatment. The filter is reset to defaults on
// the new treatment's first tab so nothing leaks across treatments.
func (p *Panel) SetTreatmentCategory(ctx context.Context, tc models.TreatmentCategory) error {
	p.mu.Lock()
	p.stopDebounceLocked()
	p.cfg.TreatmentCategory = tc
	p.filter = models.DefaultFilterState(p.deps.Resolver.DefaultTab(tc))
	p.lastUsed = time.Now()
	p.mu.Unlock()

	p.log.Debug().Str("treatment", string(tc)).Msg("treatment changed, filter reset")
	return p.Reload(ctx)
}

// SetTab activates a tab offered by the current treatment.
func (p *Panel) SetTab(ctx context.Context, tab models.SelectionCategory) error {
	p.mu.Lock()
	if !tab.Valid() {
		p.mu.Unlock()
		return ErrInvalidCategory
	}
	if !p.deps.Resolver.HasTab(p.cfg.TreatmentCategory, tab) {
		p.mu.Unlock()
		return ErrTabNotOffered
	}
	if p.filter.ActiveTab == tab {
		p.mu.Unlock()
		return nil
	}
	p.stopDebounceLocked()
	p.filter.ActiveTab = tab
	p.lastUsed = time.Now()
	p.mu.Unlock()

	return p.Reload(ctx)
}

// ApplyFilter updates the filter. Search changes are debounced, vendor
// changes refetch immediately (the remote source filters vendors), and the
// remaining predicates are client-side only.
func (p *Panel) ApplyFilter(ctx context.Context, patch FilterPatch) error {
	p.mu.Lock()
	p.lastUsed = time.Now()

	searchChanged := patch.Search != nil && *patch.Search != p.filter.Search
	vendorChanged := patch.VendorID != nil && *patch.VendorID != p.filter.VendorID

	if patch.Search != nil {
		p.filter.Search = *patch.Search
	}
	if patch.VendorID != nil {
		p.filter.VendorID = *patch.VendorID
		if *patch.VendorID == "" {
			p.filter.VendorName = ""
		}
	}
	if patch.VendorName != nil {
		p.filter.VendorName = *patch.VendorName
	}
	if patch.CollectionID != nil {
		p.filter.CollectionID = *patch.CollectionID
	}
	if patch.Tags != nil {
		p.filter.Tags = append([]string{}, (*patch.Tags)...)
	}
	if patch.PriceGroup != nil {
		p.filter.PriceGroup = *patch.PriceGroup
	}
	if patch.QuickTypes != nil {
		p.filter.QuickTypes = append([]string{}, (*patch.QuickTypes)...)
	}
	if patch.FavoritesOnly != nil {
		p.filter.FavoritesOnly = *patch.FavoritesOnly
	}

	if searchChanged {
		p.scheduleSearchLocked()
		p.mu.Unlock()
		return nil
	}
	if vendorChanged {
		p.mu.Unlock()
		return p.Reload(ctx)
	}

	p.autoSelectLocked(ctx)
	p.mu.Unlock()
	return nil
}

// scheduleSearchLocked debounces a reload. The generation is bumped at once
// so any response still in flight for the previous term is discarded.
func (p *Panel) scheduleSearchLocked() {
	p.stopDebounceLocked()
	p.gen++
	p.loading = true
	p.fetchingNext = false

	if p.cfg.SearchDebounce == 0 {
		go p.Reload(context.Background())
		return
	}
	p.debounce = time.AfterFunc(p.cfg.SearchDebounce, func() {
		_ = p.Reload(context.Background())
	})
}

func (p *Panel) stopDebounceLocked() {
	if p.debounce != nil {
		p.debounce.Stop()
		p.debounce = nil
	}
}

// Click toggles itemID on the active tab: select when not selected,
// deselect when it is the current item of its slot.
func (p *Panel) Click(ctx context.Context, itemID string) (Change, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsed = time.Now()

	item, ok := p.findLocked(itemID)
	if !ok {
		return Change{}, ErrItemNotFound
	}
	change := p.state.Click(p.filter.ActiveTab, item)
	p.afterChangeLocked(ctx, change)
	return change, nil
}

// SelectRecent re-selects an item from the recent list into its natural slot.
func (p *Panel) SelectRecent(ctx context.Context, itemID string) (Change, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsed = time.Now()

	item, ok := p.findLocked(itemID)
	if !ok {
		return Change{}, ErrItemNotFound
	}
	change := p.state.Select(p.slotForLocked(item), item)
	p.afterChangeLocked(ctx, change)
	return change, nil
}

// SelectItem selects an item fetched outside the loaded lists, such as a
// recent selection that is no longer on any loaded page.
func (p *Panel) SelectItem(ctx context.Context, item models.CatalogItem) Change {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsed = time.Now()

	if _, ok := p.findLocked(item.ID); !ok {
		p.manual = append(p.manual, item)
	}
	change := p.state.Select(p.slotForLocked(item), item)
	p.afterChangeLocked(ctx, change)
	return change
}

// Deselect clears slot. Deselecting an empty slot is a no-op.
func (p *Panel) Deselect(slot models.SelectionCategory) (Change, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsed = time.Now()

	change, ok := p.state.Deselect(slot)
	if ok {
		change.Notify(p.deps.Listener)
	}
	return change, ok
}

// AddManual validates an ad-hoc entry and selects it into slot. Invalid
// entries are rejected without touching the selection.
func (p *Panel) AddManual(ctx context.Context, slot models.SelectionCategory, entry ManualEntry) (models.CatalogItem, error) {
	if slot == models.SelectionBoth || !slot.Valid() {
		slot = models.SelectionFabric
	}
	item, err := entry.Item(slot)
	if err != nil {
		return models.CatalogItem{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsed = time.Now()
	p.manual = append(p.manual, item)
	change := p.state.Select(slot, item)
	p.afterChangeLocked(ctx, change)
	return item, nil
}

// ToggleFavorite flips the favorite flag of itemID.
func (p *Panel) ToggleFavorite(ctx context.Context, itemID string) (bool, error) {
	if p.deps.Favorites == nil {
		return false, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsed = time.Now()
	return p.deps.Favorites.Toggle(ctx, itemID)
}

// ReloadFavorites refreshes the cached favorites from the store, picking up
// toggles made outside this panel.
func (p *Panel) ReloadFavorites(ctx context.Context) error {
	if p.deps.Favorites == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deps.Favorites.Load(ctx)
}

// Candidates returns the engine output for the active tab.
func (p *Panel) Candidates() []models.CatalogItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.candidatesLocked()
}

// Displayed returns the candidates after the favorites-only overlay.
func (p *Panel) Displayed() []models.CatalogItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.displayedLocked()
}

// Selection returns a copy of the current selection.
func (p *Panel) Selection() models.SelectionResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Result()
}

// Filter returns the current filter.
func (p *Panel) Filter() models.FilterState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

// EstimateCost previews the cost of itemID in the slot it would occupy.
func (p *Panel) EstimateCost(itemID string) (decimal.Decimal, models.SelectionCategory, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	item, ok := p.findLocked(itemID)
	if !ok {
		return decimal.Zero, "", ErrItemNotFound
	}
	slot := p.slotForLocked(item)
	return EstimateCost(slot, item, p.cfg.Measurements), slot, nil
}

// Treatment returns the treatment type and category the panel is configured for.
func (p *Panel) Treatment() (string, models.TreatmentCategory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.TreatmentType, p.cfg.TreatmentCategory
}

// SetMeasurements replaces the measurement context used for cost previews.
func (p *Panel) SetMeasurements(m models.Measurements) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.Measurements = m
}

// Measurements returns the measurement context.
func (p *Panel) Measurements() models.Measurements {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.Measurements
}

// Snapshot renders the panel state and drains pending notices.
func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	q := p.queryLocked()
	src := p.sourcesLocked()
	snap := Snapshot{
		ID:                p.cfg.PanelID,
		TreatmentType:     p.cfg.TreatmentType,
		TreatmentCategory: p.cfg.TreatmentCategory,
		Tabs:              p.deps.Resolver.Tabs(p.cfg.TreatmentCategory),
		Filter:            p.filter,
		Items:             p.displayedLocked(),
		LegacyItems:       p.engine.LegacyItems(q, src),
		Selection:         p.state.Result(),
		Favorites:         []string{},
		Loading:           p.loading,
		FetchingNext:      p.fetchingNext,
		HasMore:           p.hasMore,
		Notices:           p.notices,
	}
	if p.deps.Favorites != nil {
		snap.Favorites = p.deps.Favorites.Set().IDs()
	}
	if p.loadErr != nil || p.invErr != nil {
		snap.LoadError = "Catalog is unavailable right now. Showing nothing until it loads."
	}
	p.notices = nil
	return snap
}

// LastUsed reports when the panel was last touched.
func (p *Panel) LastUsed() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUsed
}

// Close stops pending debounced fetches; later responses are ignored.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopDebounceLocked()
	p.closed = true
	p.gen++
}

func (p *Panel) afterChangeLocked(ctx context.Context, change Change) {
	if change.Selected && p.deps.Recents != nil {
		if _, err := p.deps.Recents.Add(ctx, change.Item); err != nil {
			p.log.Warn().Err(err).Str("item_id", change.Item.ID).Msg("recent selection not recorded")
		}
	}
	change.Notify(p.deps.Listener)
}

// autoSelectLocked is the auto-select overlay. Conditions are evaluated and
// applied under the same lock, so a candidate set that changed in between
// cannot be acted on.
func (p *Panel) autoSelectLocked(ctx context.Context) {
	cands := p.candidatesLocked()
	in := AutoSelectInput{
		Loading:         p.loading,
		Refetching:      p.fetchingNext,
		ParentProductID: p.cfg.ParentProductID,
		Candidates:      cands,
	}
	if len(cands) == 1 {
		if cur, ok := p.state.Get(SlotFor(p.filter.ActiveTab, cands[0])); ok {
			in.Current = &cur
		}
	}
	item, ok := ShouldAutoSelect(in)
	if !ok {
		return
	}
	change := p.state.Click(p.filter.ActiveTab, item)
	p.afterChangeLocked(ctx, change)
	p.notices = append(p.notices, Notice{
		Level:   "success",
		Message: fmt.Sprintf("Auto-selected %s", item.Name),
		At:      time.Now(),
	})
	p.log.Info().Str("item_id", item.ID).Str("slot", string(change.Category)).Msg("auto-selected single candidate")
}

func (p *Panel) queryLocked() Query {
	return Query{
		Category:        p.filter.ActiveTab,
		Treatment:       p.cfg.TreatmentCategory,
		ParentProductID: p.cfg.ParentProductID,
		Filter:          p.filter,
	}
}

func (p *Panel) sourcesLocked() Sources {
	var remote []models.CatalogItem
	for _, page := range p.pages {
		remote = append(remote, page...)
	}
	return Sources{Remote: remote, Inventory: p.inventory}
}

func (p *Panel) candidatesLocked() []models.CatalogItem {
	return p.engine.Candidates(p.queryLocked(), p.sourcesLocked())
}

func (p *Panel) displayedLocked() []models.CatalogItem {
	set := models.NewFavoriteSet()
	if p.deps.Favorites != nil {
		set = p.deps.Favorites.Set()
	}
	return ApplyFavorites(p.candidatesLocked(), set, p.filter.FavoritesOnly)
}

// catalogQueryLocked builds the remote query for the active tab. remote is
// false for tabs served from the inventory alone.
func (p *Panel) catalogQueryLocked() (CatalogQuery, bool) {
	q := ScopeQuery(p.deps.Resolver, p.cfg.TreatmentCategory, p.filter.ActiveTab)
	q.Search = p.filter.Search
	q.VendorID = p.filter.VendorID
	q.ParentProductID = p.cfg.ParentProductID
	q.TemplateID = p.cfg.TemplateID
	q.PageSize = p.cfg.PageSize
	return q, len(q.Categories) > 0
}

func (p *Panel) findLocked(id string) (models.CatalogItem, bool) {
	for _, page := range p.pages {
		for _, it := range page {
			if it.ID == id {
				return it, true
			}
		}
	}
	for _, list := range [][]models.CatalogItem{p.inventory, p.manual} {
		for _, it := range list {
			if it.ID == id {
				return it, true
			}
		}
	}
	return models.CatalogItem{}, false
}

// slotForLocked picks the slot for item: the active tab when the item belongs
// there, otherwise the slot matching the item's own type.
func (p *Panel) slotForLocked(item models.CatalogItem) models.SelectionCategory {
	var natural models.SelectionCategory
	switch item.Variant().(type) {
	case models.MaterialItem:
		natural = models.SelectionMaterial
	case models.HardwareItem:
		natural = models.SelectionHardware
	default:
		natural = models.SelectionFabric
	}
	for _, c := range Constituents(p.filter.ActiveTab) {
		if c == natural {
			return natural
		}
	}
	if p.cfg.ParentProductID != "" && p.filter.ActiveTab != models.SelectionBoth {
		return p.filter.ActiveTab
	}
	return natural
}
