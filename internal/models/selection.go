package models

import (
	"sort"
	"time"
)

// TreatmentCategory is the class of window covering being configured.
type TreatmentCategory string

const (
	TreatmentCurtains       TreatmentCategory = "curtains"
	TreatmentRomanBlinds    TreatmentCategory = "roman_blinds"
	TreatmentRollerBlinds   TreatmentCategory = "roller_blinds"
	TreatmentVenetianBlinds TreatmentCategory = "venetian_blinds"
	TreatmentVerticalBlinds TreatmentCategory = "vertical_blinds"
	TreatmentCellularBlinds TreatmentCategory = "cellular_blinds"
	TreatmentPanelGlide     TreatmentCategory = "panel_glide"
	TreatmentShutters       TreatmentCategory = "shutters"
	TreatmentAwnings        TreatmentCategory = "awnings"
	TreatmentWallpaper      TreatmentCategory = "wallpaper"
)

// SelectionCategory names a tab or slot in the selection panel.
type SelectionCategory string

const (
	SelectionFabric   SelectionCategory = "fabric"
	SelectionMaterial SelectionCategory = "material"
	SelectionHardware SelectionCategory = "hardware"
	// SelectionBoth is the composite fabric+material tab of vertical blinds.
	SelectionBoth SelectionCategory = "both"
)

// Valid reports whether c is a known selection category.
func (c SelectionCategory) Valid() bool {
	switch c {
	case SelectionFabric, SelectionMaterial, SelectionHardware, SelectionBoth:
		return true
	}
	return false
}

// FilterState holds the user's current filter selections for one panel.
type FilterState struct {
	Search        string            `json:"search"`
	VendorID      string            `json:"vendorId,omitempty"`
	VendorName    string            `json:"vendorName,omitempty"`
	CollectionID  string            `json:"collectionId,omitempty"`
	Tags          []string          `json:"tags"`
	PriceGroup    string            `json:"priceGroup,omitempty"`
	QuickTypes    []string          `json:"quickTypes"`
	FavoritesOnly bool              `json:"favoritesOnly"`
	ActiveTab     SelectionCategory `json:"activeTab"`
}

// DefaultFilterState returns an empty filter on the given tab.
func DefaultFilterState(tab SelectionCategory) FilterState {
	return FilterState{
		Tags:       []string{},
		QuickTypes: []string{},
		ActiveTab:  tab,
	}
}

// IsEmpty reports whether no narrowing predicate is active.
func (f FilterState) IsEmpty() bool {
	return f.Search == "" && f.VendorID == "" && f.CollectionID == "" &&
		len(f.Tags) == 0 && f.PriceGroup == "" && len(f.QuickTypes) == 0 && !f.FavoritesOnly
}

// RecentSelection is one entry of the recently-used log.
type RecentSelection struct {
	ItemID     string    `json:"itemId"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	Color      string    `json:"color,omitempty"`
	SelectedAt time.Time `json:"selectedAt"`
}

// FavoriteSet is the set of item ids a user has starred.
type FavoriteSet map[string]struct{}

// NewFavoriteSet builds a set from ids.
func NewFavoriteSet(ids ...string) FavoriteSet {
	s := make(FavoriteSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s FavoriteSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members sorted.
func (s FavoriteSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SelectionResult maps a selection slot to the chosen item.
type SelectionResult map[SelectionCategory]CatalogItem

// Unit is a measurement unit accepted from the editor.
type Unit string

const (
	UnitMM   Unit = "mm"
	UnitCM   Unit = "cm"
	UnitM    Unit = "m"
	UnitInch Unit = "inch"
)

// Measurements carries the window dimensions used for cost previews.
type Measurements struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   Unit    `json:"unit"`
}

// Metres converts v from m.Unit to metres. Unknown units are read as centimetres.
func (m Measurements) Metres(v float64) float64 {
	switch m.Unit {
	case UnitMM:
		return v / 1000
	case UnitM:
		return v
	case UnitInch:
		return v * 0.0254
	default:
		return v / 100
	}
}
