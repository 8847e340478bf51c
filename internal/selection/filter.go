package selection

import (
	"sort"
	"strings"

	"github.com/GTDGit/drapery_api/internal/models"
)

// Query is everything the engine needs to know about one tab.
type Query struct {
	Category        models.SelectionCategory
	Treatment       models.TreatmentCategory
	ParentProductID string
	Filter          models.FilterState
}

// Sources are the lists the engine filters. Remote is the flattened,
// server-scoped page list; Inventory is the unfiltered full list.
type Sources struct {
	Remote    []models.CatalogItem
	Inventory []models.CatalogItem
}

// Engine computes candidate lists. It holds no mutable state.
type Engine struct {
	resolver *Resolver
}

// NewEngine builds an Engine over r.
func NewEngine(r *Resolver) *Engine {
	return &Engine{resolver: r}
}

// Candidates returns the ordered items to render for q. Inputs are never mutated.
func (e *Engine) Candidates(q Query, src Sources) []models.CatalogItem {
	var out []models.CatalogItem

	switch q.Category {
	case models.SelectionFabric:
		out = e.fabricPath(q, src, false)
	case models.SelectionMaterial:
		out = e.materialPath(q, src)
	case models.SelectionHardware:
		out = e.hardwarePath(q, src)
	case models.SelectionBoth:
		if q.ParentProductID != "" {
			// Parent-scoped lists are already the exact linked set.
			out = filterItems(src.Remote, func(it models.CatalogItem) bool {
				return passesClientPredicates(it, q.Filter)
			})
			break
		}
		out = unionByID(e.fabricPath(q, src, true), e.materialPath(q, src))
	default:
		return []models.CatalogItem{}
	}

	if strings.TrimSpace(q.Filter.Search) != "" {
		SortByRelevance(out, q.Filter.Search)
	}
	return out
}

// LegacyItems returns the items of the active tab's constituents that lack a
// subcategory and are therefore left out of subcategory-filtered views.
func (e *Engine) LegacyItems(q Query, src Sources) []models.CatalogItem {
	if q.ParentProductID != "" {
		return []models.CatalogItem{}
	}

	var lists [][]models.CatalogItem
	for _, c := range Constituents(q.Category) {
		switch c {
		case models.SelectionFabric:
			lists = append(lists, filterItems(src.Remote, func(it models.CatalogItem) bool {
				_, ok := it.Variant().(models.FabricItem)
				return ok && it.IsLegacy()
			}))
		case models.SelectionMaterial:
			source, fromInventory := materialSource(src)
			lists = append(lists, filterItems(source, func(it models.CatalogItem) bool {
				if _, ok := it.Variant().(models.MaterialItem); !ok || !it.IsLegacy() {
					return false
				}
				return !fromInventory || (matchesVendor(it, q.Filter) && matchesSearch(it, q.Filter))
			}))
		}
	}
	return unionByID(lists...)
}

func (e *Engine) fabricPath(q Query, src Sources, fabricOnly bool) []models.CatalogItem {
	scoped := q.ParentProductID == ""
	return filterItems(src.Remote, func(it models.CatalogItem) bool {
		if fabricOnly {
			if _, ok := it.Variant().(models.FabricItem); !ok {
				return false
			}
		}
		if scoped && it.IsLegacy() {
			return false
		}
		return passesClientPredicates(it, q.Filter)
	})
}

func (e *Engine) materialPath(q Query, src Sources) []models.CatalogItem {
	if q.ParentProductID != "" {
		return filterItems(src.Remote, func(it models.CatalogItem) bool {
			return passesClientPredicates(it, q.Filter)
		})
	}

	accepted := make(map[string]struct{})
	for _, s := range e.resolver.MaterialSubcategories(q.Treatment) {
		accepted[strings.ToLower(s)] = struct{}{}
	}

	source, fromInventory := materialSource(src)
	return filterItems(source, func(it models.CatalogItem) bool {
		if !it.Category.IsMaterialType() || it.IsLegacy() {
			return false
		}
		if _, ok := accepted[strings.ToLower(it.Subcategory)]; !ok {
			return false
		}
		// The remote list already applied vendor and search server-side.
		if fromInventory && !(matchesVendor(it, q.Filter) && matchesSearch(it, q.Filter)) {
			return false
		}
		return passesClientPredicates(it, q.Filter)
	})
}

func (e *Engine) hardwarePath(q Query, src Sources) []models.CatalogItem {
	return filterItems(src.Inventory, func(it models.CatalogItem) bool {
		if _, ok := it.Variant().(models.HardwareItem); !ok {
			return false
		}
		return matchesVendor(it, q.Filter) && matchesSearch(it, q.Filter) && passesClientPredicates(it, q.Filter)
	})
}

// materialSource picks the enriched remote list when it has rows and falls
// back to the full inventory otherwise.
func materialSource(src Sources) (items []models.CatalogItem, fromInventory bool) {
	if len(src.Remote) > 0 {
		return src.Remote, false
	}
	return src.Inventory, true
}

// passesClientPredicates applies collection, tag, price group and quick type
// predicates, all AND-combined.
func passesClientPredicates(it models.CatalogItem, f models.FilterState) bool {
	return matchesCollection(it, f) && matchesTags(it, f) && matchesPriceGroup(it, f) && matchesQuickTypes(it, f)
}

func matchesCollection(it models.CatalogItem, f models.FilterState) bool {
	return f.CollectionID == "" || it.CollectionRef() == f.CollectionID
}

// matchesTags passes when any selected tag is on the item.
func matchesTags(it models.CatalogItem, f models.FilterState) bool {
	if len(f.Tags) == 0 {
		return true
	}
	for _, t := range f.Tags {
		if it.HasTag(t) {
			return true
		}
	}
	return false
}

func matchesPriceGroup(it models.CatalogItem, f models.FilterState) bool {
	return f.PriceGroup == "" || strings.EqualFold(it.PriceGroupLabel(), f.PriceGroup)
}

// matchesQuickTypes passes only when every selected quick type is on the item.
func matchesQuickTypes(it models.CatalogItem, f models.FilterState) bool {
	for _, t := range f.QuickTypes {
		if !it.HasTag(t) {
			return false
		}
	}
	return true
}

func matchesVendor(it models.CatalogItem, f models.FilterState) bool {
	if f.VendorID == "" {
		return true
	}
	if it.VendorRef() == f.VendorID {
		return true
	}
	return f.VendorName != "" && strings.EqualFold(strings.TrimSpace(it.Supplier), f.VendorName)
}

func matchesSearch(it models.CatalogItem, f models.FilterState) bool {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Name), term) ||
		strings.Contains(strings.ToLower(it.Supplier), term)
}

// SortByRelevance orders items whose name starts with term first, then the
// rest; each tier is alphabetical by name. Comparison is case-insensitive.
func SortByRelevance(items []models.CatalogItem, term string) {
	term = strings.ToLower(strings.TrimSpace(term))
	sort.SliceStable(items, func(i, j int) bool {
		ni, nj := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		pi, pj := strings.HasPrefix(ni, term), strings.HasPrefix(nj, term)
		if pi != pj {
			return pi
		}
		return ni < nj
	})
}

func filterItems(items []models.CatalogItem, keep func(models.CatalogItem) bool) []models.CatalogItem {
	out := make([]models.CatalogItem, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func unionByID(lists ...[]models.CatalogItem) []models.CatalogItem {
	seen := make(map[string]struct{})
	var out []models.CatalogItem
	for _, list := range lists {
		for _, it := range list {
			if _, ok := seen[it.ID]; ok {
				continue
			}
			seen[it.ID] = struct{}{}
			out = append(out, it)
		}
	}
	if out == nil {
		out = []models.CatalogItem{}
	}
	return out
}
