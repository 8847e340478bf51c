package models

// Variant is the typed view of a CatalogItem. Exactly one of FabricItem,
// MaterialItem and HardwareItem implements it for any given item.
type Variant interface {
	Base() CatalogItem
	isVariant()
}

// FabricItem is a soft-furnishing fabric sold by length.
type FabricItem struct {
	CatalogItem
}

// MaterialItem is a hard material (slats, vanes, shutter panels, wallcovering).
type MaterialItem struct {
	CatalogItem
	// HardCovering is set for items catalogued as hard_coverings.
	HardCovering bool
}

// HardwareItem is a track, rod or motor sold by width.
type HardwareItem struct {
	CatalogItem
}

func (f FabricItem) Base() CatalogItem   { return f.CatalogItem }
func (m MaterialItem) Base() CatalogItem { return m.CatalogItem }
func (h HardwareItem) Base() CatalogItem { return h.CatalogItem }

func (FabricItem) isVariant()   {}
func (MaterialItem) isVariant() {}
func (HardwareItem) isVariant() {}

// Variant classifies the item by category. Unknown categories are treated
// as fabric, which is how untyped rows were historically stored.
func (i CatalogItem) Variant() Variant {
	switch i.Category {
	case ItemCategoryMaterial:
		return MaterialItem{CatalogItem: i}
	case ItemCategoryHardCoverings:
		return MaterialItem{CatalogItem: i, HardCovering: true}
	case ItemCategoryHardware:
		return HardwareItem{CatalogItem: i}
	default:
		return FabricItem{CatalogItem: i}
	}
}
