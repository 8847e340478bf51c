package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ItemCategory enumerates the catalog categories an item can belong to.
type ItemCategory string

const (
	ItemCategoryFabric        ItemCategory = "fabric"
	ItemCategoryMaterial      ItemCategory = "material"
	ItemCategoryHardware      ItemCategory = "hardware"
	ItemCategoryHardCoverings ItemCategory = "hard_coverings"
)

// Valid reports whether c is one of the known catalog categories.
func (c ItemCategory) Valid() bool {
	switch c {
	case ItemCategoryFabric, ItemCategoryMaterial, ItemCategoryHardware, ItemCategoryHardCoverings:
		return true
	}
	return false
}

// IsMaterialType reports whether items of this category are selected on the material tab.
func (c ItemCategory) IsMaterialType() bool {
	return c == ItemCategoryMaterial || c == ItemCategoryHardCoverings
}

// CatalogItem is one purchasable fabric, material or hardware unit.
// Fields are tagged for both DB scanning and JSON serialization.
type CatalogItem struct {
	ID              string          `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	Category        ItemCategory    `db:"category" json:"category"`
	Subcategory     string          `db:"subcategory" json:"subcategory"`
	VendorID        *string         `db:"vendor_id" json:"vendorId,omitempty"`
	Supplier        string          `db:"supplier" json:"supplier"`
	CollectionID    *string         `db:"collection_id" json:"collectionId,omitempty"`
	Tags            pq.StringArray  `db:"tags" json:"tags"`
	SellingPrice    decimal.Decimal `db:"selling_price" json:"sellingPrice"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unitPrice"`
	PricePerUnit    decimal.Decimal `db:"price_per_unit" json:"pricePerUnit"`
	PriceGroup      *string         `db:"price_group" json:"priceGroup,omitempty"`
	Quantity        int             `db:"quantity" json:"quantity"`
	TrackInventory  bool            `db:"track_inventory" json:"trackInventory"`
	ParentProductID *string         `db:"parent_product_id" json:"parentProductId,omitempty"`
	ImageURL        string          `db:"image_url" json:"imageUrl"`
	Color           string          `db:"color" json:"color"`
	Unit            string          `db:"unit" json:"unit"`
	FabricWidth     *float64        `db:"fabric_width" json:"fabricWidth,omitempty"`
	IsActive        bool            `db:"is_active" json:"isActive"`
	CreatedAt       time.Time       `db:"created_at" json:"-"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// IsLegacy reports whether the item predates subcategory tagging.
func (i CatalogItem) IsLegacy() bool {
	return strings.TrimSpace(i.Subcategory) == ""
}

// HasTag reports whether the item carries tag, compared case-insensitively.
func (i CatalogItem) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// VendorRef returns the vendor id or an empty string.
func (i CatalogItem) VendorRef() string {
	if i.VendorID == nil {
		return ""
	}
	return *i.VendorID
}

// CollectionRef returns the collection id or an empty string.
func (i CatalogItem) CollectionRef() string {
	if i.CollectionID == nil {
		return ""
	}
	return *i.CollectionID
}

// PriceGroupLabel returns the price group or an empty string.
func (i CatalogItem) PriceGroupLabel() string {
	if i.PriceGroup == nil {
		return ""
	}
	return *i.PriceGroup
}

// ParentRef returns the parent product id or an empty string.
func (i CatalogItem) ParentRef() string {
	if i.ParentProductID == nil {
		return ""
	}
	return *i.ParentProductID
}

// EffectivePrice returns the price used for estimates: price per unit, then
// unit price, then selling price.
func (i CatalogItem) EffectivePrice() decimal.Decimal {
	switch {
	case i.PricePerUnit.IsPositive():
		return i.PricePerUnit
	case i.UnitPrice.IsPositive():
		return i.UnitPrice
	default:
		return i.SellingPrice
	}
}

// Vendor is a supplier of catalog items.
type Vendor struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// Collection groups catalog items of one vendor range.
type Collection struct {
	ID        string    `db:"id" json:"id"`
	VendorID  *string   `db:"vendor_id" json:"vendorId,omitempty"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}
