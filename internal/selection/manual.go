package selection

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/drapery_api/internal/models"
)

// ManualEntry is an ad-hoc item typed in by the user when the catalog has no match.
type ManualEntry struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Supplier string          `json:"supplier"`
	Color    string          `json:"color"`
	Unit     string          `json:"unit"`
}

// Validate rejects entries missing a name or a positive price.
func (m ManualEntry) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrManualEntryName
	}
	if !m.Price.IsPositive() {
		return ErrManualEntryPrice
	}
	return nil
}

// Item converts a valid entry into a catalog item for slot.
func (m ManualEntry) Item(slot models.SelectionCategory) (models.CatalogItem, error) {
	if err := m.Validate(); err != nil {
		return models.CatalogItem{}, err
	}
	category := models.ItemCategoryFabric
	switch slot {
	case models.SelectionMaterial:
		category = models.ItemCategoryMaterial
	case models.SelectionHardware:
		category = models.ItemCategoryHardware
	}
	return models.CatalogItem{
		ID:           "manual-" + uuid.New().String(),
		Name:         strings.TrimSpace(m.Name),
		Category:     category,
		Supplier:     m.Supplier,
		Color:        m.Color,
		Unit:         m.Unit,
		SellingPrice: m.Price,
		UnitPrice:    m.Price,
		Tags:         []string{},
		IsActive:     true,
	}, nil
}
