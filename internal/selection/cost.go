package selection

import (
	"github.com/shopspring/decimal"

	"github.com/GTDGit/drapery_api/internal/models"
)

// EstimateCost previews the cost of item in slot for the given measurements.
// Fabric is priced on the drop (height), hardware on the width, material on
// the area, all in metres.
func EstimateCost(slot models.SelectionCategory, item models.CatalogItem, m models.Measurements) decimal.Decimal {
	price := item.EffectivePrice()
	width := decimal.NewFromFloat(m.Metres(m.Width))
	height := decimal.NewFromFloat(m.Metres(m.Height))

	var qty decimal.Decimal
	switch slot {
	case models.SelectionFabric:
		qty = height
	case models.SelectionHardware:
		qty = width
	case models.SelectionMaterial:
		qty = width.Mul(height)
	default:
		return decimal.Zero
	}
	return price.Mul(qty).Round(2)
}
