package selection

import "github.com/GTDGit/drapery_api/internal/models"

// AutoSelectInput is the state the auto-select overlay inspects.
type AutoSelectInput struct {
	Loading         bool
	Refetching      bool
	ParentProductID string
	Candidates      []models.CatalogItem
	Current         *models.CatalogItem
}

// ShouldAutoSelect returns the single candidate to pick for a template-linked
// panel. It never fires while data is loading, when the slot is already
// filled, for free-browsing panels, or when the choice is ambiguous.
func ShouldAutoSelect(in AutoSelectInput) (models.CatalogItem, bool) {
	if in.Loading || in.Refetching {
		return models.CatalogItem{}, false
	}
	if in.ParentProductID == "" || in.Current != nil {
		return models.CatalogItem{}, false
	}
	if len(in.Candidates) != 1 {
		return models.CatalogItem{}, false
	}
	return in.Candidates[0], true
}
