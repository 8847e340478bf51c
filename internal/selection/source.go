package selection

import (
	"context"

	"github.com/GTDGit/drapery_api/internal/models"
)

// CatalogQuery scopes one remote fetch.
type CatalogQuery struct {
	Treatment       models.TreatmentCategory
	Tab             models.SelectionCategory
	Categories      []models.ItemCategory
	Subcategories   []string
	Search          string
	VendorID        string
	ParentProductID string
	TemplateID      string
	PageSize        int
}

// Page is one page of remote results.
type Page struct {
	Items   []models.CatalogItem
	Page    int
	HasMore bool
}

// CatalogSource is the remote catalog collaborator: a paginated,
// server-scoped fetch and an unfiltered inventory fetch.
type CatalogSource interface {
	FetchPage(ctx context.Context, q CatalogQuery, page int) (Page, error)
	FetchInventory(ctx context.Context) ([]models.CatalogItem, error)
}

// ScopeQuery returns the server-side scope of tab for treatment tc: the
// catalog categories and accepted subcategories. Categories is empty for
// tabs served from the inventory only.
func ScopeQuery(r *Resolver, tc models.TreatmentCategory, tab models.SelectionCategory) CatalogQuery {
	return CatalogQuery{
		Treatment:     tc,
		Tab:           tab,
		Categories:    remoteCategories(tab),
		Subcategories: r.Subcategories(tc, tab),
	}
}

// remoteCategories lists the catalog categories the remote list is scoped to
// for tab. A nil result means the tab is served from the inventory only.
func remoteCategories(tab models.SelectionCategory) []models.ItemCategory {
	var out []models.ItemCategory
	for _, c := range Constituents(tab) {
		switch c {
		case models.SelectionFabric:
			out = append(out, models.ItemCategoryFabric)
		case models.SelectionMaterial:
			out = append(out, models.ItemCategoryMaterial, models.ItemCategoryHardCoverings)
		}
	}
	return out
}
