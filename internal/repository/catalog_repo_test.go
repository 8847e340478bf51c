package repository

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCatalogWhere_SubcategoriesIgnoreCase(t *testing.T) {
	where, args := buildCatalogWhere(&CatalogFilter{
		Categories:    []string{"material", "hard_coverings"},
		Subcategories: []string{"ALUMINIUM_SLATS", " Timber_Slats "},
	})

	assert.Contains(t, where, "lower(c.subcategory) = ANY($2)")
	assert.Contains(t, where, "btrim(c.subcategory) = ''")
	require.Len(t, args, 2)
	assert.Equal(t, (*pq.StringArray)(&[]string{"material", "hard_coverings"}), args[0])
	assert.Equal(t, (*pq.StringArray)(&[]string{"aluminium_slats", "timber_slats"}), args[1])
}

func TestBuildCatalogWhere_SearchIsLiteral(t *testing.T) {
	where, args := buildCatalogWhere(&CatalogFilter{Search: `50%_off\`, VendorID: "v1"})

	assert.Contains(t, where, "c.name ILIKE $1 OR c.supplier ILIKE $1")
	assert.Contains(t, where, "c.vendor_id::text = $2")
	require.Len(t, args, 2)
	assert.Equal(t, `%50\%\_off\\%`, args[0])
	assert.Equal(t, "v1", args[1])
}

func TestBuildCatalogWhere_ParentScopeSkipsCategories(t *testing.T) {
	where, args := buildCatalogWhere(&CatalogFilter{
		ParentProductID: "p1",
		Categories:      []string{"fabric"},
		Subcategories:   []string{"curtain_fabric"},
	})

	assert.Contains(t, where, "c.parent_product_id::text = $1")
	assert.NotContains(t, where, "subcategory")
	assert.Equal(t, []interface{}{"p1"}, args)
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"linen":     "linen",
		"100%":      `100\%`,
		"a_b":       `a\_b`,
		`back\path`: `back\\path`,
	}
	for in, want := range tests {
		assert.Equal(t, want, escapeLike(in), in)
	}
}
