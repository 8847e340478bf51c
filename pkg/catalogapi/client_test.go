package catalogapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/drapery_api/internal/models"
)

func writeEnvelope(w http.ResponseWriter, code int, data interface{}, page, totalPages int) {
	body := map[string]interface{}{
		"success": code < 300,
		"code":    code,
		"message": "ok",
		"data":    data,
		"meta":    map[string]interface{}{"requestId": "abc"},
	}
	if totalPages > 0 {
		body["meta"] = map[string]interface{}{
			"pagination": map[string]int{"page": page, "limit": 2, "totalItems": 3, "totalPages": totalPages},
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_ListItemsSendsScope(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		writeEnvelope(w, 200, []models.CatalogItem{{ID: "f1", Name: "Linen"}}, 1, 2)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret")
	page, err := c.ListItems(context.Background(), ListParams{
		Categories:    []string{"material", "hard_coverings"},
		Subcategories: []string{"timber_slats"},
		Search:        "oak",
		Page:          1,
		Limit:         500,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.HasMore())

	require.NotNil(t, got)
	assert.Equal(t, "/v1/catalog/items", got.URL.Path)
	assert.Equal(t, "Bearer secret", got.Header.Get("Authorization"))
	q := got.URL.Query()
	assert.Equal(t, "material,hard_coverings", q.Get("category"))
	assert.Equal(t, "timber_slats", q.Get("subcategory"))
	assert.Equal(t, "oak", q.Get("search"))
	assert.Equal(t, strconv.Itoa(MaxPageSize), q.Get("limit"))
	assert.Empty(t, q.Get("vendorId"))
}

func TestClient_AllItemsWalksPages(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			writeEnvelope(w, 200, []models.CatalogItem{{ID: "a"}, {ID: "b"}}, 1, 2)
		default:
			writeEnvelope(w, 200, []models.CatalogItem{{ID: "c"}}, 2, 2)
		}
	}))
	defer srv.Close()

	items, err := NewClient(srv.URL, "").AllItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, 2, calls)
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/catalog/items/missing" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"code":404,"message":"Catalog item not found","error":{"code":"ITEM_NOT_FOUND","message":"Catalog item not found"}}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "")

	_, err := c.GetItem(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ITEM_NOT_FOUND", apiErr.Code)

	_, err = c.ListItems(context.Background(), ListParams{})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_GetItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 200, models.CatalogItem{ID: "f1", Name: "Linen", Category: models.ItemCategoryFabric}, 0, 0)
	}))
	defer srv.Close()

	item, err := NewClient(srv.URL, "").GetItem(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "Linen", item.Name)
	assert.Equal(t, models.ItemCategoryFabric, item.Category)
}
