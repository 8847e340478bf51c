package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/drapery_api/internal/models"
	"github.com/GTDGit/drapery_api/internal/selection"
	"github.com/GTDGit/drapery_api/internal/service"
	"github.com/GTDGit/drapery_api/internal/utils"
)

// CatalogHandler serves catalog browsing, filter options and imports.
type CatalogHandler struct {
	catalog  *service.CatalogService
	options  *service.FilterOptionsService
	imports  *service.ImportService
	resolver *selection.Resolver
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(
	catalog *service.CatalogService,
	options *service.FilterOptionsService,
	imports *service.ImportService,
	resolver *selection.Resolver,
) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, options: options, imports: imports, resolver: resolver}
}

// ListTreatments handles GET /v1/treatments
func (h *CatalogHandler) ListTreatments(c *gin.Context) {
	treatments := h.resolver.Treatments()
	out := make([]gin.H, 0, len(treatments))
	for _, tc := range treatments {
		out = append(out, gin.H{
			"treatmentCategory": tc,
			"tabs":              h.resolver.Tabs(tc),
		})
	}
	utils.Success(c, 200, "Treatments retrieved", out)
}

// ListItems handles GET /v1/catalog/items
func (h *CatalogHandler) ListItems(c *gin.Context) {
	var q selection.CatalogQuery
	if tc := c.Query("treatment"); tc != "" {
		tab := models.SelectionCategory(c.DefaultQuery("tab", string(models.SelectionFabric)))
		if !tab.Valid() {
			utils.Error(c, 400, "INVALID_TAB", "Unknown tab")
			return
		}
		q = selection.ScopeQuery(h.resolver, models.TreatmentCategory(tc), tab)
	} else if cats := c.Query("category"); cats != "" {
		for _, cat := range strings.Split(cats, ",") {
			ic := models.ItemCategory(strings.TrimSpace(cat))
			if !ic.Valid() {
				utils.Error(c, 400, "INVALID_CATEGORY", "Unknown category")
				return
			}
			q.Categories = append(q.Categories, ic)
		}
		if subs := c.Query("subcategory"); subs != "" {
			q.Subcategories = strings.Split(subs, ",")
		}
	}
	q.Search = c.Query("search")
	q.VendorID = c.Query("vendorId")
	q.ParentProductID = c.Query("parentProductId")
	q.TemplateID = c.Query("templateId")

	page := 1
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		q.PageSize = v
	}

	result, err := h.catalog.ListItems(c.Request.Context(), q, page)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list catalog items")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve catalog items")
		return
	}
	utils.SuccessWithPagination(c, 200, "Catalog items retrieved", result.Items,
		utils.NewPagination(result.Page, result.Limit, result.TotalItems))
}

// GetItem handles GET /v1/catalog/items/:id
func (h *CatalogHandler) GetItem(c *gin.Context) {
	item, err := h.catalog.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, utils.ErrItemNotFound) {
			utils.Error(c, 404, "ITEM_NOT_FOUND", "Catalog item not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve catalog item")
		return
	}
	utils.Success(c, 200, "Catalog item retrieved", item)
}

// FilterOptions handles GET /v1/catalog/filters
func (h *CatalogHandler) FilterOptions(c *gin.Context) {
	opts, err := h.options.Get(c.Request.Context(), c.Query("vendorId"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load filter options")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve filter options")
		return
	}
	utils.Success(c, 200, "Filter options retrieved", opts)
}

// ListVendors handles GET /v1/catalog/vendors
func (h *CatalogHandler) ListVendors(c *gin.Context) {
	vendors, err := h.options.ListVendors(c.Request.Context())
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve vendors")
		return
	}
	utils.Success(c, 200, "Vendors retrieved", vendors)
}

// ListCollections handles GET /v1/catalog/collections
func (h *CatalogHandler) ListCollections(c *gin.Context) {
	collections, err := h.options.ListCollections(c.Request.Context(), c.Query("vendorId"))
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve collections")
		return
	}
	utils.Success(c, 200, "Collections retrieved", collections)
}

// Import handles POST /v1/catalog/import (multipart field "file")
func (h *CatalogHandler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Missing file")
		return
	}
	f, err := fh.Open()
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Cannot read file")
		return
	}
	defer f.Close()

	res, err := h.imports.Import(c.Request.Context(), fh.Filename, f)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidImport) {
			utils.ErrorWithData(c, 422, "INVALID_IMPORT", "Import rejected", res)
			return
		}
		log.Error().Err(err).Str("file", fh.Filename).Msg("Import failed")
		utils.Error(c, 500, "INTERNAL_ERROR", "Import failed")
		return
	}
	utils.Success(c, 201, "Catalog imported", res)
}
