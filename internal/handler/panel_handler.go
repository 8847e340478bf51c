package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/drapery_api/internal/export"
	"github.com/GTDGit/drapery_api/internal/models"
	"github.com/GTDGit/drapery_api/internal/selection"
	"github.com/GTDGit/drapery_api/internal/service"
	"github.com/GTDGit/drapery_api/internal/utils"
)

// PanelHandler exposes selection panels over HTTP.
type PanelHandler struct {
	selections *service.SelectionService
}

// NewPanelHandler constructs a PanelHandler.
func NewPanelHandler(selections *service.SelectionService) *PanelHandler {
	return &PanelHandler{selections: selections}
}

func owner(c *gin.Context) string {
	return c.GetString("owner")
}

// panel loads the panel named by :id or writes the error response.
func (h *PanelHandler) panel(c *gin.Context) (*selection.Panel, bool) {
	p, err := h.selections.Get(owner(c), c.Param("id"))
	if err != nil {
		writeSelectionError(c, err)
		return nil, false
	}
	return p, true
}

// writeSelectionError maps selection and service errors onto the envelope.
func writeSelectionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrPanelNotFound):
		utils.Error(c, 404, "PANEL_NOT_FOUND", "Selection panel not found")
	case errors.Is(err, utils.ErrPanelForbidden):
		utils.Error(c, 403, "PANEL_FORBIDDEN", "Selection panel belongs to another user")
	case errors.Is(err, utils.ErrUnknownTreatment):
		utils.Error(c, 400, "UNKNOWN_TREATMENT", "Treatment category is required")
	case errors.Is(err, selection.ErrItemNotFound), errors.Is(err, utils.ErrItemNotFound):
		utils.Error(c, 404, "ITEM_NOT_FOUND", "Item is not in this panel")
	case errors.Is(err, selection.ErrInvalidCategory):
		utils.Error(c, 400, "INVALID_CATEGORY", "Unknown selection category")
	case errors.Is(err, selection.ErrTabNotOffered):
		utils.Error(c, 400, "TAB_NOT_OFFERED", "Tab is not offered for this treatment")
	case errors.Is(err, selection.ErrFetchInFlight):
		utils.Error(c, 409, "FETCH_IN_FLIGHT", "A page is already loading")
	case errors.Is(err, selection.ErrNoMorePages):
		utils.Error(c, 409, "NO_MORE_PAGES", "All pages are loaded")
	case errors.Is(err, selection.ErrManualEntryName), errors.Is(err, selection.ErrManualEntryPrice):
		utils.Error(c, 400, "INVALID_MANUAL_ENTRY", err.Error())
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Selection request failed")
		utils.Error(c, 502, "CATALOG_UNAVAILABLE", "Catalog is unavailable right now")
	}
}

// Open handles POST /v1/panels
func (h *PanelHandler) Open(c *gin.Context) {
	var req service.OpenPanelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	p, err := h.selections.Open(c.Request.Context(), owner(c), req)
	if err != nil {
		writeSelectionError(c, err)
		return
	}
	utils.Success(c, 201, "Selection panel opened", p.Snapshot())
}

// Get handles GET /v1/panels/:id
func (h *PanelHandler) Get(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	utils.Success(c, 200, "Selection panel retrieved", p.Snapshot())
}

// Close handles DELETE /v1/panels/:id
func (h *PanelHandler) Close(c *gin.Context) {
	if err := h.selections.Close(owner(c), c.Param("id")); err != nil {
		writeSelectionError(c, err)
		return
	}
	utils.Success(c, 200, "Selection panel closed", nil)
}

// SetTreatment handles PUT /v1/panels/:id/treatment
func (h *PanelHandler) SetTreatment(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	var req struct {
		TreatmentCategory models.TreatmentCategory `json:"treatmentCategory" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	// Fetch failures are part of the snapshot.
	_ = p.SetTreatmentCategory(c.Request.Context(), req.TreatmentCategory)
	utils.Success(c, 200, "Treatment changed", p.Snapshot())
}

// SetTab handles PUT /v1/panels/:id/tab
func (h *PanelHandler) SetTab(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	var req struct {
		Tab models.SelectionCategory `json:"tab" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	err := p.SetTab(c.Request.Context(), req.Tab)
	if errors.Is(err, selection.ErrInvalidCategory) || errors.Is(err, selection.ErrTabNotOffered) {
		writeSelectionError(c, err)
		return
	}
	utils.Success(c, 200, "Tab changed", p.Snapshot())
}

// ApplyFilter handles PATCH /v1/panels/:id/filters
func (h *PanelHandler) ApplyFilter(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	var patch selection.FilterPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	_ = p.ApplyFilter(c.Request.Context(), patch)
	utils.Success(c, 200, "Filter applied", p.Snapshot())
}

// LoadMore handles POST /v1/panels/:id/load-more
func (h *PanelHandler) LoadMore(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	if err := p.LoadMore(c.Request.Context()); err != nil {
		writeSelectionError(c, err)
		return
	}
	utils.Success(c, 200, "Next page loaded", p.Snapshot())
}

// Click handles POST /v1/panels/:id/items/:itemId/click
func (h *PanelHandler) Click(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	change, err := p.Click(c.Request.Context(), c.Param("itemId"))
	if err != nil {
		writeSelectionError(c, err)
		return
	}
	utils.Success(c, 200, changeMessage(change), change)
}

// SelectRecent handles POST /v1/panels/:id/recents/:itemId/select
func (h *PanelHandler) SelectRecent(c *gin.Context) {
	change, err := h.selections.SelectRecent(c.Request.Context(), owner(c), c.Param("id"), c.Param("itemId"))
	if err != nil {
		writeSelectionError(c, err)
		return
	}
	utils.Success(c, 200, changeMessage(change), change)
}

// Deselect handles DELETE /v1/panels/:id/selection/:category
func (h *PanelHandler) Deselect(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	slot := models.SelectionCategory(c.Param("category"))
	if !slot.Valid() || slot == models.SelectionBoth {
		utils.Error(c, 400, "INVALID_CATEGORY", "Unknown selection category")
		return
	}
	p.Deselect(slot)
	utils.Success(c, 200, "Selection cleared", p.Selection())
}

// AddManual handles POST /v1/panels/:id/manual
func (h *PanelHandler) AddManual(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	var req struct {
		Category models.SelectionCategory `json:"category"`
		selection.ManualEntry
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	item, err := p.AddManual(c.Request.Context(), req.Category, req.ManualEntry)
	if err != nil {
		writeSelectionError(c, err)
		return
	}
	utils.Success(c, 201, "Manual item selected", item)
}

// ToggleFavorite handles POST /v1/panels/:id/favorites/:itemId
func (h *PanelHandler) ToggleFavorite(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	on, err := h.selections.ToggleFavorite(c.Request.Context(), p.Owner(), c.Param("itemId"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to toggle favorite")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update favorite")
		return
	}
	utils.Success(c, 200, "Favorite updated", gin.H{"itemId": c.Param("itemId"), "favorite": on})
}

// SetMeasurements handles PUT /v1/panels/:id/measurements
func (h *PanelHandler) SetMeasurements(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	var m models.Measurements
	if err := c.ShouldBindJSON(&m); err != nil || m.Width < 0 || m.Height < 0 {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid measurements")
		return
	}
	p.SetMeasurements(m)
	utils.Success(c, 200, "Measurements updated", m)
}

// EstimateCost handles GET /v1/panels/:id/items/:itemId/cost
func (h *PanelHandler) EstimateCost(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	cost, slot, err := p.EstimateCost(c.Param("itemId"))
	if err != nil {
		writeSelectionError(c, err)
		return
	}
	utils.Success(c, 200, "Cost estimated", gin.H{
		"itemId":   c.Param("itemId"),
		"category": slot,
		"cost":     cost,
	})
}

// Selection handles GET /v1/panels/:id/selection
func (h *PanelHandler) Selection(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	lines := h.selections.Lines(p)
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Cost)
	}
	utils.Success(c, 200, "Selection retrieved", gin.H{
		"lines": lines,
		"total": total,
	})
}

// ExportPDF handles GET /v1/panels/:id/export.pdf
func (h *PanelHandler) ExportPDF(c *gin.Context) {
	p, ok := h.panel(c)
	if !ok {
		return
	}
	treatmentType, treatment := p.Treatment()
	sheet := export.Sheet{
		Treatment:    treatment,
		Measurements: p.Measurements(),
		PreparedBy:   c.GetString("email"),
	}
	if treatmentType != "" {
		sheet.Title = treatmentType
	}
	for _, l := range h.selections.Lines(p) {
		sheet.Lines = append(sheet.Lines, export.Line{Category: l.Category, Item: l.Item, Cost: l.Cost})
	}

	out, err := export.RenderPDF(sheet)
	if err != nil {
		if errors.Is(err, export.ErrEmptySheet) {
			utils.Error(c, 409, "NOTHING_SELECTED", "Select at least one item before exporting")
			return
		}
		log.Error().Err(err).Msg("Failed to render workroom sheet")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to render PDF")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="selection-%s.pdf"`, p.ID()))
	c.Data(200, "application/pdf", out)
}

func changeMessage(change selection.Change) string {
	if change.Selected {
		return "Item selected"
	}
	return "Item deselected"
}
