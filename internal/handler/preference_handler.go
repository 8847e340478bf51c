package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/drapery_api/internal/models"
	"github.com/GTDGit/drapery_api/internal/selection"
	"github.com/GTDGit/drapery_api/internal/service"
	"github.com/GTDGit/drapery_api/internal/utils"
)

// PreferenceHandler serves a user's recent selections and favorites.
type PreferenceHandler struct {
	selections *service.SelectionService
	now        func() time.Time
}

// NewPreferenceHandler constructs a PreferenceHandler.
func NewPreferenceHandler(selections *service.SelectionService) *PreferenceHandler {
	return &PreferenceHandler{selections: selections, now: time.Now}
}

type recentView struct {
	models.RecentSelection
	SelectedAgo string `json:"selectedAgo"`
}

// ListRecents handles GET /v1/me/recents
func (h *PreferenceHandler) ListRecents(c *gin.Context) {
	list, err := h.selections.Recents(c.Request.Context(), owner(c))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load recent selections")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to load recent selections")
		return
	}
	now := h.now()
	out := make([]recentView, 0, len(list))
	for _, r := range list {
		out = append(out, recentView{RecentSelection: r, SelectedAgo: selection.RelativeTime(r.SelectedAt, now)})
	}
	utils.Success(c, 200, "Recent selections retrieved", out)
}

// ClearRecents handles DELETE /v1/me/recents
func (h *PreferenceHandler) ClearRecents(c *gin.Context) {
	if err := h.selections.ClearRecents(c.Request.Context(), owner(c)); err != nil {
		log.Error().Err(err).Msg("Failed to clear recent selections")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to clear recent selections")
		return
	}
	utils.Success(c, 200, "Recent selections cleared", nil)
}

// ListFavorites handles GET /v1/me/favorites
func (h *PreferenceHandler) ListFavorites(c *gin.Context) {
	ids, err := h.selections.Favorites(c.Request.Context(), owner(c))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load favorites")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to load favorites")
		return
	}
	utils.Success(c, 200, "Favorites retrieved", ids)
}

// ToggleFavorite handles POST /v1/me/favorites/:itemId
func (h *PreferenceHandler) ToggleFavorite(c *gin.Context) {
	on, err := h.selections.ToggleFavorite(c.Request.Context(), owner(c), c.Param("itemId"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to toggle favorite")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update favorite")
		return
	}
	utils.Success(c, 200, "Favorite updated", gin.H{"itemId": c.Param("itemId"), "favorite": on})
}
