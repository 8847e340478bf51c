package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/drapery_api/internal/middleware"
	"github.com/GTDGit/drapery_api/internal/service"
	"github.com/GTDGit/drapery_api/internal/utils"
)

type AuthHandler struct {
	authService *service.UserAuthService
	limiter     *middleware.LoginRateLimiter
}

func NewAuthHandler(authService *service.UserAuthService, limiter *middleware.LoginRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidCredentials):
			h.fail(c)
			utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid email or password")
		case errors.Is(err, utils.ErrAccountInactive):
			utils.Error(c, 403, "ACCOUNT_INACTIVE", "Account is inactive")
		default:
			log.Error().Err(err).Msg("Login failed")
			utils.Error(c, 500, "INTERNAL_ERROR", "Login failed")
		}
		return
	}
	if h.limiter != nil {
		h.limiter.Reset(c.ClientIP())
	}

	utils.Success(c, 200, "Login successful", gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

func (h *AuthHandler) fail(c *gin.Context) {
	if h.limiter != nil {
		h.limiter.Fail(c.ClientIP())
	}
}
