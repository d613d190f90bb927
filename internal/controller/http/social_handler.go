package http

import (
	"fmt"
	"net/http"

	"postpilot/internal/entity"
	"postpilot/internal/usecase"
	"postpilot/pkg/logger"

	"github.com/gin-gonic/gin"
)

type SocialHandler struct {
	socialUseCase usecase.SocialUseCase
	logger        *logger.Logger
}

func NewSocialHandler(socialUseCase usecase.SocialUseCase, logger *logger.Logger) *SocialHandler {
	return &SocialHandler{
		socialUseCase: socialUseCase,
		logger:        logger,
	}
}

type ConnectAccountRequest struct {
	AccessToken  string `json:"access_token" binding:"required"`
	TokenSecret  string `json:"token_secret"`
	RefreshToken string `json:"refresh_token"`
	RemoteUserID string `json:"remote_user_id"`
}

func platformParam(c *gin.Context) (entity.Platform, error) {
	platform := entity.Platform(c.Param("platform"))
	if !platform.Valid() {
		return "", fmt.Errorf("unknown platform %q", c.Param("platform"))
	}
	return platform, nil
}

// ListConnections godoc
// @Summary      Connected platforms
// @Description  Which platforms the caller has linked credentials for
// @Tags         social
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]bool
// @Router       /social/accounts [get]
func (h *SocialHandler) ListConnections(c *gin.Context) {
	userID := c.GetString("user_id")

	connected, err := h.socialUseCase.ConnectedAccounts(userID)
	if err != nil {
		h.logger.Error("Failed to list connections: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list connections"})
		return
	}

	c.JSON(http.StatusOK, connected)
}

// Connect godoc
// @Summary      Link a platform account
// @Description  Store platform credentials for the caller, replacing any existing ones
// @Tags         social
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        platform path string true "Platform name"
// @Param        credentials body ConnectAccountRequest true "Platform credentials"
// @Success      200  {object}  entity.SocialAccount
// @Failure      400  {object}  map[string]string
// @Router       /social/accounts/{platform} [put]
func (h *SocialHandler) Connect(c *gin.Context) {
	userID := c.GetString("user_id")

	platform, err := platformParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req ConnectAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.socialUseCase.Connect(userID, platform, usecase.ConnectAccountInput{
		AccessToken:  req.AccessToken,
		TokenSecret:  req.TokenSecret,
		RefreshToken: req.RefreshToken,
		RemoteUserID: req.RemoteUserID,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, account)
}

// Disconnect godoc
// @Summary      Unlink a platform account
// @Tags         social
// @Produce      json
// @Security     BearerAuth
// @Param        platform path string true "Platform name"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /social/accounts/{platform} [delete]
func (h *SocialHandler) Disconnect(c *gin.Context) {
	userID := c.GetString("user_id")

	platform, err := platformParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.socialUseCase.Disconnect(userID, platform); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
}
