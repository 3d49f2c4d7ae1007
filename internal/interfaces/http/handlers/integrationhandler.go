// Package handlers contains the gin HTTP handlers for the sync engine.
package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"stridesync/internal/application/integration/usecases"
	"stridesync/internal/interfaces/http/middleware"
	"stridesync/internal/shared/config"
	"stridesync/internal/shared/errors"
	"stridesync/internal/shared/logger"
	"stridesync/internal/shared/utils"
)

// IntegrationHandler serves the provider connection endpoints. The
// callback endpoint is the only one without bearer auth: the provider
// redirects the user's browser there, and the state parameter carries
// the user correlation instead.
type IntegrationHandler struct {
	connectUseCase    connectUseCase
	callbackUseCase   callbackUseCase
	disconnectUseCase disconnectUseCase
	statusUseCase     statusUseCase
	syncUseCase       syncUseCase
	stravaConfig      config.StravaConfig
	logger            logger.Interface
}

func NewIntegrationHandler(
	connectUseCase connectUseCase,
	callbackUseCase callbackUseCase,
	disconnectUseCase disconnectUseCase,
	statusUseCase statusUseCase,
	syncUseCase syncUseCase,
	stravaConfig config.StravaConfig,
	logger logger.Interface,
) *IntegrationHandler {
	return &IntegrationHandler{
		connectUseCase:    connectUseCase,
		callbackUseCase:   callbackUseCase,
		disconnectUseCase: disconnectUseCase,
		statusUseCase:     statusUseCase,
		syncUseCase:       syncUseCase,
		stravaConfig:      stravaConfig,
		logger:            logger,
	}
}

// Authorize returns the provider authorization URL for the current user.
func (h *IntegrationHandler) Authorize(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	result := h.connectUseCase.Execute(userID)
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"authorize_url": result.AuthorizeURL})
}

// Callback completes the OAuth grant and redirects the browser back to
// the frontend. Failures carry a machine-readable reason code; token
// material never appears in either redirect.
func (h *IntegrationHandler) Callback(c *gin.Context) {
	result := h.callbackUseCase.Execute(c.Request.Context(), usecases.HandleStravaCallbackCommand{
		Code:       c.Query("code"),
		State:      c.Query("state"),
		ErrorParam: c.Query("error"),
	})

	if result.Connected {
		c.Redirect(http.StatusFound, h.stravaConfig.SuccessRedirectURL)
		return
	}
	c.Redirect(http.StatusFound, appendQuery(h.stravaConfig.ErrorRedirectURL, "reason", result.Reason))
}

// Disconnect revokes the grant best-effort and clears the credential.
func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.disconnectUseCase.Execute(c.Request.Context(), userID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "provider account disconnected", nil)
}

// Status reports the connection state, never the stored tokens.
func (h *IntegrationHandler) Status(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	status, err := h.statusUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", status)
}

type syncRequest struct {
	LookbackHours int `json:"lookback_hours"`
}

// Sync runs an on-demand import pass for the current user.
func (h *IntegrationHandler) Sync(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req syncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.syncUseCase.Execute(c.Request.Context(), usecases.ManualSyncCommand{
		UserID:        userID,
		LookbackHours: req.LookbackHours,
	})
	if err != nil {
		if intErr := errors.GetIntegrationError(err); intErr != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		h.logger.Errorw("manual sync failed", "user_id", userID, "error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "sync failed")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func appendQuery(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
