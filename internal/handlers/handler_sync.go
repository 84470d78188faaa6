package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/apperrors"
	portssvc "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/services"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/dto"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/middleware"
	"github.com/gin-gonic/gin"
)

// syncHandler exposes the synchronizer's status and an on-demand trigger.
type syncHandler struct {
	syncService portssvc.SyncSvc
}

func newSyncHandler(ss portssvc.SyncSvc) *syncHandler {
	return &syncHandler{
		syncService: ss,
	}
}

func registerSyncRoutes(rg *gin.RouterGroup, syncService portssvc.SyncSvc) {
	h := newSyncHandler(syncService)

	rg.GET("/sync-status", h.getSyncStatus)
	rg.POST("/sync", h.triggerSync)
}

// getSyncStatus godoc
// @Summary Synchronization status
// @Description Date of the last fully successful synchronization, current phase and last cycle report
// @Tags sync
// @Produce  json
// @Success 200 {object} dto.SyncStatusResponse
// @Router /sync-status [get]
func (h *syncHandler) getSyncStatus(c *gin.Context) {
	last, ok := h.syncService.LastSuccessfulSync()
	c.JSON(http.StatusOK, dto.ToSyncStatusResponse(last, ok, h.syncService.Phase(), h.syncService.LastReport()))
}

// getLastUpdate godoc
// @Summary Last update
// @Description Midnight of the day rates were last refreshed successfully, null before the first success
// @Tags sync
// @Produce  json
// @Success 200 {object} dto.LastUpdateResponse
// @Router /last-update [get]
func (h *syncHandler) getLastUpdate(c *gin.Context) {
	last, ok := h.syncService.LastSuccessfulSync()
	c.JSON(http.StatusOK, dto.ToLastUpdateResponse(last, ok))
}

// triggerSync godoc
// @Summary Run a synchronization
// @Description Runs one synchronization cycle and returns its report
// @Tags sync
// @Produce  json
// @Success 200 {object} domain.SyncReport
// @Failure 409 {object} map[string]string "A synchronization is already running"
// @Failure 502 {object} domain.SyncReport "The cycle failed"
// @Router /sync [post]
func (h *syncHandler) triggerSync(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to synchronize rates")

	// The cycle outlives a client that hangs up; its logger stays attached.
	report, err := h.syncService.Synchronize(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		if errors.Is(err, apperrors.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "Synchronization already in progress"})
			return
		}
		logger.Error("On-demand synchronization failed", slog.String("error", err.Error()))
		if report != nil {
			c.JSON(http.StatusBadGateway, report)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Synchronization failed"})
		return
	}

	c.JSON(http.StatusOK, report)
}
