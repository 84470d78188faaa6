package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/services"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/dto"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/middleware"
	"github.com/gin-gonic/gin"
)

// currencyHandler handles HTTP requests related to currencies.
type currencyHandler struct {
	currencyService portssvc.CurrencySvcFacade
}

// newCurrencyHandler creates a new currencyHandler.
func newCurrencyHandler(cs portssvc.CurrencySvcFacade) *currencyHandler {
	return &currencyHandler{
		currencyService: cs,
	}
}

// registerCurrencyRoutes registers routes related to currencies.
func registerCurrencyRoutes(rg *gin.RouterGroup, currencyService portssvc.CurrencySvcFacade) {
	h := newCurrencyHandler(currencyService)

	rg.GET("/currency-list", h.listCurrencies)
	rg.GET("/available-currency-list", h.listAvailableCurrencies)
}

// listCurrencies godoc
// @Summary List all currencies
// @Description Retrieves every currency of the upstream catalogue
// @Tags currencies
// @Produce  json
// @Success 200 {array} dto.CurrencyResponse
// @Success 204 "No currencies stored yet"
// @Failure 500 {object} map[string]string "Failed to list currencies"
// @Router /currency-list [get]
func (h *currencyHandler) listCurrencies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	currencies, err := h.currencyService.ListCurrencies(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list currencies from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list currencies"})
		return
	}
	if len(currencies) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	logger.Debug("Currencies listed successfully", slog.Int("count", len(currencies)))
	c.JSON(http.StatusOK, dto.ToListCurrencyResponse(currencies))
}

// listAvailableCurrencies godoc
// @Summary List currencies with rates
// @Description Retrieves the currencies that appear in at least one stored rate snapshot
// @Tags currencies
// @Produce  json
// @Success 200 {array} dto.CurrencyResponse
// @Success 204 "No rates stored yet"
// @Failure 500 {object} map[string]string "Failed to list currencies"
// @Router /available-currency-list [get]
func (h *currencyHandler) listAvailableCurrencies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	currencies, err := h.currencyService.ListAvailableCurrencies(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list available currencies from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list currencies"})
		return
	}
	if len(currencies) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	logger.Debug("Available currencies listed successfully", slog.Int("count", len(currencies)))
	c.JSON(http.StatusOK, dto.ToListCurrencyResponse(currencies))
}
