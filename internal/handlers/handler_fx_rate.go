package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/apperrors"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portssvc "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/services"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/dto"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/middleware"
	"github.com/gin-gonic/gin"
)

// fxRateHandler handles HTTP requests for rate tables and cross rates.
type fxRateHandler struct {
	fxRateService portssvc.FxRateSvcFacade
}

func newFxRateHandler(fs portssvc.FxRateSvcFacade) *fxRateHandler {
	return &fxRateHandler{
		fxRateService: fs,
	}
}

// registerFxRateRoutes registers rate query routes.
func registerFxRateRoutes(rg *gin.RouterGroup, fxRateService portssvc.FxRateSvcFacade) {
	h := newFxRateHandler(fxRateService)

	rg.GET("/current-exchange-rates/:regime", h.getCurrentRates)
	// gin needs one wildcard name per segment, so the date and the currency share :selector.
	rg.GET("/exchange-rates/:regime/:selector", h.getRatesOnDate)
	rg.GET("/exchange-rates/:regime/:selector/:startDate/:endDate", h.getRatesForCurrency)
	rg.GET("/cross-rate/:from/:to", h.getCrossRate)
}

// getCurrentRates godoc
// @Summary Current rates
// @Description Retrieves the snapshots of the latest stored date for a regime
// @Tags rates
// @Produce  json
// @Param   regime path string true "Rate regime" Enums(LT, EU)
// @Success 200 {array} dto.FxRateResponse
// @Failure 404 {object} map[string]string "Unknown regime"
// @Failure 500 {object} map[string]string "Failed to retrieve rates"
// @Router /current-exchange-rates/{regime} [get]
func (h *fxRateHandler) getCurrentRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	regime, ok := parseRegimeParam(c, c.Param("regime"))
	if !ok {
		return
	}

	snapshots, err := h.fxRateService.GetCurrentRates(c.Request.Context(), regime)
	if err != nil {
		logger.Error("Failed to get current rates from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rates"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListFxRateResponse(snapshots))
}

// getRatesOnDate godoc
// @Summary Rates on a date
// @Description Retrieves the snapshots of a regime on a given date
// @Tags rates
// @Produce  json
// @Param   regime path string true "Rate regime" Enums(LT, EU)
// @Param   date path string true "Date (yyyy-MM-dd)"
// @Success 200 {array} dto.FxRateResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 404 {object} map[string]string "Unknown regime"
// @Failure 500 {object} map[string]string "Failed to retrieve rates"
// @Router /exchange-rates/{regime}/{date} [get]
func (h *fxRateHandler) getRatesOnDate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.RatesByDateParams
	if err := c.ShouldBindUri(&params); err != nil {
		logger.Warn("Invalid rates-by-date path", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	regime, ok := parseRegimeParam(c, params.Regime)
	if !ok {
		return
	}
	date, _ := time.Parse(domain.DateLayout, params.Date)

	snapshots, err := h.fxRateService.GetRatesOnDate(c.Request.Context(), regime, date)
	if err != nil {
		logger.Error("Failed to get rates on date from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rates"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListFxRateResponse(snapshots))
}

// getRatesForCurrency godoc
// @Summary Rate history of a currency
// @Description Retrieves a currency's snapshots between two dates, inclusive. When nothing is stored
// @Description for the range it is read from the upstream service without being stored.
// @Tags rates
// @Produce  json
// @Param   regime path string true "Rate regime" Enums(LT, EU)
// @Param   currency path string true "Currency code" MinLength(3) MaxLength(3)
// @Param   startDate path string true "First date (yyyy-MM-dd)"
// @Param   endDate path string true "Last date (yyyy-MM-dd)"
// @Success 200 {array} dto.FxRateResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Unknown regime"
// @Failure 500 {object} map[string]string "Failed to retrieve rates"
// @Router /exchange-rates/{regime}/{currency}/{startDate}/{endDate} [get]
func (h *fxRateHandler) getRatesForCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.RatesForCurrencyParams
	if err := c.ShouldBindUri(&params); err != nil {
		logger.Warn("Invalid currency history path", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	regime, ok := parseRegimeParam(c, params.Regime)
	if !ok {
		return
	}
	from, _ := time.Parse(domain.DateLayout, params.StartDate)
	to, _ := time.Parse(domain.DateLayout, params.EndDate)

	logger = logger.With(slog.String("currency_code", strings.ToUpper(params.Currency)))
	snapshots, err := h.fxRateService.GetRatesForCurrencyInRange(c.Request.Context(), regime, params.Currency, from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error listing currency rates", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get currency rates from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rates"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListFxRateResponse(snapshots))
}

// getCrossRate godoc
// @Summary Cross rate
// @Description Units of the target currency bought by one unit of the source currency, derived from
// @Description the latest anchor-based snapshots
// @Tags rates
// @Produce  json
// @Param   from path string true "Source currency code" MinLength(3) MaxLength(3)
// @Param   to path string true "Target currency code" MinLength(3) MaxLength(3)
// @Success 200 {object} dto.CrossRateResponse
// @Failure 400 {object} map[string]string "Invalid currency code"
// @Failure 404 {object} map[string]string "Rate not found"
// @Failure 500 {object} map[string]string "Failed to calculate cross rate"
// @Router /cross-rate/{from}/{to} [get]
func (h *fxRateHandler) getCrossRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.CrossRateParams
	if err := c.ShouldBindUri(&params); err != nil {
		logger.Warn("Invalid cross rate path", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	from, to := strings.ToUpper(params.From), strings.ToUpper(params.To)
	logger = logger.With(slog.String("from", from), slog.String("to", to))

	rate, err := h.fxRateService.CrossRate(c.Request.Context(), from, to)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Cross rate not available", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": "Rate not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrAmbiguous):
			logger.Error("Multiple latest rates found", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate cross rate"})
		default:
			logger.Error("Failed to calculate cross rate", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate cross rate"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.CrossRateResponse{From: from, To: to, Rate: rate})
}

// parseRegimeParam writes a 404 and reports false when raw names no known regime.
func parseRegimeParam(c *gin.Context, raw string) (domain.Regime, bool) {
	regime, err := domain.ParseRegime(raw)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Unknown rate regime", slog.String("regime", raw))
		c.JSON(http.StatusNotFound, gin.H{"error": "Unsupported exchange rate type"})
		return "", false
	}
	return regime, true
}
