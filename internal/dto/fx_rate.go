package dto

import (
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RatesByDateParams binds the path of a single-date rate table request.
type RatesByDateParams struct {
	Regime string `uri:"regime" binding:"required"`
	Date   string `uri:"selector" binding:"required,isodate"`
}

// RatesForCurrencyParams binds the path of a currency history request.
type RatesForCurrencyParams struct {
	Regime    string `uri:"regime" binding:"required"`
	Currency  string `uri:"selector" binding:"required,alpha,len=3"`
	StartDate string `uri:"startDate" binding:"required,isodate"`
	EndDate   string `uri:"endDate" binding:"required,isodate"`
}

// CrossRateParams binds the path of a cross rate request.
type CrossRateParams struct {
	From string `uri:"from" binding:"required,alpha,len=3"`
	To   string `uri:"to" binding:"required,alpha,len=3"`
}

// CurrencyAmountResponse is one component of a rate snapshot.
type CurrencyAmountResponse struct {
	TargetCurrency string          `json:"targetCurrency"`
	Amount         decimal.Decimal `json:"amount"`
}

// FxRateResponse defines the structure for API responses containing one rate snapshot.
type FxRateResponse struct {
	Type            string                   `json:"type"`
	Date            string                   `json:"date"`
	BaseCurrency    string                   `json:"baseCurrency"`
	Rate            decimal.Decimal          `json:"rate"`
	CurrencyAmounts []CurrencyAmountResponse `json:"currencyAmounts"`
}

// CrossRateResponse carries how many units of To one unit of From buys.
type CrossRateResponse struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// ToFxRateResponse converts a domain.RateSnapshot to FxRateResponse DTO
func ToFxRateResponse(snapshot *domain.RateSnapshot) FxRateResponse {
	amounts := make([]CurrencyAmountResponse, len(snapshot.Amounts))
	for i, a := range snapshot.Amounts {
		amounts[i] = CurrencyAmountResponse{
			TargetCurrency: a.TargetCurrency.Code,
			Amount:         a.Amount,
		}
	}
	return FxRateResponse{
		Type:            snapshot.Regime.String(),
		Date:            snapshot.Date.Format(domain.DateLayout),
		BaseCurrency:    snapshot.BaseCurrency.Code,
		Rate:            snapshot.Rate,
		CurrencyAmounts: amounts,
	}
}

// ToListFxRateResponse converts a slice of domain.RateSnapshot to a slice of FxRateResponse DTOs.
func ToListFxRateResponse(snapshots []domain.RateSnapshot) []FxRateResponse {
	responses := make([]FxRateResponse, len(snapshots))
	for i := range snapshots {
		responses[i] = ToFxRateResponse(&snapshots[i])
	}
	return responses
}
