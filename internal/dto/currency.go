package dto

import (
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
)

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	CurrencyCode   string `json:"currencyCode"`
	CurrencyName   string `json:"currencyName"`
	CurrencyNumber *int   `json:"currencyNumber"`
	MinorUnits     string `json:"minorUnits"`
}

// ToCurrencyResponse converts a domain.Currency to CurrencyResponse DTO
func ToCurrencyResponse(curr *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		CurrencyCode:   curr.Code,
		CurrencyName:   curr.Name,
		CurrencyNumber: curr.NumericCode,
		MinorUnits:     curr.MinorUnits,
	}
}

// ToListCurrencyResponse converts a slice of domain.Currency to a slice of CurrencyResponse DTOs
func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i := range currencies {
		res[i] = ToCurrencyResponse(&currencies[i])
	}
	return res
}
