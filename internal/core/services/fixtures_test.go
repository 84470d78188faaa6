package services_test

import (
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	"github.com/shopspring/decimal"
)

func intPtr(i int) *int { return &i }

func testCurrency(code string) domain.Currency {
	return domain.Currency{Code: code, Name: code + " name", NumericCode: intPtr(len(code) * 100), MinorUnits: "2"}
}

func testIndex(codes ...string) domain.CurrencyIndex {
	currencies := make([]domain.Currency, 0, len(codes))
	for _, code := range codes {
		currencies = append(currencies, testCurrency(code))
	}
	return domain.NewCurrencyIndex(currencies)
}

// anchorSnapshot builds a stored-looking snapshot with EUR/1 and code/amount components.
func anchorSnapshot(regime domain.Regime, date time.Time, code, amount string) *domain.RateSnapshot {
	rate := decimal.RequireFromString(amount)
	return &domain.RateSnapshot{
		ID:           code + "-" + date.Format(domain.DateLayout),
		Date:         date,
		Regime:       regime,
		BaseCurrency: testCurrency(domain.AnchorCurrency),
		Rate:         rate,
		Amounts: []domain.RateComponent{
			{Amount: decimal.NewFromInt(1), TargetCurrency: testCurrency(domain.AnchorCurrency)},
			{Amount: rate, TargetCurrency: testCurrency(code)},
		},
	}
}

func draft(label string, date time.Time, components ...domain.RateComponentDraft) domain.RateSnapshotDraft {
	d := domain.RateSnapshotDraft{
		Date:             date,
		RegimeLabel:      label,
		BaseCurrencyCode: domain.AnchorCurrency,
		Rate:             decimal.Zero,
		Amounts:          components,
	}
	for _, c := range components {
		if c.CurrencyCode != domain.AnchorCurrency {
			d.Rate = c.Amount
			break
		}
	}
	return d
}

func component(code, amount string) domain.RateComponentDraft {
	return domain.RateComponentDraft{CurrencyCode: code, Amount: decimal.RequireFromString(amount)}
}

var testDate = time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
