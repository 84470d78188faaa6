package mapping

import (
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/models"
)

// ToModelRateSnapshot converts a domain RateSnapshot, components included, to its persisted form.
func ToModelRateSnapshot(d domain.RateSnapshot) models.RateSnapshot {
	m := models.RateSnapshot{
		SnapshotID:       d.ID,
		RateDate:         domain.TruncateToDate(d.Date),
		Regime:           d.Regime.String(),
		BaseCurrencyCode: d.BaseCurrency.Code,
		Rate:             d.Rate,
		CreatedAt:        d.CreatedAt,
		Components:       make([]models.RateComponent, len(d.Amounts)),
	}
	for i, a := range d.Amounts {
		m.Components[i] = models.RateComponent{
			SnapshotID:   d.ID,
			Position:     i,
			CurrencyCode: a.TargetCurrency.Code,
			Amount:       a.Amount,
		}
	}
	return m
}

// ToDomainRateSnapshot converts a persisted snapshot to a domain RateSnapshot, resolving
// currency codes through idx. Codes missing from idx resolve to a Currency carrying only its code.
func ToDomainRateSnapshot(m models.RateSnapshot, idx domain.CurrencyIndex) domain.RateSnapshot {
	d := domain.RateSnapshot{
		ID:           m.SnapshotID,
		Date:         domain.TruncateToDate(m.RateDate),
		Regime:       domain.Regime(m.Regime),
		BaseCurrency: resolveCurrency(m.BaseCurrencyCode, idx),
		Rate:         m.Rate,
		CreatedAt:    m.CreatedAt,
		Amounts:      make([]domain.RateComponent, len(m.Components)),
	}
	for i, c := range m.Components {
		d.Amounts[i] = domain.RateComponent{
			Amount:         c.Amount,
			TargetCurrency: resolveCurrency(c.CurrencyCode, idx),
		}
	}
	return d
}

// ToDomainRateSnapshotSlice converts persisted snapshots to domain snapshots.
func ToDomainRateSnapshotSlice(ms []models.RateSnapshot, idx domain.CurrencyIndex) []domain.RateSnapshot {
	ds := make([]domain.RateSnapshot, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRateSnapshot(m, idx)
	}
	return ds
}

func resolveCurrency(code string, idx domain.CurrencyIndex) domain.Currency {
	if c, ok := idx.Lookup(code); ok {
		return c
	}
	return domain.Currency{Code: code}
}
