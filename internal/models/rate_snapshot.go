package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSnapshot is the persisted header of a dated rate table entry.
type RateSnapshot struct {
	SnapshotID       string          `json:"snapshotID"` // Primary Key (UUID)
	RateDate         time.Time       `json:"rateDate"`
	Regime           string          `json:"regime"`           // "LT" or "EU"
	BaseCurrencyCode string          `json:"baseCurrencyCode"` // FK -> Currency.currencyCode
	Rate             decimal.Decimal `json:"rate"`
	CreatedAt        time.Time       `json:"createdAt"`
	Components       []RateComponent `json:"components,omitempty"`
}

// RateComponent is one amount of a snapshot. Position keeps document order.
type RateComponent struct {
	SnapshotID   string          `json:"snapshotID"`
	Position     int             `json:"position"`
	CurrencyCode string          `json:"currencyCode"` // FK -> Currency.currencyCode
	Amount       decimal.Decimal `json:"amount"`
}
