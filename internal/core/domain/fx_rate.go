package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Regime identifies which upstream rate table a snapshot belongs to.
type Regime string

const (
	// RegimeLocal holds the local-market (Bank of Lithuania) rates, upstream label "LT".
	RegimeLocal Regime = "LT"
	// RegimeEuroArea holds the euro-area reference rates, upstream label "EU".
	RegimeEuroArea Regime = "EU"
)

// Regimes returns the regimes in synchronization order.
func Regimes() []Regime {
	return []Regime{RegimeLocal, RegimeEuroArea}
}

// ParseRegime converts an upstream or API label into a Regime.
func ParseRegime(s string) (Regime, error) {
	switch Regime(strings.ToUpper(strings.TrimSpace(s))) {
	case RegimeLocal:
		return RegimeLocal, nil
	case RegimeEuroArea:
		return RegimeEuroArea, nil
	default:
		return "", fmt.Errorf("unknown rate regime %q", s)
	}
}

func (r Regime) String() string {
	return string(r)
}

// RateComponent is one amount of a snapshot expressed in a target currency.
type RateComponent struct {
	Amount         decimal.Decimal `json:"amount"`
	TargetCurrency Currency        `json:"targetCurrency"`
}

// RateSnapshot is one dated set of anchor-based amounts for a regime. Snapshots are
// immutable once stored.
type RateSnapshot struct {
	ID           string          `json:"id"`
	Date         time.Time       `json:"date"`
	Regime       Regime          `json:"regime"`
	BaseCurrency Currency        `json:"baseCurrency"`
	Rate         decimal.Decimal `json:"rate"` // Amount of the first non-anchor component
	Amounts      []RateComponent `json:"amounts"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// AmountFor returns the amount of the component targeting code.
func (s RateSnapshot) AmountFor(code string) (decimal.Decimal, bool) {
	for _, a := range s.Amounts {
		if a.TargetCurrency.Code == code {
			return a.Amount, true
		}
	}
	return decimal.Zero, false
}

// RateComponentDraft is a decoded component whose target is still a bare code.
type RateComponentDraft struct {
	CurrencyCode string
	Amount       decimal.Decimal
}

// RateSnapshotDraft is a decoded <FxRate> entry, not yet resolved against stored currencies.
type RateSnapshotDraft struct {
	Date             time.Time
	RegimeLabel      string
	BaseCurrencyCode string
	Rate             decimal.Decimal
	Amounts          []RateComponentDraft
}

// SkipReason explains why a record was left out during reconciliation.
type SkipReason string

const (
	SkipNone                SkipReason = ""
	SkipInvalidNumericCode  SkipReason = "invalid_numeric_code"
	SkipInvalidBaseCurrency SkipReason = "invalid_base_currency"
	SkipUnresolvedBase      SkipReason = "unresolved_base_currency"
	SkipUnresolvedTarget    SkipReason = "unresolved_target_currency"
	SkipNegativeAmount      SkipReason = "negative_amount"
	SkipRegimeMismatch      SkipReason = "regime_mismatch"
	SkipNoComponents        SkipReason = "no_components"
	SkipDuplicateSnapshot   SkipReason = "duplicate_snapshot"
)
