package domain

// AnchorCurrency is the currency every stored rate snapshot is expressed against.
const AnchorCurrency = "EUR"

// NumericCodeSentinel marks catalogue rows that are not real currencies (metals, funds).
const NumericCodeSentinel = "N/A"

// Currency represents a currency from the upstream catalogue.
type Currency struct {
	Code        string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Name        string `json:"currencyName"`
	NumericCode *int   `json:"currencyNumber,omitempty"` // ISO 4217 numeric code, absent when unknown
	MinorUnits  string `json:"minorUnits"`
	AuditFields
}

// IsAnchor reports whether the currency is the feed's anchor currency.
func (c Currency) IsAnchor() bool {
	return c.Code == AnchorCurrency
}

// CurrencyIndex resolves currency codes to stored currencies.
type CurrencyIndex map[string]Currency

// NewCurrencyIndex builds an index keyed by currency code.
func NewCurrencyIndex(currencies []Currency) CurrencyIndex {
	idx := make(CurrencyIndex, len(currencies))
	for _, c := range currencies {
		idx[c.Code] = c
	}
	return idx
}

// Lookup returns the currency with the given code.
func (idx CurrencyIndex) Lookup(code string) (Currency, bool) {
	c, ok := idx[code]
	return c, ok
}
