package models

// Currency is the persisted form of a catalogue currency.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Name         string `json:"name"`         // e.g., "US dollar"
	NumericCode  *int   `json:"numericCode"`  // ISO 4217 numeric code
	MinorUnits   string `json:"minorUnits"`
	AuditFields
}
