// Package fxxml decodes the Bank of Lithuania FxRates XML documents into domain records.
//
// Only elements in the feed namespace are considered. Entries are located at any depth
// below the root, so envelopes (SOAP or the plain ASMX wrappers) do not matter.
package fxxml

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/apperrors"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portsfeed "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/feed"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/platform/logging"
	"github.com/shopspring/decimal"
)

// Namespace is the XML namespace of the upstream FxRates service.
const Namespace = "http://www.lb.lt/WebServices/FxRates"

const (
	currencyTableElement  = "CcyTbl"
	currencyEntryElement  = "CcyNtry"
	fxRateTableElement    = "FxRates"
	fxRateElement         = "FxRate"
	operationErrorElement = "OprlErr"
)

// DecodeError reports a document that could not be decoded. It matches apperrors.ErrDecode.
type DecodeError struct {
	Element string // Local name of the entry being decoded
	Index   int    // Zero-based position of the entry, -1 for document-level failures
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("decode %s document: %v", e.Element, e.Err)
	}
	return fmt.Sprintf("decode %s #%d: %v", e.Element, e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, apperrors.ErrDecode) hold for every DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == apperrors.ErrDecode
}

type currencyName struct {
	Lang  string `xml:"lang,attr"`
	Value string `xml:",chardata"`
}

type currencyEntry struct {
	Code        *string        `xml:"http://www.lb.lt/WebServices/FxRates Ccy"`
	Names       []currencyName `xml:"http://www.lb.lt/WebServices/FxRates CcyNm"`
	NumericCode *string        `xml:"http://www.lb.lt/WebServices/FxRates CcyNbr"`
	MinorUnits  *string        `xml:"http://www.lb.lt/WebServices/FxRates CcyMnrUnts"`
}

type currencyAmount struct {
	Currency *string `xml:"http://www.lb.lt/WebServices/FxRates Ccy"`
	Amount   *string `xml:"http://www.lb.lt/WebServices/FxRates Amt"`
}

// operationError is the envelope the upstream service returns instead of a table when a
// request cannot be served.
type operationError struct {
	Desc   string `xml:"http://www.lb.lt/WebServices/FxRates Desc"`
	Errors []struct {
		Desc string `xml:"http://www.lb.lt/WebServices/FxRates Desc"`
	} `xml:"http://www.lb.lt/WebServices/FxRates Err"`
}

func (e operationError) description() string {
	if desc := strings.TrimSpace(e.Desc); desc != "" {
		return desc
	}
	for _, inner := range e.Errors {
		if desc := strings.TrimSpace(inner.Desc); desc != "" {
			return desc
		}
	}
	return "no description"
}

type fxRateEntry struct {
	Date    *string          `xml:"http://www.lb.lt/WebServices/FxRates Dt"`
	Type    *string          `xml:"http://www.lb.lt/WebServices/FxRates Tp"`
	Amounts []currencyAmount `xml:"http://www.lb.lt/WebServices/FxRates CcyAmt"`
}

// Decoder is a stateless DocumentDecoder.
type Decoder struct{}

// NewDecoder creates a new Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

var _ portsfeed.DocumentDecoder = (*Decoder)(nil)

// DecodeCurrencies parses a currency catalogue. Entries whose numeric code is the "N/A"
// sentinel are skipped and logged.
func (d *Decoder) DecodeCurrencies(ctx context.Context, doc string) ([]domain.Currency, error) {
	logger := logging.FromContext(ctx)
	currencies := []domain.Currency{}

	err := walk(doc, currencyTableElement, currencyEntryElement, func(dec *xml.Decoder, start xml.StartElement, index int) error {
		var entry currencyEntry
		if err := dec.DecodeElement(&entry, &start); err != nil {
			return err
		}

		code := trimmed(entry.Code)
		if code == "" {
			return errors.New("missing currency code")
		}
		if entry.NumericCode == nil {
			return fmt.Errorf("missing numeric code for currency %s", code)
		}

		numericText := strings.TrimSpace(*entry.NumericCode)
		if numericText == domain.NumericCodeSentinel {
			logger.Info("Currency number is N/A, skipping catalogue entry", slog.String("currency_code", code))
			return nil
		}
		numeric, err := strconv.Atoi(numericText)
		if err != nil {
			return fmt.Errorf("invalid numeric code %q for currency %s", numericText, code)
		}

		currency := domain.Currency{
			Code:        strings.ToUpper(code),
			NumericCode: &numeric,
			MinorUnits:  trimmed(entry.MinorUnits),
		}
		if len(entry.Names) > 0 {
			currency.Name = strings.TrimSpace(entry.Names[0].Value)
		}
		currencies = append(currencies, currency)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Decoded currency catalogue", slog.Int("count", len(currencies)))
	return currencies, nil
}

// DecodeRates parses a rate table. Every draft is anchored to the EUR base currency and
// carries a headline rate equal to the amount of its first non-anchor component.
func (d *Decoder) DecodeRates(ctx context.Context, doc string) ([]domain.RateSnapshotDraft, error) {
	logger := logging.FromContext(ctx)
	drafts := []domain.RateSnapshotDraft{}

	err := walk(doc, fxRateTableElement, fxRateElement, func(dec *xml.Decoder, start xml.StartElement, index int) error {
		var entry fxRateEntry
		if err := dec.DecodeElement(&entry, &start); err != nil {
			return err
		}

		dateText := trimmed(entry.Date)
		if dateText == "" {
			return errors.New("missing rate date")
		}
		date, err := time.Parse(domain.DateLayout, dateText)
		if err != nil {
			return fmt.Errorf("invalid rate date %q: %w", dateText, err)
		}
		label := trimmed(entry.Type)
		if label == "" {
			return errors.New("missing rate type")
		}

		draft := domain.RateSnapshotDraft{
			Date:             date,
			RegimeLabel:      label,
			BaseCurrencyCode: domain.AnchorCurrency,
			Rate:             decimal.Zero,
			Amounts:          make([]domain.RateComponentDraft, 0, len(entry.Amounts)),
		}

		headlineSet := false
		for i, amt := range entry.Amounts {
			code := strings.ToUpper(trimmed(amt.Currency))
			amountText := trimmed(amt.Amount)
			if code == "" || amountText == "" {
				return fmt.Errorf("currency amount #%d is missing its currency or amount", i)
			}
			amount, err := decimal.NewFromString(amountText)
			if err != nil {
				return fmt.Errorf("invalid amount %q for currency %s: %w", amountText, code, err)
			}

			if !headlineSet && code != domain.AnchorCurrency {
				draft.Rate = amount
				headlineSet = true
			}
			draft.Amounts = append(draft.Amounts, domain.RateComponentDraft{CurrencyCode: code, Amount: amount})
		}

		drafts = append(drafts, draft)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Decoded rate table", slog.Int("count", len(drafts)))
	return drafts, nil
}

// walk streams doc and calls fn for every start element named {Namespace}local. The document
// must contain a {Namespace}table element; an upstream {Namespace}OprlErr envelope fails the walk.
// fn must consume the element it is given.
func walk(doc, table, local string, fn func(dec *xml.Decoder, start xml.StartElement, index int) error) error {
	dec := xml.NewDecoder(strings.NewReader(doc))
	sawRoot := false
	sawTable := false
	index := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &DecodeError{Element: local, Index: -1, Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if start.Name.Space != Namespace {
			continue
		}

		switch start.Name.Local {
		case table:
			sawTable = true
		case operationErrorElement:
			var oprl operationError
			if err := dec.DecodeElement(&oprl, &start); err != nil {
				return &DecodeError{Element: local, Index: -1, Err: err}
			}
			return &DecodeError{Element: local, Index: -1, Err: fmt.Errorf("upstream error: %s", oprl.description())}
		case local:
			if err := fn(dec, start, index); err != nil {
				return &DecodeError{Element: local, Index: index, Err: err}
			}
			index++
		}
	}

	if !sawRoot {
		return &DecodeError{Element: local, Index: -1, Err: errors.New("document has no root element")}
	}
	if !sawTable {
		return &DecodeError{Element: local, Index: -1, Err: fmt.Errorf("document has no %s element", table)}
	}
	return nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
