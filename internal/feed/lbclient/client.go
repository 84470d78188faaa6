// Package lbclient fetches raw FxRates documents from the Bank of Lithuania web service.
package lbclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/apperrors"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portsfeed "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/feed"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/platform/logging"
	"github.com/sethvargo/go-retry"
)

const (
	currencyListPath     = "getCurrencyList"
	currentRatesPath     = "getCurrentFxRates"
	ratesOnDatePath      = "getFxRates"
	ratesForCurrencyPath = "getFxRatesForCurrency"
)

const maxDocumentSize int64 = 16 << 20

// Config holds the connection settings for the upstream service.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   uint64
	RetryBackoff time.Duration
}

// Client is an HTTP DocumentFetcher.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Client. A nil httpClient selects a default client without a global timeout;
// per-request deadlines come from cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid FX rates base URL %q: %w", cfg.BaseURL, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, httpClient: httpClient}, nil
}

var _ portsfeed.DocumentFetcher = (*Client)(nil)

// FetchCurrencyCatalogue downloads the currency list.
func (c *Client) FetchCurrencyCatalogue(ctx context.Context) (string, error) {
	return c.get(ctx, currencyListPath, nil)
}

// FetchCurrentRates downloads the latest rate table for regime.
func (c *Client) FetchCurrentRates(ctx context.Context, regime domain.Regime) (string, error) {
	return c.get(ctx, currentRatesPath, url.Values{"tp": {regime.String()}})
}

// FetchRatesOnDate downloads the rate table of regime for a single day.
func (c *Client) FetchRatesOnDate(ctx context.Context, regime domain.Regime, date time.Time) (string, error) {
	return c.get(ctx, ratesOnDatePath, url.Values{
		"tp": {regime.String()},
		"dt": {date.Format(domain.DateLayout)},
	})
}

// FetchRatesInRange downloads the history of one currency between from and to inclusive.
func (c *Client) FetchRatesInRange(ctx context.Context, regime domain.Regime, currencyCode string, from, to time.Time) (string, error) {
	return c.get(ctx, ratesForCurrencyPath, url.Values{
		"tp":     {regime.String()},
		"ccy":    {strings.ToUpper(currencyCode)},
		"dtFrom": {from.Format(domain.DateLayout)},
		"dtTo":   {to.Format(domain.DateLayout)},
	})
}

func (c *Client) get(ctx context.Context, operation string, query url.Values) (string, error) {
	logger := logging.FromContext(ctx).With(slog.String("operation", operation))
	endpoint := c.cfg.BaseURL + "/" + operation
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	backoff := retry.WithMaxRetries(c.cfg.MaxRetries, retry.NewExponential(c.retryBase()))

	var body string
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		doc, err := c.fetchOnce(ctx, endpoint)
		if err != nil {
			var retryable *retryableError
			if errors.As(err, &retryable) {
				logger.Warn("Upstream request failed, retrying", slog.Int("attempt", attempt), slog.String("error", err.Error()))
				return retry.RetryableError(err)
			}
			return err
		}
		body = doc
		return nil
	})
	if err != nil {
		logger.Error("Upstream request failed", slog.Int("attempts", attempt), slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %s: %v", apperrors.ErrTransport, operation, err)
	}

	logger.Debug("Fetched upstream document", slog.Int("bytes", len(body)), slog.Int("attempts", attempt))
	return body, nil
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", err
		}
		return "", &retryableError{err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return "", &retryableError{err: fmt.Errorf("read body: %w", err)}
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", &retryableError{err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return string(payload), nil
}

func (c *Client) retryBase() time.Duration {
	if c.cfg.RetryBackoff <= 0 {
		return time.Millisecond
	}
	return c.cfg.RetryBackoff
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }
