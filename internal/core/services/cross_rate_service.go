package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/apperrors"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portsrepo "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/repositories"
	portssvc "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// CrossRatePrecision is the number of decimal places kept when dividing two anchor rates.
const CrossRatePrecision int32 = 34

type crossRateService struct {
	BaseService
	rateSnapshotRepo portsrepo.RateSnapshotReader
	regime           domain.Regime
}

// NewCrossRateService creates a calculator that reads the latest snapshots of regime.
func NewCrossRateService(rateSnapshotRepo portsrepo.RateSnapshotReader, regime domain.Regime) portssvc.CrossRateSvc {
	return &crossRateService{
		rateSnapshotRepo: rateSnapshotRepo,
		regime:           regime,
	}
}

var _ portssvc.CrossRateSvc = (*crossRateService)(nil)

// CrossRate returns toCode units per one fromCode unit. Each leg is an independent latest-snapshot
// lookup against the anchor currency; the anchor itself is worth exactly one.
func (s *crossRateService) CrossRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	from := strings.ToUpper(strings.TrimSpace(fromCode))
	to := strings.ToUpper(strings.TrimSpace(toCode))
	if from == "" || to == "" {
		return decimal.Zero, apperrors.NewValidationError("both currency codes are required")
	}

	toRate, err := s.anchorRate(ctx, to)
	if err != nil {
		return decimal.Zero, err
	}
	if from == domain.AnchorCurrency {
		return toRate, nil
	}

	fromRate, err := s.anchorRate(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	if fromRate.IsZero() {
		s.LogWarn(ctx, "Source rate is zero, cross rate unavailable",
			slog.String("from", from), slog.String("regime", s.regime.String()))
		return decimal.Zero, fmt.Errorf("%w: zero rate for %s", apperrors.ErrNotFound, from)
	}

	return toRate.DivRound(fromRate, CrossRatePrecision), nil
}

// anchorRate returns how many units of code one anchor unit buys according to the latest snapshot.
func (s *crossRateService) anchorRate(ctx context.Context, code string) (decimal.Decimal, error) {
	if code == domain.AnchorCurrency {
		return decimal.NewFromInt(1), nil
	}

	snapshot, err := s.rateSnapshotRepo.FindLatestSnapshot(ctx, s.regime, code)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			return decimal.Zero, fmt.Errorf("%w: no %s rate for %s", apperrors.ErrNotFound, s.regime, code)
		case errors.Is(err, apperrors.ErrAmbiguous):
			s.LogError(ctx, err, "Latest rate snapshot is ambiguous",
				slog.String("currency_code", code), slog.String("regime", s.regime.String()))
			return decimal.Zero, err
		default:
			s.LogError(ctx, err, "Failed to look up latest rate snapshot", slog.String("currency_code", code))
			return decimal.Zero, fmt.Errorf("failed to look up %s rate: %w", code, err)
		}
	}

	amount, ok := snapshot.AmountFor(code)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: latest %s snapshot has no amount for %s", apperrors.ErrNotFound, s.regime, code)
	}
	return amount, nil
}
