package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portsrepo "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/repositories"
	portssvc "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/services"
)

type currencyService struct {
	BaseService
	currencyRepo     portsrepo.CurrencyReader
	rateSnapshotRepo portsrepo.RateSnapshotReader
}

// NewCurrencyService creates the read service over the stored currency catalogue.
func NewCurrencyService(currencyRepo portsrepo.CurrencyReader, rateSnapshotRepo portsrepo.RateSnapshotReader) portssvc.CurrencySvcFacade {
	return &currencyService{
		currencyRepo:     currencyRepo,
		rateSnapshotRepo: rateSnapshotRepo,
	}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

func (s *currencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, strings.ToUpper(strings.TrimSpace(currencyCode)))
	if err != nil {
		return nil, fmt.Errorf("failed to get currency by code in service: %w", err)
	}
	return currency, nil
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list currencies")
		return nil, fmt.Errorf("failed to list currencies in service: %w", err)
	}
	// Return empty slice if no currencies found, not nil
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

// ListAvailableCurrencies keeps catalogue order and returns only currencies some snapshot targets.
func (s *currencyService) ListAvailableCurrencies(ctx context.Context) ([]domain.Currency, error) {
	codes, err := s.rateSnapshotRepo.ListReferencedCurrencyCodes(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list referenced currency codes")
		return nil, fmt.Errorf("failed to list available currencies in service: %w", err)
	}
	referenced := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		referenced[code] = struct{}{}
	}

	currencies, err := s.ListCurrencies(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]domain.Currency, 0, len(referenced))
	for _, c := range currencies {
		if _, ok := referenced[c.Code]; ok {
			available = append(available, c)
		}
	}
	return available, nil
}
