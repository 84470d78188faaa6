package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portsevents "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/events"
	portsrepo "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/repositories"
	portssvc "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type reconciliationService struct {
	BaseService
	currencyRepo     portsrepo.CurrencyRepositoryFacade
	rateSnapshotRepo portsrepo.RateSnapshotRepositoryFacade
	observer         portsevents.SyncObserver
	skipDuplicates   bool
	now              func() time.Time
}

// ReconciliationOption configures the reconciliation service.
type ReconciliationOption func(*reconciliationService)

// WithDuplicateSnapshotSkipping makes AppendRateSnapshot reject drafts whose (regime, date,
// currency) is already stored.
func WithDuplicateSnapshotSkipping(enabled bool) ReconciliationOption {
	return func(s *reconciliationService) {
		s.skipDuplicates = enabled
	}
}

// WithReconciliationObserver reports skipped records to observer.
func WithReconciliationObserver(observer portsevents.SyncObserver) ReconciliationOption {
	return func(s *reconciliationService) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// WithClock overrides the clock used for audit timestamps.
func WithClock(now func() time.Time) ReconciliationOption {
	return func(s *reconciliationService) {
		s.now = now
	}
}

// NewReconciliationService creates the service that merges decoded records into the store.
func NewReconciliationService(
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	rateSnapshotRepo portsrepo.RateSnapshotRepositoryFacade,
	options ...ReconciliationOption,
) portssvc.ReconciliationSvc {
	svc := &reconciliationService{
		currencyRepo:     currencyRepo,
		rateSnapshotRepo: rateSnapshotRepo,
		observer:         nopObserver{},
		now:              time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReconciliationSvc = (*reconciliationService)(nil)

// UpsertCurrencies writes every valid currency in one store call. Entries without a code or
// numeric code are skipped.
func (s *reconciliationService) UpsertCurrencies(ctx context.Context, currencies []domain.Currency) (int, error) {
	now := s.now().UTC()
	valid := make([]domain.Currency, 0, len(currencies))
	seen := make(map[string]int, len(currencies))

	for _, c := range currencies {
		c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
		if c.Code == "" || c.NumericCode == nil {
			s.LogInfo(ctx, "Skipping currency without a valid numeric code",
				slog.String("currency_code", c.Code),
				slog.String("reason", string(domain.SkipInvalidNumericCode)))
			s.observer.RecordSkipped(domain.SkipInvalidNumericCode)
			continue
		}
		c.CreatedAt = now
		c.LastUpdatedAt = now

		// A later entry for the same code wins, as it would with sequential upserts.
		if i, dup := seen[c.Code]; dup {
			valid[i] = c
			continue
		}
		seen[c.Code] = len(valid)
		valid = append(valid, c)
	}

	if err := s.currencyRepo.SaveCurrencies(ctx, valid); err != nil {
		s.LogError(ctx, err, "Failed to upsert currencies", slog.Int("count", len(valid)))
		return 0, fmt.Errorf("failed to upsert currencies: %w", err)
	}

	s.LogInfo(ctx, "Currencies upserted", slog.Int("count", len(valid)))
	return len(valid), nil
}

func (s *reconciliationService) BuildCurrencyIndex(ctx context.Context) (domain.CurrencyIndex, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load currencies for index")
		return nil, fmt.Errorf("failed to build currency index: %w", err)
	}
	return domain.NewCurrencyIndex(currencies), nil
}

func (s *reconciliationService) AppendRateSnapshot(ctx context.Context, regime domain.Regime, draft domain.RateSnapshotDraft, index domain.CurrencyIndex) (*domain.RateSnapshot, domain.SkipReason, error) {
	logger := s.GetLogger(ctx).With(
		slog.String("regime", regime.String()),
		slog.String("date", draft.Date.Format(domain.DateLayout)),
	)

	snapshot, reason, dropped := resolveDraft(regime, draft, index)
	for _, d := range dropped {
		logger.Warn("Dropping rate component",
			slog.String("currency_code", d.code),
			slog.String("reason", string(d.reason)))
		s.observer.RecordSkipped(d.reason)
	}
	if reason != domain.SkipNone {
		logger.Warn("Skipping rate snapshot",
			slog.String("base_currency", draft.BaseCurrencyCode),
			slog.String("regime_label", draft.RegimeLabel),
			slog.String("reason", string(reason)))
		s.observer.RecordSkipped(reason)
		return nil, reason, nil
	}

	if s.skipDuplicates {
		exists, err := s.rateSnapshotRepo.ExistsSnapshot(ctx, regime, snapshot.Date, headlineCode(snapshot))
		if err != nil {
			s.LogError(ctx, err, "Failed to check for an existing rate snapshot")
			return nil, domain.SkipNone, fmt.Errorf("failed to check existing snapshot: %w", err)
		}
		if exists {
			logger.Info("Skipping already stored rate snapshot", slog.String("currency_code", headlineCode(snapshot)))
			s.observer.RecordSkipped(domain.SkipDuplicateSnapshot)
			return nil, domain.SkipDuplicateSnapshot, nil
		}
	}

	snapshot.ID = uuid.NewString()
	snapshot.CreatedAt = s.now().UTC()

	saved, err := s.rateSnapshotRepo.SaveRateSnapshot(ctx, snapshot)
	if err != nil {
		s.LogError(ctx, err, "Failed to append rate snapshot", slog.String("regime", regime.String()))
		return nil, domain.SkipNone, fmt.Errorf("failed to append rate snapshot: %w", err)
	}

	if len(dropped) > 0 {
		logger.Info("Rate snapshot stored with dropped components", slog.Int("dropped", len(dropped)))
	}
	return saved, domain.SkipNone, nil
}

type droppedComponent struct {
	code   string
	reason domain.SkipReason
}

// resolveDraft turns a decoded draft into an unsaved snapshot of regime. Components that cannot
// be resolved, or carry a negative amount, are dropped and reported instead of failing the draft.
// The headline rate is the first kept non-anchor amount; a draft keeping none is skipped.
func resolveDraft(regime domain.Regime, draft domain.RateSnapshotDraft, index domain.CurrencyIndex) (domain.RateSnapshot, domain.SkipReason, []droppedComponent) {
	if label, err := domain.ParseRegime(draft.RegimeLabel); err != nil || label != regime {
		return domain.RateSnapshot{}, domain.SkipRegimeMismatch, nil
	}

	baseCode := strings.ToUpper(strings.TrimSpace(draft.BaseCurrencyCode))
	if baseCode == "" || baseCode == domain.NumericCodeSentinel {
		return domain.RateSnapshot{}, domain.SkipInvalidBaseCurrency, nil
	}
	base, ok := index.Lookup(baseCode)
	if !ok {
		return domain.RateSnapshot{}, domain.SkipUnresolvedBase, nil
	}

	var dropped []droppedComponent
	headline, hasHeadline := decimal.Zero, false
	amounts := make([]domain.RateComponent, 0, len(draft.Amounts))
	for _, a := range draft.Amounts {
		code := strings.ToUpper(strings.TrimSpace(a.CurrencyCode))
		target, ok := index.Lookup(code)
		if !ok {
			dropped = append(dropped, droppedComponent{code: code, reason: domain.SkipUnresolvedTarget})
			continue
		}
		if a.Amount.IsNegative() {
			dropped = append(dropped, droppedComponent{code: code, reason: domain.SkipNegativeAmount})
			continue
		}
		amounts = append(amounts, domain.RateComponent{Amount: a.Amount, TargetCurrency: target})
		if !hasHeadline && !target.IsAnchor() {
			headline, hasHeadline = a.Amount, true
		}
	}
	// The anchor alone says nothing about any other currency.
	if !hasHeadline {
		return domain.RateSnapshot{}, domain.SkipNoComponents, dropped
	}

	return domain.RateSnapshot{
		Date:         domain.TruncateToDate(draft.Date),
		Regime:       regime,
		BaseCurrency: base,
		Rate:         headline,
		Amounts:      amounts,
	}, domain.SkipNone, dropped
}

// headlineCode is the currency a snapshot is about: its first non-anchor component.
func headlineCode(snapshot domain.RateSnapshot) string {
	for _, a := range snapshot.Amounts {
		if !a.TargetCurrency.IsAnchor() {
			return a.TargetCurrency.Code
		}
	}
	return domain.AnchorCurrency
}
