package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/apperrors"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portsevents "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/events"
	portsfeed "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/feed"
	portssvc "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/services"
)

type syncService struct {
	BaseService
	fetcher        portsfeed.DocumentFetcher
	decoder        portsfeed.DocumentDecoder
	reconciliation portssvc.ReconciliationSvc
	publisher      portsevents.SyncEventPublisher
	observer       portsevents.SyncObserver
	regimes        []domain.Regime
	now            func() time.Time

	// running admits one cycle at a time.
	running sync.Mutex
	state   domain.SyncState

	mu         sync.RWMutex
	phase      domain.SyncPhase
	lastReport *domain.SyncReport
}

// SyncOption configures the synchronization service.
type SyncOption func(*syncService)

// WithSyncPublisher announces every finished cycle through publisher.
func WithSyncPublisher(publisher portsevents.SyncEventPublisher) SyncOption {
	return func(s *syncService) {
		s.publisher = publisher
	}
}

// WithSyncObserver reports cycle counters to observer.
func WithSyncObserver(observer portsevents.SyncObserver) SyncOption {
	return func(s *syncService) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// WithSyncClock overrides the clock used for cycle timestamps.
func WithSyncClock(now func() time.Time) SyncOption {
	return func(s *syncService) {
		s.now = now
	}
}

// NewSyncService creates the orchestrator of fetch, decode and reconcile cycles.
func NewSyncService(
	fetcher portsfeed.DocumentFetcher,
	decoder portsfeed.DocumentDecoder,
	reconciliation portssvc.ReconciliationSvc,
	options ...SyncOption,
) portssvc.SyncSvc {
	svc := &syncService{
		fetcher:        fetcher,
		decoder:        decoder,
		reconciliation: reconciliation,
		observer:       nopObserver{},
		regimes:        domain.Regimes(),
		now:            time.Now,
		phase:          domain.SyncIdle,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.SyncSvc = (*syncService)(nil)

// Synchronize runs one cycle: the currency catalogue first, then each regime's current rates
// against that same catalogue. The first failing step aborts the cycle; writes made by earlier
// steps stay in place.
func (s *syncService) Synchronize(ctx context.Context) (*domain.SyncReport, error) {
	if !s.running.TryLock() {
		s.LogWarn(ctx, "Synchronization skipped, another cycle is running")
		return nil, apperrors.ErrSyncInProgress
	}
	defer s.running.Unlock()

	startedAt := s.now().UTC()
	report := &domain.SyncReport{
		StartedAt: startedAt,
		Regimes:   []domain.RegimeSyncResult{},
	}
	s.LogInfo(ctx, "Synchronization started")

	err := s.runCycle(ctx, report)

	report.FinishedAt = s.now().UTC()
	report.Succeeded = err == nil
	if err != nil {
		report.Error = err.Error()
		s.LogError(ctx, err, "Synchronization failed",
			slog.Duration("duration", report.FinishedAt.Sub(startedAt)))
	} else {
		s.state.MarkSucceeded(startedAt)
		s.LogInfo(ctx, "Synchronization finished",
			slog.Int("currencies", report.CurrenciesUpserted),
			slog.Duration("duration", report.FinishedAt.Sub(startedAt)))
	}

	s.finish(report)
	s.observer.SyncFinished(*report)
	if s.publisher != nil {
		if perr := s.publisher.PublishSyncCompleted(ctx, *report); perr != nil {
			s.LogError(ctx, perr, "Failed to publish sync event")
		}
	}

	return report, err
}

func (s *syncService) runCycle(ctx context.Context, report *domain.SyncReport) error {
	s.setPhase(domain.SyncFetching)
	catalogue, err := s.fetcher.FetchCurrencyCatalogue(ctx)
	if err != nil {
		return fmt.Errorf("fetch currency catalogue: %w", err)
	}

	s.setPhase(domain.SyncDecoding)
	currencies, err := s.decoder.DecodeCurrencies(ctx, catalogue)
	if err != nil {
		return fmt.Errorf("decode currency catalogue: %w", err)
	}

	s.setPhase(domain.SyncReconciling)
	upserted, err := s.reconciliation.UpsertCurrencies(ctx, currencies)
	if err != nil {
		return fmt.Errorf("upsert currencies: %w", err)
	}
	report.CurrenciesUpserted = upserted

	index, err := s.reconciliation.BuildCurrencyIndex(ctx)
	if err != nil {
		return fmt.Errorf("build currency index: %w", err)
	}

	for _, regime := range s.regimes {
		result, err := s.syncRegime(ctx, regime, index)
		report.Regimes = append(report.Regimes, result)
		if err != nil {
			return fmt.Errorf("%s rates: %w", regime, err)
		}
	}
	return nil
}

func (s *syncService) syncRegime(ctx context.Context, regime domain.Regime, index domain.CurrencyIndex) (domain.RegimeSyncResult, error) {
	result := domain.RegimeSyncResult{Regime: regime}

	s.setPhase(domain.SyncFetching)
	doc, err := s.fetcher.FetchCurrentRates(ctx, regime)
	if err != nil {
		return result, fmt.Errorf("fetch: %w", err)
	}

	s.setPhase(domain.SyncDecoding)
	drafts, err := s.decoder.DecodeRates(ctx, doc)
	if err != nil {
		return result, fmt.Errorf("decode: %w", err)
	}
	result.Decoded = len(drafts)

	s.setPhase(domain.SyncReconciling)
	for _, draft := range drafts {
		snapshot, reason, err := s.reconciliation.AppendRateSnapshot(ctx, regime, draft, index)
		if err != nil {
			return result, fmt.Errorf("append snapshot: %w", err)
		}
		if reason != domain.SkipNone {
			result.Skipped++
			continue
		}
		result.Appended++
		result.DroppedComponents += len(draft.Amounts) - len(snapshot.Amounts)
		s.observer.SnapshotAppended(regime)
	}

	s.LogInfo(ctx, "Regime rates reconciled",
		slog.String("regime", regime.String()),
		slog.Int("decoded", result.Decoded),
		slog.Int("appended", result.Appended),
		slog.Int("skipped", result.Skipped),
		slog.Int("dropped_components", result.DroppedComponents))
	return result, nil
}

func (s *syncService) LastSuccessfulSync() (time.Time, bool) {
	return s.state.LastSuccessfulSync()
}

func (s *syncService) Phase() domain.SyncPhase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *syncService) LastReport() *domain.SyncReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastReport == nil {
		return nil
	}
	report := *s.lastReport
	report.Regimes = append([]domain.RegimeSyncResult(nil), s.lastReport.Regimes...)
	return &report
}

func (s *syncService) setPhase(phase domain.SyncPhase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = phase
}

func (s *syncService) finish(report *domain.SyncReport) {
	stored := *report
	stored.Regimes = append([]domain.RegimeSyncResult(nil), report.Regimes...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = domain.SyncIdle
	s.lastReport = &stored
}
