package services_test

import (
	"context"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockCurrencyRepository is a mock type for the CurrencyRepositoryFacade interface
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) SaveCurrencies(ctx context.Context, currencies []domain.Currency) error {
	args := m.Called(ctx, currencies)
	return args.Error(0)
}

// MockRateSnapshotRepository is a mock type for the RateSnapshotRepositoryFacade interface
type MockRateSnapshotRepository struct {
	mock.Mock
}

func (m *MockRateSnapshotRepository) ListRateSnapshots(ctx context.Context) ([]domain.RateSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateSnapshot), args.Error(1)
}

func (m *MockRateSnapshotRepository) FindLatestSnapshot(ctx context.Context, regime domain.Regime, currencyCode string) (*domain.RateSnapshot, error) {
	args := m.Called(ctx, regime, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateSnapshot), args.Error(1)
}

func (m *MockRateSnapshotRepository) FindLatestSnapshotDate(ctx context.Context, regime domain.Regime) (time.Time, error) {
	args := m.Called(ctx, regime)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockRateSnapshotRepository) ListSnapshotsByDate(ctx context.Context, regime domain.Regime, date time.Time) ([]domain.RateSnapshot, error) {
	args := m.Called(ctx, regime, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateSnapshot), args.Error(1)
}

func (m *MockRateSnapshotRepository) ListSnapshotsForCurrencyInRange(ctx context.Context, regime domain.Regime, currencyCode string, from, to time.Time) ([]domain.RateSnapshot, error) {
	args := m.Called(ctx, regime, currencyCode, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateSnapshot), args.Error(1)
}

func (m *MockRateSnapshotRepository) ExistsSnapshot(ctx context.Context, regime domain.Regime, date time.Time, currencyCode string) (bool, error) {
	args := m.Called(ctx, regime, date, currencyCode)
	return args.Bool(0), args.Error(1)
}

func (m *MockRateSnapshotRepository) ListReferencedCurrencyCodes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRateSnapshotRepository) SaveRateSnapshot(ctx context.Context, snapshot domain.RateSnapshot) (*domain.RateSnapshot, error) {
	args := m.Called(ctx, snapshot)
	if fn, ok := args.Get(0).(func(context.Context, domain.RateSnapshot) *domain.RateSnapshot); ok {
		return fn(ctx, snapshot), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateSnapshot), args.Error(1)
}

// MockFetcher is a mock type for the DocumentFetcher interface
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchCurrencyCatalogue(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockFetcher) FetchCurrentRates(ctx context.Context, regime domain.Regime) (string, error) {
	args := m.Called(ctx, regime)
	return args.String(0), args.Error(1)
}

func (m *MockFetcher) FetchRatesOnDate(ctx context.Context, regime domain.Regime, date time.Time) (string, error) {
	args := m.Called(ctx, regime, date)
	return args.String(0), args.Error(1)
}

func (m *MockFetcher) FetchRatesInRange(ctx context.Context, regime domain.Regime, currencyCode string, from, to time.Time) (string, error) {
	args := m.Called(ctx, regime, currencyCode, from, to)
	return args.String(0), args.Error(1)
}

// MockReconciliation is a mock type for the ReconciliationSvc interface
type MockReconciliation struct {
	mock.Mock
}

func (m *MockReconciliation) UpsertCurrencies(ctx context.Context, currencies []domain.Currency) (int, error) {
	args := m.Called(ctx, currencies)
	return args.Int(0), args.Error(1)
}

func (m *MockReconciliation) BuildCurrencyIndex(ctx context.Context) (domain.CurrencyIndex, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.CurrencyIndex), args.Error(1)
}

func (m *MockReconciliation) AppendRateSnapshot(ctx context.Context, regime domain.Regime, draft domain.RateSnapshotDraft, index domain.CurrencyIndex) (*domain.RateSnapshot, domain.SkipReason, error) {
	args := m.Called(ctx, regime, draft, index)
	if args.Get(0) == nil {
		return nil, args.Get(1).(domain.SkipReason), args.Error(2)
	}
	return args.Get(0).(*domain.RateSnapshot), args.Get(1).(domain.SkipReason), args.Error(2)
}

// MockPublisher is a mock type for the SyncEventPublisher interface
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishSyncCompleted(ctx context.Context, report domain.SyncReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}
