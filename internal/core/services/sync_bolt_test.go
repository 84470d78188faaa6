package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/apperrors"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portsrepo "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/repositories"
	portssvc "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/services"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/services"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/feed/fxxml"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/repositories/database/bolt"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const serviceUnavailablePage = `<html><body>Service Unavailable</body></html>`

const localRatesErrorDoc = `<FxRates xmlns="http://www.lb.lt/WebServices/FxRates">
  <OprlErr><Err><Prtry><Cd>1</Cd></Prtry><Desc>Service temporarily unavailable</Desc></Err></OprlErr>
</FxRates>`

// SyncBoltTestSuite runs the real decoder and reconciliation engine against a bolt store.
type SyncBoltTestSuite struct {
	suite.Suite
	ctx            context.Context
	now            time.Time
	provider       portsrepo.RepositoryProvider
	fetcher        *MockFetcher
	decoder        *fxxml.Decoder
	reconciliation portssvc.ReconciliationSvc
	service        portssvc.SyncSvc
}

func (suite *SyncBoltTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.now = time.Date(2024, time.March, 4, 6, 30, 0, 0, time.UTC)

	db, err := bolt.Open(filepath.Join(suite.T().TempDir(), "fxrates.db"))
	suite.Require().NoError(err)
	suite.provider = bolt.NewRepositoryProvider(db)

	clock := func() time.Time { return suite.now }
	suite.fetcher = new(MockFetcher)
	suite.decoder = fxxml.NewDecoder()
	suite.reconciliation = services.NewReconciliationService(
		suite.provider.CurrencyRepo,
		suite.provider.RateSnapshotRepo,
		services.WithClock(clock),
	)
	suite.service = services.NewSyncService(suite.fetcher, suite.decoder, suite.reconciliation,
		services.WithSyncClock(clock))
}

func (suite *SyncBoltTestSuite) TearDownTest() {
	suite.Require().NoError(suite.provider.Closer.Close())
}

func (suite *SyncBoltTestSuite) TestSynchronize_SkipsSnapshotLeftWithOnlyTheAnchor() {
	suite.fetcher.On("FetchCurrencyCatalogue", mock.Anything).Return(syncCatalogueDoc, nil).Once()
	suite.fetcher.On("FetchCurrentRates", mock.Anything, domain.RegimeLocal).Return(syncLocalRatesDoc, nil).Once()
	suite.fetcher.On("FetchCurrentRates", mock.Anything, domain.RegimeEuroArea).Return(syncEuroRatesDoc, nil).Once()

	report, err := suite.service.Synchronize(suite.ctx)

	suite.Require().NoError(err)
	suite.True(report.Succeeded)
	suite.Require().Len(report.Regimes, 2)
	suite.Equal(domain.RegimeSyncResult{Regime: domain.RegimeLocal, Decoded: 1, Appended: 1}, report.Regimes[0])
	suite.Equal(domain.RegimeSyncResult{Regime: domain.RegimeEuroArea, Decoded: 2, Appended: 1, Skipped: 1}, report.Regimes[1])

	snapshots, err := suite.provider.RateSnapshotRepo.ListRateSnapshots(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(snapshots, 2)
	for _, s := range snapshots {
		suite.Require().Len(s.Amounts, 2)
		suite.Equal("USD", s.Amounts[1].TargetCurrency.Code)
		suite.True(s.Amounts[1].Amount.Equal(s.Rate), "headline %s must match the USD component", s.Rate)
	}

	last, ok := suite.service.LastSuccessfulSync()
	suite.True(ok)
	suite.Equal(domain.TruncateToDate(suite.now), last)
}

func (suite *SyncBoltTestSuite) TestSynchronize_ErrorPageDoesNotMarkSuccess() {
	suite.fetcher.On("FetchCurrencyCatalogue", mock.Anything).Return(serviceUnavailablePage, nil).Once()

	report, err := suite.service.Synchronize(suite.ctx)

	suite.ErrorIs(err, apperrors.ErrDecode)
	suite.Require().NotNil(report)
	suite.False(report.Succeeded)
	_, ok := suite.service.LastSuccessfulSync()
	suite.False(ok)

	currencies, err := suite.provider.CurrencyRepo.ListCurrencies(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(currencies)
	suite.fetcher.AssertNotCalled(suite.T(), "FetchCurrentRates", mock.Anything, mock.Anything)
}

func (suite *SyncBoltTestSuite) TestSynchronize_UpstreamErrorEnvelopeKeepsCatalogue() {
	suite.fetcher.On("FetchCurrencyCatalogue", mock.Anything).Return(syncCatalogueDoc, nil).Once()
	suite.fetcher.On("FetchCurrentRates", mock.Anything, domain.RegimeLocal).Return(localRatesErrorDoc, nil).Once()

	report, err := suite.service.Synchronize(suite.ctx)

	suite.ErrorIs(err, apperrors.ErrDecode)
	suite.Contains(err.Error(), "Service temporarily unavailable")
	suite.False(report.Succeeded)
	_, ok := suite.service.LastSuccessfulSync()
	suite.False(ok)

	currencies, err := suite.provider.CurrencyRepo.ListCurrencies(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(currencies, 2, "catalogue written before the failing step stays")
	snapshots, err := suite.provider.RateSnapshotRepo.ListRateSnapshots(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(snapshots)
	suite.fetcher.AssertNotCalled(suite.T(), "FetchCurrentRates", mock.Anything, domain.RegimeEuroArea)
}

func (suite *SyncBoltTestSuite) TestUpsertCurrencies_RepeatedCatalogueIsIdempotent() {
	firstRun := suite.now
	upsertCatalogue := func() []domain.Currency {
		decoded, err := suite.decoder.DecodeCurrencies(suite.ctx, syncCatalogueDoc)
		suite.Require().NoError(err)
		count, err := suite.reconciliation.UpsertCurrencies(suite.ctx, decoded)
		suite.Require().NoError(err)
		suite.Equal(len(decoded), count)

		stored, err := suite.provider.CurrencyRepo.ListCurrencies(suite.ctx)
		suite.Require().NoError(err)
		return stored
	}

	first := upsertCatalogue()
	suite.now = suite.now.Add(24 * time.Hour)
	second := upsertCatalogue()

	suite.Require().Len(first, 2)
	suite.Require().Len(second, len(first))
	for i := range first {
		suite.Equal(first[i].Code, second[i].Code)
		suite.Equal(first[i].Name, second[i].Name)
		suite.Equal(*first[i].NumericCode, *second[i].NumericCode)
		suite.Equal(first[i].MinorUnits, second[i].MinorUnits)
		suite.True(second[i].CreatedAt.Equal(firstRun), "created at must survive the second upsert")
		suite.True(second[i].LastUpdatedAt.Equal(suite.now))
	}
}

func TestSyncBoltTestSuite(t *testing.T) {
	suite.Run(t, new(SyncBoltTestSuite))
}
