package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/apperrors"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portssvc "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/services"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/services"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/feed/fxxml"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	syncCatalogueDoc = `<CcyTbl xmlns="http://www.lb.lt/WebServices/FxRates">
  <CcyNtry><Ccy>EUR</Ccy><CcyNm lang="EN">Euro</CcyNm><CcyNbr>978</CcyNbr><CcyMnrUnts>2</CcyMnrUnts></CcyNtry>
  <CcyNtry><Ccy>USD</Ccy><CcyNm lang="EN">US dollar</CcyNm><CcyNbr>840</CcyNbr><CcyMnrUnts>2</CcyMnrUnts></CcyNtry>
</CcyTbl>`

	syncLocalRatesDoc = `<FxRates xmlns="http://www.lb.lt/WebServices/FxRates">
  <FxRate><Tp>LT</Tp><Dt>2024-03-03</Dt>
    <CcyAmt><Ccy>EUR</Ccy><Amt>1</Amt></CcyAmt>
    <CcyAmt><Ccy>USD</Ccy><Amt>1.0849</Amt></CcyAmt>
  </FxRate>
</FxRates>`

	syncEuroRatesDoc = `<FxRates xmlns="http://www.lb.lt/WebServices/FxRates">
  <FxRate><Tp>EU</Tp><Dt>2024-03-01</Dt>
    <CcyAmt><Ccy>EUR</Ccy><Amt>1</Amt></CcyAmt>
    <CcyAmt><Ccy>USD</Ccy><Amt>1.0823</Amt></CcyAmt>
  </FxRate>
  <FxRate><Tp>EU</Tp><Dt>2024-03-01</Dt>
    <CcyAmt><Ccy>EUR</Ccy><Amt>1</Amt></CcyAmt>
    <CcyAmt><Ccy>XAU</Ccy><Amt>0.0005</Amt></CcyAmt>
  </FxRate>
</FxRates>`
)

type SyncServiceTestSuite struct {
	suite.Suite
	ctx            context.Context
	startedAt      time.Time
	fetcher        *MockFetcher
	reconciliation *MockReconciliation
	publisher      *MockPublisher
	service        portssvc.SyncSvc
}

func (suite *SyncServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.startedAt = time.Date(2024, time.March, 4, 6, 30, 0, 0, time.UTC)
	suite.fetcher = new(MockFetcher)
	suite.reconciliation = new(MockReconciliation)
	suite.publisher = new(MockPublisher)
	suite.service = services.NewSyncService(suite.fetcher, fxxml.NewDecoder(), suite.reconciliation,
		services.WithSyncPublisher(suite.publisher),
		services.WithSyncClock(func() time.Time { return suite.startedAt }))
}

func (suite *SyncServiceTestSuite) expectCatalogue() {
	index := testIndex("EUR", "USD")
	suite.fetcher.On("FetchCurrencyCatalogue", mock.Anything).Return(syncCatalogueDoc, nil).Once()
	suite.reconciliation.On("UpsertCurrencies", mock.Anything, mock.MatchedBy(func(cs []domain.Currency) bool {
		return len(cs) == 2 && cs[0].Code == "EUR" && cs[1].Code == "USD"
	})).Return(2, nil).Once()
	suite.reconciliation.On("BuildCurrencyIndex", mock.Anything).Return(index, nil).Once()
}

func (suite *SyncServiceTestSuite) expectAppend(regime domain.Regime, headline string, reason domain.SkipReason) {
	matcher := mock.MatchedBy(func(d domain.RateSnapshotDraft) bool {
		return len(d.Amounts) == 2 && d.Amounts[1].CurrencyCode == headline
	})
	if reason != domain.SkipNone {
		suite.reconciliation.On("AppendRateSnapshot", mock.Anything, regime, matcher, mock.Anything).
			Return(nil, reason, nil).Once()
		return
	}
	suite.reconciliation.On("AppendRateSnapshot", mock.Anything, regime, matcher, mock.Anything).
		Return(anchorSnapshot(regime, testDate, headline, "1"), domain.SkipNone, nil).Once()
}

func (suite *SyncServiceTestSuite) TestSynchronize_FullCycle() {
	suite.expectCatalogue()
	suite.fetcher.On("FetchCurrentRates", mock.Anything, domain.RegimeLocal).Return(syncLocalRatesDoc, nil).Once()
	suite.fetcher.On("FetchCurrentRates", mock.Anything, domain.RegimeEuroArea).Return(syncEuroRatesDoc, nil).Once()
	suite.expectAppend(domain.RegimeLocal, "USD", domain.SkipNone)
	suite.expectAppend(domain.RegimeEuroArea, "USD", domain.SkipNone)
	suite.expectAppend(domain.RegimeEuroArea, "XAU", domain.SkipNoComponents)
	suite.publisher.On("PublishSyncCompleted", mock.Anything, mock.MatchedBy(func(r domain.SyncReport) bool {
		return r.Succeeded
	})).Return(nil).Once()

	_, ok := suite.service.LastSuccessfulSync()
	suite.False(ok)

	report, err := suite.service.Synchronize(suite.ctx)

	suite.Require().NoError(err)
	suite.True(report.Succeeded)
	suite.Equal(2, report.CurrenciesUpserted)
	suite.Require().Len(report.Regimes, 2)
	suite.Equal(domain.RegimeSyncResult{Regime: domain.RegimeLocal, Decoded: 1, Appended: 1}, report.Regimes[0])
	suite.Equal(domain.RegimeSyncResult{Regime: domain.RegimeEuroArea, Decoded: 2, Appended: 1, Skipped: 1}, report.Regimes[1])

	last, ok := suite.service.LastSuccessfulSync()
	suite.True(ok)
	suite.Equal(domain.TruncateToDate(suite.startedAt), last)
	suite.Equal(domain.SyncIdle, suite.service.Phase())
	suite.Equal(report, suite.service.LastReport())

	suite.fetcher.AssertExpectations(suite.T())
	suite.reconciliation.AssertExpectations(suite.T())
	suite.publisher.AssertExpectations(suite.T())
}

func (suite *SyncServiceTestSuite) TestSynchronize_RegimeFailureKeepsEarlierWrites() {
	suite.expectCatalogue()
	suite.fetcher.On("FetchCurrentRates", mock.Anything, domain.RegimeLocal).Return(syncLocalRatesDoc, nil).Once()
	suite.fetcher.On("FetchCurrentRates", mock.Anything, domain.RegimeEuroArea).
		Return("", apperrors.ErrTransport).Once()
	suite.expectAppend(domain.RegimeLocal, "USD", domain.SkipNone)
	suite.publisher.On("PublishSyncCompleted", mock.Anything, mock.MatchedBy(func(r domain.SyncReport) bool {
		return !r.Succeeded && r.Error != ""
	})).Return(nil).Once()

	report, err := suite.service.Synchronize(suite.ctx)

	suite.ErrorIs(err, apperrors.ErrTransport)
	suite.Require().NotNil(report)
	suite.False(report.Succeeded)
	suite.Require().Len(report.Regimes, 2)
	suite.Equal(1, report.Regimes[0].Appended)
	suite.Equal(0, report.Regimes[1].Decoded)

	_, ok := suite.service.LastSuccessfulSync()
	suite.False(ok, "a failed cycle must not advance the last successful sync")
	suite.reconciliation.AssertNumberOfCalls(suite.T(), "AppendRateSnapshot", 1)
}

func (suite *SyncServiceTestSuite) TestSynchronize_MalformedCatalogueAbortsBeforeWrites() {
	suite.fetcher.On("FetchCurrencyCatalogue", mock.Anything).Return("<CcyTbl", nil).Once()
	suite.publisher.On("PublishSyncCompleted", mock.Anything, mock.Anything).Return(nil).Once()

	report, err := suite.service.Synchronize(suite.ctx)

	suite.ErrorIs(err, apperrors.ErrDecode)
	suite.False(report.Succeeded)
	suite.Empty(report.Regimes)
	suite.reconciliation.AssertNotCalled(suite.T(), "UpsertCurrencies", mock.Anything, mock.Anything)
	suite.fetcher.AssertNotCalled(suite.T(), "FetchCurrentRates", mock.Anything, mock.Anything)
}

func (suite *SyncServiceTestSuite) TestSynchronize_PublishFailureDoesNotFailCycle() {
	suite.expectCatalogue()
	suite.fetcher.On("FetchCurrentRates", mock.Anything, domain.RegimeLocal).Return(syncLocalRatesDoc, nil).Once()
	suite.fetcher.On("FetchCurrentRates", mock.Anything, domain.RegimeEuroArea).Return(syncEuroRatesDoc, nil).Once()
	suite.expectAppend(domain.RegimeLocal, "USD", domain.SkipNone)
	suite.expectAppend(domain.RegimeEuroArea, "USD", domain.SkipNone)
	suite.expectAppend(domain.RegimeEuroArea, "XAU", domain.SkipNoComponents)
	suite.publisher.On("PublishSyncCompleted", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	report, err := suite.service.Synchronize(suite.ctx)

	suite.Require().NoError(err)
	suite.True(report.Succeeded)
}

func (suite *SyncServiceTestSuite) TestSynchronize_RejectsOverlappingCycle() {
	entered := make(chan struct{})
	release := make(chan struct{})
	suite.fetcher.On("FetchCurrencyCatalogue", mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return("", apperrors.ErrTransport).Once()
	suite.publisher.On("PublishSyncCompleted", mock.Anything, mock.Anything).Return(nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := suite.service.Synchronize(suite.ctx)
		done <- err
	}()
	<-entered

	suite.Equal(domain.SyncFetching, suite.service.Phase())
	report, err := suite.service.Synchronize(suite.ctx)
	suite.ErrorIs(err, apperrors.ErrSyncInProgress)
	suite.Nil(report)

	close(release)
	suite.ErrorIs(<-done, apperrors.ErrTransport)
	suite.fetcher.AssertNumberOfCalls(suite.T(), "FetchCurrencyCatalogue", 1)
}

func (suite *SyncServiceTestSuite) TestLastReport_IsACopy() {
	suite.Nil(suite.service.LastReport())

	suite.fetcher.On("FetchCurrencyCatalogue", mock.Anything).Return("", apperrors.ErrTransport).Once()
	suite.publisher.On("PublishSyncCompleted", mock.Anything, mock.Anything).Return(nil).Once()
	_, _ = suite.service.Synchronize(suite.ctx)

	first := suite.service.LastReport()
	suite.Require().NotNil(first)
	first.Error = "changed"
	suite.NotEqual("changed", suite.service.LastReport().Error)
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}
