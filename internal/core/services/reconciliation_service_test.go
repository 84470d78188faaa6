package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portssvc "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/services"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReconciliationServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	now          time.Time
	currencyRepo *MockCurrencyRepository
	snapshotRepo *MockRateSnapshotRepository
	service      portssvc.ReconciliationSvc
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.now = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	suite.currencyRepo = new(MockCurrencyRepository)
	suite.snapshotRepo = new(MockRateSnapshotRepository)
	suite.service = services.NewReconciliationService(suite.currencyRepo, suite.snapshotRepo,
		services.WithClock(func() time.Time { return suite.now }))
}

func (suite *ReconciliationServiceTestSuite) returnSaved() {
	suite.snapshotRepo.On("SaveRateSnapshot", suite.ctx, mock.AnythingOfType("domain.RateSnapshot")).
		Return(func(_ context.Context, s domain.RateSnapshot) *domain.RateSnapshot { return &s }, nil)
}

func (suite *ReconciliationServiceTestSuite) TestUpsertCurrencies_SkipsMissingNumericCodeAndStamps() {
	input := []domain.Currency{
		{Code: "usd", Name: "US dollar", NumericCode: intPtr(840)},
		{Code: "XAU", Name: "Gold"},
		{Code: "GBP", Name: "Pound", NumericCode: intPtr(826)},
	}
	suite.currencyRepo.On("SaveCurrencies", suite.ctx, mock.MatchedBy(func(cs []domain.Currency) bool {
		return len(cs) == 2 && cs[0].Code == "USD" && cs[1].Code == "GBP" &&
			cs[0].CreatedAt.Equal(suite.now) && cs[0].LastUpdatedAt.Equal(suite.now)
	})).Return(nil).Once()

	count, err := suite.service.UpsertCurrencies(suite.ctx, input)

	suite.Require().NoError(err)
	suite.Equal(2, count)
	suite.currencyRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestUpsertCurrencies_LaterDuplicateWins() {
	input := []domain.Currency{
		{Code: "USD", Name: "old", NumericCode: intPtr(840)},
		{Code: "USD", Name: "new", NumericCode: intPtr(840)},
	}
	suite.currencyRepo.On("SaveCurrencies", suite.ctx, mock.MatchedBy(func(cs []domain.Currency) bool {
		return len(cs) == 1 && cs[0].Name == "new"
	})).Return(nil).Once()

	count, err := suite.service.UpsertCurrencies(suite.ctx, input)

	suite.Require().NoError(err)
	suite.Equal(1, count)
}

func (suite *ReconciliationServiceTestSuite) TestUpsertCurrencies_StoreError() {
	suite.currencyRepo.On("SaveCurrencies", suite.ctx, mock.Anything).Return(errors.New("db down")).Once()

	_, err := suite.service.UpsertCurrencies(suite.ctx, []domain.Currency{testCurrency("USD")})

	suite.Error(err)
}

func (suite *ReconciliationServiceTestSuite) TestBuildCurrencyIndex() {
	suite.currencyRepo.On("ListCurrencies", suite.ctx).
		Return([]domain.Currency{testCurrency("EUR"), testCurrency("USD")}, nil).Once()

	idx, err := suite.service.BuildCurrencyIndex(suite.ctx)

	suite.Require().NoError(err)
	_, ok := idx.Lookup("USD")
	suite.True(ok)
	_, ok = idx.Lookup("GBP")
	suite.False(ok)
}

func (suite *ReconciliationServiceTestSuite) TestAppendRateSnapshot_Success() {
	suite.returnSaved()
	d := draft("LT", testDate, component("EUR", "1"), component("AED", "3.970040"))

	saved, reason, err := suite.service.AppendRateSnapshot(suite.ctx, domain.RegimeLocal, d, testIndex("EUR", "AED"))

	suite.Require().NoError(err)
	suite.Equal(domain.SkipNone, reason)
	suite.Require().NotNil(saved)
	suite.NotEmpty(saved.ID)
	suite.Equal(domain.RegimeLocal, saved.Regime)
	suite.Equal("EUR", saved.BaseCurrency.Code)
	suite.True(decimal.RequireFromString("3.970040").Equal(saved.Rate))
	suite.Len(saved.Amounts, 2)
	suite.Equal("AED name", saved.Amounts[1].TargetCurrency.Name)
	suite.True(saved.CreatedAt.Equal(suite.now))
}

func (suite *ReconciliationServiceTestSuite) TestAppendRateSnapshot_DropsUnresolvedAndNegativeComponents() {
	suite.returnSaved()
	d := draft("LT", testDate,
		component("EUR", "1"),
		component("AED", "3.970040"),
		component("ZZZ", "2.5"),
		component("GBP", "-0.85"),
	)

	saved, reason, err := suite.service.AppendRateSnapshot(suite.ctx, domain.RegimeLocal, d, testIndex("EUR", "AED", "GBP"))

	suite.Require().NoError(err)
	suite.Equal(domain.SkipNone, reason)
	suite.Require().Len(saved.Amounts, 2)
	suite.Equal("EUR", saved.Amounts[0].TargetCurrency.Code)
	suite.Equal("AED", saved.Amounts[1].TargetCurrency.Code)
}

func (suite *ReconciliationServiceTestSuite) TestAppendRateSnapshot_HeadlineComesFromKeptComponents() {
	suite.returnSaved()
	d := draft("EU", testDate,
		component("EUR", "1"),
		component("XAU", "0.0005"),
		component("USD", "1.0823"),
	)
	suite.True(decimal.RequireFromString("0.0005").Equal(d.Rate))

	saved, reason, err := suite.service.AppendRateSnapshot(suite.ctx, domain.RegimeEuroArea, d, testIndex("EUR", "USD"))

	suite.Require().NoError(err)
	suite.Equal(domain.SkipNone, reason)
	suite.Require().Len(saved.Amounts, 2)
	suite.Equal("USD", saved.Amounts[1].TargetCurrency.Code)
	suite.True(decimal.RequireFromString("1.0823").Equal(saved.Rate), "got %s", saved.Rate)
}

func (suite *ReconciliationServiceTestSuite) TestAppendRateSnapshot_SkipReasons() {
	tests := []struct {
		name   string
		regime domain.Regime
		draft  domain.RateSnapshotDraft
		index  domain.CurrencyIndex
		reason domain.SkipReason
	}{
		{
			name:   "sentinel base currency",
			regime: domain.RegimeLocal,
			draft: func() domain.RateSnapshotDraft {
				d := draft("LT", testDate, component("USD", "1.08"))
				d.BaseCurrencyCode = domain.NumericCodeSentinel
				return d
			}(),
			index:  testIndex("EUR", "USD"),
			reason: domain.SkipInvalidBaseCurrency,
		},
		{
			name:   "base currency not stored",
			regime: domain.RegimeLocal,
			draft:  draft("LT", testDate, component("USD", "1.08")),
			index:  testIndex("USD"),
			reason: domain.SkipUnresolvedBase,
		},
		{
			name:   "regime label differs",
			regime: domain.RegimeEuroArea,
			draft:  draft("LT", testDate, component("USD", "1.08")),
			index:  testIndex("EUR", "USD"),
			reason: domain.SkipRegimeMismatch,
		},
		{
			name:   "no resolvable components",
			regime: domain.RegimeLocal,
			draft:  draft("LT", testDate, component("ZZZ", "1.08")),
			index:  testIndex("EUR"),
			reason: domain.SkipNoComponents,
		},
		{
			name:   "only the anchor component resolves",
			regime: domain.RegimeEuroArea,
			draft:  draft("EU", testDate, component("EUR", "1"), component("XAU", "0.0005")),
			index:  testIndex("EUR", "USD"),
			reason: domain.SkipNoComponents,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			saved, reason, err := suite.service.AppendRateSnapshot(suite.ctx, tt.regime, tt.draft, tt.index)
			suite.Require().NoError(err)
			suite.Nil(saved)
			suite.Equal(tt.reason, reason)
		})
	}
	suite.snapshotRepo.AssertNotCalled(suite.T(), "SaveRateSnapshot", mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestAppendRateSnapshot_AppendsDuplicatesByDefault() {
	suite.returnSaved()
	d := draft("LT", testDate, component("EUR", "1"), component("USD", "1.08"))

	for i := 0; i < 2; i++ {
		_, reason, err := suite.service.AppendRateSnapshot(suite.ctx, domain.RegimeLocal, d, testIndex("EUR", "USD"))
		suite.Require().NoError(err)
		suite.Equal(domain.SkipNone, reason)
	}
	suite.snapshotRepo.AssertNumberOfCalls(suite.T(), "SaveRateSnapshot", 2)
	suite.snapshotRepo.AssertNotCalled(suite.T(), "ExistsSnapshot", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestAppendRateSnapshot_SkipsDuplicatesWhenEnabled() {
	service := services.NewReconciliationService(suite.currencyRepo, suite.snapshotRepo,
		services.WithDuplicateSnapshotSkipping(true))
	suite.snapshotRepo.On("ExistsSnapshot", suite.ctx, domain.RegimeLocal, testDate, "USD").Return(true, nil).Once()
	d := draft("LT", testDate, component("EUR", "1"), component("USD", "1.08"))

	saved, reason, err := service.AppendRateSnapshot(suite.ctx, domain.RegimeLocal, d, testIndex("EUR", "USD"))

	suite.Require().NoError(err)
	suite.Nil(saved)
	suite.Equal(domain.SkipDuplicateSnapshot, reason)
	suite.snapshotRepo.AssertNotCalled(suite.T(), "SaveRateSnapshot", mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestAppendRateSnapshot_StoreError() {
	suite.snapshotRepo.On("SaveRateSnapshot", suite.ctx, mock.Anything).Return(nil, errors.New("db down")).Once()
	d := draft("LT", testDate, component("EUR", "1"), component("USD", "1.08"))

	saved, reason, err := suite.service.AppendRateSnapshot(suite.ctx, domain.RegimeLocal, d, testIndex("EUR", "USD"))

	suite.Error(err)
	suite.Nil(saved)
	suite.Equal(domain.SkipNone, reason)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
