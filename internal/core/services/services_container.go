package services

import (
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/events"
	portsfeed "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/feed"
	portsrepo "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/repositories"
	portssvc "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/services"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/feed/fxxml"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	fetcher portsfeed.DocumentFetcher,
	publisher events.SyncEventPublisher,
	observer events.SyncObserver,
) *portssvc.ServiceContainer {
	decoder := fxxml.NewDecoder()

	container := &portssvc.ServiceContainer{}

	container.Currency = NewCurrencyService(repos.CurrencyRepo, repos.RateSnapshotRepo)

	crossRate := NewCrossRateService(repos.RateSnapshotRepo, cfg.CrossRateRegime)
	container.FxRate = NewFxRateService(repos.RateSnapshotRepo, repos.CurrencyRepo, crossRate, fetcher, decoder)

	container.Reconciliation = NewReconciliationService(
		repos.CurrencyRepo,
		repos.RateSnapshotRepo,
		WithDuplicateSnapshotSkipping(cfg.SkipDuplicateSnapshots),
		WithReconciliationObserver(observer),
	)

	container.Sync = NewSyncService(
		fetcher,
		decoder,
		container.Reconciliation,
		WithSyncPublisher(publisher),
		WithSyncObserver(observer),
	)

	return container
}
