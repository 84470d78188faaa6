package repositories

import "io"

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	CurrencyRepo     CurrencyRepositoryFacade
	RateSnapshotRepo RateSnapshotRepositoryFacade
	// Closer releases the underlying store, may be nil.
	Closer io.Closer
}
