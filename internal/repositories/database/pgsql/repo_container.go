package pgsql

import (
	portsrepo "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the Postgres-backed repositories. The caller owns dbPool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	currencyRepo := newPgxCurrencyRepository(dbPool)
	rateSnapshotRepo := newPgxRateSnapshotRepository(dbPool, currencyRepo)

	return portsrepo.RepositoryProvider{
		CurrencyRepo:     currencyRepo,
		RateSnapshotRepo: rateSnapshotRepo,
	}
}
