package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/apperrors"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portsrepo "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/repositories"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/models"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCurrencyRepository struct {
	BaseRepository
}

// newPgxCurrencyRepository creates a new repository for currency data.
func newPgxCurrencyRepository(pool *pgxpool.Pool) *PgxCurrencyRepository {
	return &PgxCurrencyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)

const upsertCurrencyQuery = `
	INSERT INTO currencies (currency_code, name, numeric_code, minor_units, created_at, last_updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (currency_code) DO UPDATE SET
		name = EXCLUDED.name,
		numeric_code = EXCLUDED.numeric_code,
		minor_units = EXCLUDED.minor_units,
		last_updated_at = EXCLUDED.last_updated_at;
`

// SaveCurrencies upserts all currencies in one transaction. created_at of existing rows is kept.
func (r *PgxCurrencyRepository) SaveCurrencies(ctx context.Context, currencies []domain.Currency) error {
	if len(currencies) == 0 {
		return nil
	}

	return r.WithinTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, c := range currencies {
			m := mapping.ToModelCurrency(c)
			batch.Queue(upsertCurrencyQuery,
				m.CurrencyCode,
				m.Name,
				m.NumericCode,
				m.MinorUnits,
				m.CreatedAt,
				m.LastUpdatedAt,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for _, c := range currencies {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to save currency %s: %w", c.Code, err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to save currencies: %w", err)
		}
		return nil
	})
}

// FindCurrencyByCode retrieves a currency by its 3-letter code.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	query := `
		SELECT currency_code, name, numeric_code, minor_units, created_at, last_updated_at
		FROM currencies
		WHERE currency_code = $1;
	`
	var modelCurr models.Currency
	err := r.Pool.QueryRow(ctx, query, currencyCode).Scan(
		&modelCurr.CurrencyCode,
		&modelCurr.Name,
		&modelCurr.NumericCode,
		&modelCurr.MinorUnits,
		&modelCurr.CreatedAt,
		&modelCurr.LastUpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find currency by code %s: %w", currencyCode, err)
	}

	domainCurr := mapping.ToDomainCurrency(modelCurr)
	return &domainCurr, nil
}

// ListCurrencies retrieves all currencies.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	query := `
		SELECT currency_code, name, numeric_code, minor_units, created_at, last_updated_at
		FROM currencies
		ORDER BY currency_code;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	modelCurrencies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Currency, error) {
		var currency models.Currency
		err := row.Scan(
			&currency.CurrencyCode,
			&currency.Name,
			&currency.NumericCode,
			&currency.MinorUnits,
			&currency.CreatedAt,
			&currency.LastUpdatedAt,
		)
		return currency, err
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan currencies: %w", err)
	}

	return mapping.ToDomainCurrencySlice(modelCurrencies), nil
}
