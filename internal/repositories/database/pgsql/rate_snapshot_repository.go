package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/apperrors"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portsrepo "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/repositories"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/models"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxRateSnapshotRepository stores rate snapshots in rate_snapshots and their amounts in rate_components.
type PgxRateSnapshotRepository struct {
	BaseRepository
	currencyRepo portsrepo.CurrencyReader
}

func newPgxRateSnapshotRepository(pool *pgxpool.Pool, currencyRepo portsrepo.CurrencyReader) *PgxRateSnapshotRepository {
	return &PgxRateSnapshotRepository{
		BaseRepository: BaseRepository{Pool: pool},
		currencyRepo:   currencyRepo,
	}
}

var _ portsrepo.RateSnapshotRepositoryFacade = (*PgxRateSnapshotRepository)(nil)

const selectSnapshotsQuery = `
	SELECT s.snapshot_id::text, s.rate_date, s.regime, s.base_currency_code, s.rate, s.created_at,
		c.position, c.currency_code, c.amount
	FROM rate_snapshots s
	JOIN rate_components c ON c.snapshot_id = s.snapshot_id
`

const snapshotOrder = `ORDER BY s.rate_date, s.created_at, s.snapshot_id, c.position;`

// SaveRateSnapshot inserts the snapshot header and all of its components in one transaction.
func (r *PgxRateSnapshotRepository) SaveRateSnapshot(ctx context.Context, snapshot domain.RateSnapshot) (*domain.RateSnapshot, error) {
	m := mapping.ToModelRateSnapshot(snapshot)

	err := r.WithinTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO rate_snapshots (snapshot_id, rate_date, regime, base_currency_code, rate, created_at)
			VALUES ($1, $2, $3, $4, $5, $6);`,
			m.SnapshotID, m.RateDate, m.Regime, m.BaseCurrencyCode, m.Rate, m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert rate snapshot %s: %w", m.SnapshotID, err)
		}

		batch := &pgx.Batch{}
		for _, c := range m.Components {
			batch.Queue(`
				INSERT INTO rate_components (snapshot_id, position, currency_code, amount)
				VALUES ($1, $2, $3, $4);`,
				c.SnapshotID, c.Position, c.CurrencyCode, c.Amount,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for _, c := range m.Components {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to insert component %s of snapshot %s: %w", c.CurrencyCode, m.SnapshotID, err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return nil, err
	}

	saved := snapshot
	saved.Date = m.RateDate
	return &saved, nil
}

// ListRateSnapshots retrieves every stored snapshot.
func (r *PgxRateSnapshotRepository) ListRateSnapshots(ctx context.Context) ([]domain.RateSnapshot, error) {
	return r.querySnapshots(ctx, "")
}

// FindLatestSnapshot runs its own tie check so that equal-date snapshots surface as ErrAmbiguous.
func (r *PgxRateSnapshotRepository) FindLatestSnapshot(ctx context.Context, regime domain.Regime, currencyCode string) (*domain.RateSnapshot, error) {
	query := `
		SELECT DISTINCT s.snapshot_id::text
		FROM rate_snapshots s
		JOIN rate_components c ON c.snapshot_id = s.snapshot_id
		WHERE s.regime = $1 AND c.currency_code = $2
		  AND s.rate_date = (
			SELECT MAX(s2.rate_date)
			FROM rate_snapshots s2
			JOIN rate_components c2 ON c2.snapshot_id = s2.snapshot_id
			WHERE s2.regime = $1 AND c2.currency_code = $2
		  )
		LIMIT 2;
	`
	rows, err := r.Pool.Query(ctx, query, regime.String(), currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot for %s/%s: %w", regime, currencyCode, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan latest snapshot for %s/%s: %w", regime, currencyCode, err)
	}

	switch len(ids) {
	case 0:
		return nil, apperrors.ErrNotFound
	case 1:
	default:
		return nil, fmt.Errorf("%w: several latest %s snapshots for %s", apperrors.ErrAmbiguous, regime, currencyCode)
	}

	snapshots, err := r.querySnapshots(ctx, "WHERE s.snapshot_id = $1::uuid", ids[0])
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &snapshots[0], nil
}

// FindLatestSnapshotDate returns the most recent snapshot date of a regime.
func (r *PgxRateSnapshotRepository) FindLatestSnapshotDate(ctx context.Context, regime domain.Regime) (time.Time, error) {
	var latest *time.Time
	err := r.Pool.QueryRow(ctx, `SELECT MAX(rate_date) FROM rate_snapshots WHERE regime = $1;`, regime.String()).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest %s snapshot date: %w", regime, err)
	}
	if latest == nil {
		return time.Time{}, apperrors.ErrNotFound
	}
	return domain.TruncateToDate(*latest), nil
}

// ListSnapshotsByDate retrieves the snapshots of a regime on one date.
func (r *PgxRateSnapshotRepository) ListSnapshotsByDate(ctx context.Context, regime domain.Regime, date time.Time) ([]domain.RateSnapshot, error) {
	return r.querySnapshots(ctx, "WHERE s.regime = $1 AND s.rate_date = $2",
		regime.String(), domain.TruncateToDate(date))
}

// ListSnapshotsForCurrencyInRange retrieves a currency's snapshots between from and to, inclusive.
func (r *PgxRateSnapshotRepository) ListSnapshotsForCurrencyInRange(ctx context.Context, regime domain.Regime, currencyCode string, from, to time.Time) ([]domain.RateSnapshot, error) {
	return r.querySnapshots(ctx, `WHERE s.regime = $1 AND s.rate_date BETWEEN $3 AND $4
		AND s.snapshot_id IN (SELECT snapshot_id FROM rate_components WHERE currency_code = $2)`,
		regime.String(), currencyCode, domain.TruncateToDate(from), domain.TruncateToDate(to))
}

// ExistsSnapshot reports whether a snapshot of regime on date already carries currencyCode.
func (r *PgxRateSnapshotRepository) ExistsSnapshot(ctx context.Context, regime domain.Regime, date time.Time, currencyCode string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM rate_snapshots s
			JOIN rate_components c ON c.snapshot_id = s.snapshot_id
			WHERE s.regime = $1 AND s.rate_date = $2 AND c.currency_code = $3
		);
	`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, regime.String(), domain.TruncateToDate(date), currencyCode).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s snapshot for %s: %w", regime, currencyCode, err)
	}
	return exists, nil
}

// ListReferencedCurrencyCodes returns every currency code used as a snapshot component.
func (r *PgxRateSnapshotRepository) ListReferencedCurrencyCodes(ctx context.Context) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `SELECT DISTINCT currency_code FROM rate_components ORDER BY currency_code;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query referenced currencies: %w", err)
	}
	codes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan referenced currencies: %w", err)
	}
	return codes, nil
}

type snapshotComponentRow struct {
	snapshot  models.RateSnapshot
	component models.RateComponent
}

// querySnapshots loads snapshots with their components. filter is an optional WHERE clause over
// the aliases s (rate_snapshots) and c (rate_components).
func (r *PgxRateSnapshotRepository) querySnapshots(ctx context.Context, filter string, args ...any) ([]domain.RateSnapshot, error) {
	rows, err := r.Pool.Query(ctx, selectSnapshotsQuery+filter+"\n"+snapshotOrder, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate snapshots: %w", err)
	}
	defer rows.Close()

	joined, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (snapshotComponentRow, error) {
		var j snapshotComponentRow
		err := row.Scan(
			&j.snapshot.SnapshotID,
			&j.snapshot.RateDate,
			&j.snapshot.Regime,
			&j.snapshot.BaseCurrencyCode,
			&j.snapshot.Rate,
			&j.snapshot.CreatedAt,
			&j.component.Position,
			&j.component.CurrencyCode,
			&j.component.Amount,
		)
		j.component.SnapshotID = j.snapshot.SnapshotID
		return j, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan rate snapshots: %w", err)
	}

	snapshots := make([]models.RateSnapshot, 0)
	for _, j := range joined {
		if n := len(snapshots); n == 0 || snapshots[n-1].SnapshotID != j.snapshot.SnapshotID {
			snapshots = append(snapshots, j.snapshot)
		}
		last := &snapshots[len(snapshots)-1]
		last.Components = append(last.Components, j.component)
	}

	currencies, err := r.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainRateSnapshotSlice(snapshots, domain.NewCurrencyIndex(currencies)), nil
}
