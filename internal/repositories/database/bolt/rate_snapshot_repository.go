package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/apperrors"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portsrepo "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/repositories"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/models"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/utils/mapping"
	"go.etcd.io/bbolt"
)

// BoltRateSnapshotRepository keeps each snapshot, components included, as one JSON value.
// Keys are "<regime>/<date>/<sequence>" so a regime's snapshots are contiguous and date ordered.
type BoltRateSnapshotRepository struct {
	db *bbolt.DB
}

func newBoltRateSnapshotRepository(db *bbolt.DB) *BoltRateSnapshotRepository {
	return &BoltRateSnapshotRepository{db: db}
}

var _ portsrepo.RateSnapshotRepositoryFacade = (*BoltRateSnapshotRepository)(nil)

func snapshotKey(regime string, date time.Time, seq uint64) []byte {
	return fmt.Appendf(nil, "%s/%s/%020d", regime, date.Format(domain.DateLayout), seq)
}

func regimePrefix(regime domain.Regime) []byte {
	return []byte(regime.String() + "/")
}

// SaveRateSnapshot appends the snapshot in its own write transaction.
func (r *BoltRateSnapshotRepository) SaveRateSnapshot(ctx context.Context, snapshot domain.RateSnapshot) (*domain.RateSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := mapping.ToModelRateSnapshot(snapshot)

	err := r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(RateSnapshotsBucket)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		value, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return bucket.Put(snapshotKey(m.Regime, m.RateDate, seq), value)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save rate snapshot %s: %w", m.SnapshotID, err)
	}

	saved := snapshot
	saved.Date = m.RateDate
	return &saved, nil
}

// ListRateSnapshots retrieves every stored snapshot ordered by date, then creation time.
func (r *BoltRateSnapshotRepository) ListRateSnapshots(ctx context.Context) ([]domain.RateSnapshot, error) {
	snapshots, err := r.scan(nil, func(models.RateSnapshot) bool { return true })
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(snapshots, func(a, b domain.RateSnapshot) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return snapshots, nil
}

// FindLatestSnapshot returns the single latest snapshot of regime carrying currencyCode.
func (r *BoltRateSnapshotRepository) FindLatestSnapshot(ctx context.Context, regime domain.Regime, currencyCode string) (*domain.RateSnapshot, error) {
	candidates, err := r.scan(regimePrefix(regime), func(m models.RateSnapshot) bool {
		return hasComponent(m, currencyCode)
	})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperrors.ErrNotFound
	}

	// Keys are date ordered, so the latest date is at the end.
	latest := candidates[len(candidates)-1]
	if len(candidates) > 1 && candidates[len(candidates)-2].Date.Equal(latest.Date) {
		return nil, fmt.Errorf("%w: several latest %s snapshots for %s", apperrors.ErrAmbiguous, regime, currencyCode)
	}
	return &latest, nil
}

// FindLatestSnapshotDate returns the most recent snapshot date of a regime.
func (r *BoltRateSnapshotRepository) FindLatestSnapshotDate(ctx context.Context, regime domain.Regime) (time.Time, error) {
	var latest time.Time
	found := false
	prefix := regimePrefix(regime)

	err := r.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(RateSnapshotsBucket).Cursor()
		// Seek past the prefix, then step back to the last key inside it.
		k, _ := cursor.Seek(append(bytes.Clone(prefix), 0xff))
		if k == nil {
			k, _ = cursor.Last()
		} else {
			k, _ = cursor.Prev()
		}
		if k == nil || !bytes.HasPrefix(k, prefix) {
			return nil
		}

		parts := bytes.SplitN(k, []byte("/"), 3)
		if len(parts) != 3 {
			return fmt.Errorf("malformed snapshot key %q", k)
		}
		date, err := time.Parse(domain.DateLayout, string(parts[1]))
		if err != nil {
			return err
		}
		latest, found = date, true
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest %s snapshot date: %w", regime, err)
	}
	if !found {
		return time.Time{}, apperrors.ErrNotFound
	}
	return latest, nil
}

// ListSnapshotsByDate retrieves the snapshots of a regime on one date.
func (r *BoltRateSnapshotRepository) ListSnapshotsByDate(ctx context.Context, regime domain.Regime, date time.Time) ([]domain.RateSnapshot, error) {
	prefix := fmt.Appendf(nil, "%s/%s/", regime, domain.TruncateToDate(date).Format(domain.DateLayout))
	return r.scan(prefix, func(models.RateSnapshot) bool { return true })
}

// ListSnapshotsForCurrencyInRange retrieves a currency's snapshots between from and to, inclusive.
func (r *BoltRateSnapshotRepository) ListSnapshotsForCurrencyInRange(ctx context.Context, regime domain.Regime, currencyCode string, from, to time.Time) ([]domain.RateSnapshot, error) {
	from, to = domain.TruncateToDate(from), domain.TruncateToDate(to)
	return r.scan(regimePrefix(regime), func(m models.RateSnapshot) bool {
		date := domain.TruncateToDate(m.RateDate)
		return !date.Before(from) && !date.After(to) && hasComponent(m, currencyCode)
	})
}

// ExistsSnapshot reports whether a snapshot of regime on date already carries currencyCode.
func (r *BoltRateSnapshotRepository) ExistsSnapshot(ctx context.Context, regime domain.Regime, date time.Time, currencyCode string) (bool, error) {
	snapshots, err := r.ListSnapshotsByDate(ctx, regime, date)
	if err != nil {
		return false, err
	}
	for _, s := range snapshots {
		if _, ok := s.AmountFor(currencyCode); ok {
			return true, nil
		}
	}
	return false, nil
}

// ListReferencedCurrencyCodes returns every currency code used as a snapshot component, sorted.
func (r *BoltRateSnapshotRepository) ListReferencedCurrencyCodes(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}

	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(RateSnapshotsBucket).ForEach(func(_, v []byte) error {
			var m models.RateSnapshot
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			for _, c := range m.Components {
				seen[c.CurrencyCode] = struct{}{}
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list referenced currencies: %w", err)
	}

	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes, nil
}

// scan walks the keys under prefix (all keys when prefix is nil) inside one read transaction
// and resolves currencies against the same consistent view.
func (r *BoltRateSnapshotRepository) scan(prefix []byte, keep func(models.RateSnapshot) bool) ([]domain.RateSnapshot, error) {
	var (
		ms         []models.RateSnapshot
		currencies []models.Currency
	)

	err := r.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(RateSnapshotsBucket).Cursor()

		k, v := cursor.First()
		if prefix != nil {
			k, v = cursor.Seek(prefix)
		}
		for ; k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			var m models.RateSnapshot
			if err := json.Unmarshal(v, &m); err != nil {
				return fmt.Errorf("failed to decode snapshot %q: %w", k, err)
			}
			if keep(m) {
				ms = append(ms, m)
			}
		}

		var err error
		currencies, err = readCurrencies(tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read rate snapshots: %w", err)
	}

	idx := domain.NewCurrencyIndex(mapping.ToDomainCurrencySlice(currencies))
	return mapping.ToDomainRateSnapshotSlice(ms, idx), nil
}

func hasComponent(m models.RateSnapshot, currencyCode string) bool {
	for _, c := range m.Components {
		if c.CurrencyCode == currencyCode {
			return true
		}
	}
	return false
}
