package bolt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/apperrors"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portsrepo "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/repositories"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/models"
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/utils/mapping"
	"go.etcd.io/bbolt"
)

// BoltCurrencyRepository keeps currencies as JSON values keyed by currency code.
type BoltCurrencyRepository struct {
	db *bbolt.DB
}

func newBoltCurrencyRepository(db *bbolt.DB) *BoltCurrencyRepository {
	return &BoltCurrencyRepository{db: db}
}

var _ portsrepo.CurrencyRepositoryFacade = (*BoltCurrencyRepository)(nil)

// SaveCurrencies upserts all currencies in a single write transaction. CreatedAt of existing
// entries is kept.
func (r *BoltCurrencyRepository) SaveCurrencies(ctx context.Context, currencies []domain.Currency) error {
	if len(currencies) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(CurrenciesBucket)
		for _, c := range currencies {
			m := mapping.ToModelCurrency(c)
			key := []byte(m.CurrencyCode)

			if existing := bucket.Get(key); existing != nil {
				var prev models.Currency
				if err := json.Unmarshal(existing, &prev); err != nil {
					return fmt.Errorf("failed to decode stored currency %s: %w", m.CurrencyCode, err)
				}
				m.CreatedAt = prev.CreatedAt
			}

			value, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("failed to encode currency %s: %w", m.CurrencyCode, err)
			}
			if err := bucket.Put(key, value); err != nil {
				return fmt.Errorf("failed to save currency %s: %w", m.CurrencyCode, err)
			}
		}
		return nil
	})
}

// FindCurrencyByCode retrieves a currency by its 3-letter code.
func (r *BoltCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	var m models.Currency
	found := false

	err := r.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(CurrenciesBucket).Get([]byte(currencyCode))
		if value == nil {
			return nil
		}
		found = true
		return json.Unmarshal(value, &m)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find currency by code %s: %w", currencyCode, err)
	}
	if !found {
		return nil, apperrors.ErrNotFound
	}

	currency := mapping.ToDomainCurrency(m)
	return &currency, nil
}

// ListCurrencies returns all currencies ordered by code, which is the bucket's key order.
func (r *BoltCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	var ms []models.Currency

	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		ms, err = readCurrencies(tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}

	return mapping.ToDomainCurrencySlice(ms), nil
}

func readCurrencies(tx *bbolt.Tx) ([]models.Currency, error) {
	ms := []models.Currency{}
	err := tx.Bucket(CurrenciesBucket).ForEach(func(_, v []byte) error {
		var m models.Currency
		if err := json.Unmarshal(v, &m); err != nil {
			return err
		}
		ms = append(ms, m)
		return nil
	})
	return ms, err
}
