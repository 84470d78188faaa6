// Package bolt is an embedded single-file store backed by bbolt, used when no Postgres
// database is configured.
package bolt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	portsrepo "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/repositories"
	"go.etcd.io/bbolt"
)

var (
	CurrenciesBucket    = []byte("Currencies")
	RateSnapshotsBucket = []byte("RateSnapshots")
)

// Open opens (creating if needed) the database file at path and ensures all buckets exist.
func Open(path string) (*bbolt.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o770); err != nil {
			return nil, fmt.Errorf("failed to create directory for bolt database: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o660, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bn := range [][]byte{CurrenciesBucket, RateSnapshotsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bn); err != nil {
				return fmt.Errorf("could not bucket: %s, err: %w", string(bn), err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// NewRepositoryProvider wires the bbolt-backed repositories. Closing the provider closes db.
func NewRepositoryProvider(db *bbolt.DB) portsrepo.RepositoryProvider {
	currencyRepo := newBoltCurrencyRepository(db)
	rateSnapshotRepo := newBoltRateSnapshotRepository(db)

	return portsrepo.RepositoryProvider{
		CurrencyRepo:     currencyRepo,
		RateSnapshotRepo: rateSnapshotRepo,
		Closer:           db,
	}
}
