//go:generate go run go.uber.org/mock/mockgen -source=portfolio.go -destination=../mocks/mock_portfolio_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"portfolio-engine/domain"
	"portfolio-engine/errors"
)

// IAggregateStore owns the canonical portfolio state. Save is the single
// commit point of the whole engine: it compares the stored version against
// expectedVersion inside one transaction and rejects stale writers.
type IAggregateStore interface {
	Load(ctx context.Context, id domain.PortfolioID) (domain.Portfolio, error)
	Save(ctx context.Context, p domain.Portfolio, expectedVersion uint64) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Portfolio, error)
	HoldersOf(ctx context.Context, asset domain.AssetID) ([]domain.PortfolioID, error)
	Delete(ctx context.Context, id domain.PortfolioID) error
}

// AggregateStore persists portfolios in BadgerDB.
// Keys:
//
//	portfolio:{portfolio_id}              -> JSON aggregate snapshot
//	asset:{asset_id}:{portfolio_id}       -> holder index (asset fan-out)
//	owner:{owner_id}:{portfolio_id}       -> owner index
type AggregateStore struct {
	db  *badger.DB
	log *slog.Logger
}

func NewAggregateStore(db *badger.DB, log *slog.Logger) *AggregateStore {
	return &AggregateStore{db: db, log: log}
}

func portfolioKey(id domain.PortfolioID) []byte {
	return []byte(fmt.Sprintf("portfolio:%s", id))
}

func assetKey(asset domain.AssetID, id domain.PortfolioID) []byte {
	return []byte(fmt.Sprintf("asset:%s:%s", asset, id))
}

func ownerKey(ownerID string, id domain.PortfolioID) []byte {
	return []byte(fmt.Sprintf("owner:%s:%s", ownerID, id))
}

func (s *AggregateStore) Load(ctx context.Context, id domain.PortfolioID) (domain.Portfolio, error) {
	if err := ctx.Err(); err != nil {
		return domain.Portfolio{}, err
	}
	var p domain.Portfolio
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(portfolioKey(id))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: portfolio %s", errors.ErrAggregateNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &p)
		})
	})
	if err != nil {
		return domain.Portfolio{}, err
	}
	return p, nil
}

// Save commits atomically under optimistic concurrency. An unknown portfolio
// is created only with expectedVersion 0; any other writer racing in between
// gets ErrVersionConflict rather than a silent overwrite. The asset and owner
// indexes are maintained inside the same transaction.
func (s *AggregateStore) Save(ctx context.Context, p domain.Portfolio, expectedVersion uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		var previous domain.Portfolio
		item, err := txn.Get(portfolioKey(p.ID))
		switch {
		case stderrors.Is(err, badger.ErrKeyNotFound):
			if expectedVersion != 0 {
				return fmt.Errorf("%w: portfolio %s expected version %d but does not exist",
					errors.ErrVersionConflict, p.ID, expectedVersion)
			}
		case err != nil:
			return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
		default:
			if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &previous) }); err != nil {
				return err
			}
			if previous.Version != expectedVersion {
				return fmt.Errorf("%w: portfolio %s at version %d, expected %d",
					errors.ErrVersionConflict, p.ID, previous.Version, expectedVersion)
			}
		}

		bytes, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if err := txn.Set(portfolioKey(p.ID), bytes); err != nil {
			return err
		}
		if err := txn.Set(ownerKey(p.OwnerID, p.ID), nil); err != nil {
			return err
		}

		// Index maintenance: drop entries for assets no longer held,
		// add entries for assets now held.
		for asset := range previous.Holdings {
			if !p.Holds(asset) {
				if err := txn.Delete(assetKey(asset, p.ID)); err != nil {
					return err
				}
			}
		}
		for asset := range p.Holdings {
			if err := txn.Set(assetKey(asset, p.ID), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if stderrors.Is(err, badger.ErrConflict) {
		// Badger detected a concurrent transaction touching the same keys.
		return fmt.Errorf("%w: portfolio %s", errors.ErrVersionConflict, p.ID)
	}
	return err
}

// HoldersOf returns every portfolio currently holding the asset, via the
// asset index. Used by the dispatcher to fan asset-scoped events out.
func (s *AggregateStore) HoldersOf(ctx context.Context, asset domain.AssetID) ([]domain.PortfolioID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var holders []domain.PortfolioID
	prefixStr := fmt.Sprintf("asset:%s:", asset)
	err := s.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(prefixStr)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id := strings.TrimPrefix(string(it.Item().Key()), prefixStr)
			holders = append(holders, domain.PortfolioID(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return holders, nil
}

func (s *AggregateStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Portfolio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ids []domain.PortfolioID
	prefixStr := fmt.Sprintf("owner:%s:", ownerID)
	err := s.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(prefixStr)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id := strings.TrimPrefix(string(it.Item().Key()), prefixStr)
			ids = append(ids, domain.PortfolioID(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	portfolios := make([]domain.Portfolio, 0, len(ids))
	for _, id := range ids {
		p, err := s.Load(ctx, id)
		if stderrors.Is(err, errors.ErrAggregateNotFound) {
			// Index entry outlived its portfolio; skip rather than fail the listing.
			s.log.Warn("dangling owner index entry", "owner_id", ownerID, "portfolio_id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}
	return portfolios, nil
}

// Delete removes the aggregate and its index entries. This is an
// administrative operation, not part of the event pipeline.
func (s *AggregateStore) Delete(ctx context.Context, id domain.PortfolioID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		var p domain.Portfolio
		item, err := txn.Get(portfolioKey(id))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: portfolio %s", errors.ErrAggregateNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
		}
		if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &p) }); err != nil {
			return err
		}
		for asset := range p.Holdings {
			if err := txn.Delete(assetKey(asset, id)); err != nil {
				return err
			}
		}
		if err := txn.Delete(ownerKey(p.OwnerID, id)); err != nil {
			return err
		}
		return txn.Delete(portfolioKey(id))
	})
}
