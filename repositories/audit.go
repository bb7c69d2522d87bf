//go:generate go run go.uber.org/mock/mockgen -source=audit.go -destination=../mocks/mock_audit_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"portfolio-engine/domain"
	"portfolio-engine/domain/event"
	"portfolio-engine/errors"
)

// IAuditTrail records every committed mutation, including no-op corporate
// actions, so the full history of an aggregate stays reconstructable.
type IAuditTrail interface {
	Record(ctx context.Context, e event.PortfolioUpdated) error
	History(ctx context.Context, id domain.PortfolioID, limit int) ([]event.PortfolioUpdated, error)
}

// AuditTrail persists produced events under "audit:{portfolio_id}:{version_padded}".
// The padded version keeps a prefix scan in commit order.
type AuditTrail struct {
	db  *badger.DB
	log *slog.Logger
}

func NewAuditTrail(db *badger.DB, log *slog.Logger) *AuditTrail {
	return &AuditTrail{db: db, log: log}
}

func auditKey(id domain.PortfolioID, version uint64) []byte {
	return []byte(fmt.Sprintf("audit:%s:%019d", id, version))
}

func (a *AuditTrail) Record(ctx context.Context, e event.PortfolioUpdated) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env, err := event.Encode(e)
	if err != nil {
		return err
	}
	bytes, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(auditKey(e.Portfolio, e.NewVersion), bytes)
	})
}

func (a *AuditTrail) History(ctx context.Context, id domain.PortfolioID, limit int) ([]event.PortfolioUpdated, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var history []event.PortfolioUpdated
	err := a.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchSize = limit
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(fmt.Sprintf("audit:%s:", id))
		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(history) < limit; it.Next() {
			err := it.Item().Value(func(v []byte) error {
				var env event.Envelope
				if err := json.Unmarshal(v, &env); err != nil {
					return err
				}
				decoded, err := event.Decode(env)
				if err != nil {
					return err
				}
				updated, ok := decoded.(event.PortfolioUpdated)
				if !ok {
					return fmt.Errorf("unexpected audit record kind %s", env.EventKind)
				}
				history = append(history, updated)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return history, nil
}
