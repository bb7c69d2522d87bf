//go:generate go run go.uber.org/mock/mockgen -source=dedup.go -destination=../mocks/mock_dedup_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"portfolio-engine/domain"
	"portfolio-engine/errors"
)

// IDedupLedger guarantees at-most-one observable effect per
// (aggregateId, eventId) pair even though the transport redelivers.
// CheckAndReserve runs before the state machine; Finalize only after the
// aggregate commit; Release on any non-committed abort.
type IDedupLedger interface {
	CheckAndReserve(ctx context.Context, id domain.PortfolioID, eventID uuid.UUID) error
	Release(ctx context.Context, id domain.PortfolioID, eventID uuid.UUID) error
	Finalize(ctx context.Context, id domain.PortfolioID, eventID uuid.UUID) error
}

const (
	dedupStateReserved  = "reserved"
	dedupStateProcessed = "processed"
)

type dedupRecord struct {
	State       string     `json:"state"`
	ReservedAt  time.Time  `json:"reservedAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

// DedupLedger stores records under "dedup:{portfolio_id}:{event_id}".
// Reservations carry a TTL so that a crash between reserve and release
// cannot block an event forever; processed records never expire (retention
// is a policy outside this engine).
type DedupLedger struct {
	db             *badger.DB
	log            *slog.Logger
	reservationTTL time.Duration
	now            func() time.Time
}

func NewDedupLedger(db *badger.DB, log *slog.Logger, reservationTTL time.Duration) *DedupLedger {
	return &DedupLedger{db: db, log: log, reservationTTL: reservationTTL, now: time.Now}
}

func dedupKey(id domain.PortfolioID, eventID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("dedup:%s:%s", id, eventID))
}

func (l *DedupLedger) CheckAndReserve(ctx context.Context, id domain.PortfolioID, eventID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(dedupKey(id, eventID))
		switch {
		case stderrors.Is(err, badger.ErrKeyNotFound):
			// Fresh pair, reserve below.
		case err != nil:
			return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
		default:
			var record dedupRecord
			if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &record) }); err != nil {
				return err
			}
			if record.State == dedupStateProcessed {
				return fmt.Errorf("%w: event %s on portfolio %s", errors.ErrAlreadyProcessed, eventID, id)
			}
			return fmt.Errorf("%w: event %s on portfolio %s", errors.ErrReservationHeld, eventID, id)
		}

		bytes, err := json.Marshal(dedupRecord{State: dedupStateReserved, ReservedAt: l.now()})
		if err != nil {
			return err
		}
		entry := badger.NewEntry(dedupKey(id, eventID), bytes).WithTTL(l.reservationTTL)
		return txn.SetEntry(entry)
	})
}

// Release frees a reservation so the event can be retried. Releasing a
// finalized record is a bug and is refused.
func (l *DedupLedger) Release(ctx context.Context, id domain.PortfolioID, eventID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(dedupKey(id, eventID))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
		}
		var record dedupRecord
		if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &record) }); err != nil {
			return err
		}
		if record.State == dedupStateProcessed {
			return fmt.Errorf("%w: cannot release event %s on portfolio %s", errors.ErrAlreadyProcessed, eventID, id)
		}
		return txn.Delete(dedupKey(id, eventID))
	})
}

func (l *DedupLedger) Finalize(ctx context.Context, id domain.PortfolioID, eventID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.db.Update(func(txn *badger.Txn) error {
		processedAt := l.now()
		bytes, err := json.Marshal(dedupRecord{
			State:       dedupStateProcessed,
			ReservedAt:  processedAt,
			ProcessedAt: &processedAt,
		})
		if err != nil {
			return err
		}
		// No TTL: processed pairs stay until an external retention policy
		// cleans them up.
		return txn.Set(dedupKey(id, eventID), bytes)
	})
}
