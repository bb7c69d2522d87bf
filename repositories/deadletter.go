//go:generate go run go.uber.org/mock/mockgen -source=deadletter.go -destination=../mocks/mock_deadletter_repository.go -package=mocks
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

	"portfolio-engine/domain/event"
	"portfolio-engine/errors"
)

type Disposition string

const (
	// DispositionDead marks events that must never be retried as-is:
	// schema violations and business-rule rejections. Operator territory.
	DispositionDead Disposition = "dead"
	// DispositionParked marks events that exhausted transient-failure
	// retries and are eligible for redelivery via Requeue.
	DispositionParked Disposition = "parked"
)

// DeadLetter keeps the full causation context so an operator or a
// compensating workflow can reconstruct what happened.
type DeadLetter struct {
	EventID     uuid.UUID      `json:"eventId"`
	AggregateID string         `json:"aggregateId"`
	Envelope    event.Envelope `json:"envelope"`
	Reason      string         `json:"reason"`
	Disposition Disposition    `json:"disposition"`
	Attempts    int            `json:"attempts"`
	ParkedAt    time.Time      `json:"parkedAt"`
}

type IDeadLetterQueue interface {
	Park(ctx context.Context, letter DeadLetter) error
	List(ctx context.Context, limit int) ([]DeadLetter, error)
	Requeue(ctx context.Context, eventID uuid.UUID) (DeadLetter, error)
}

// DeadLetterQueue persists letters under "deadletter:{timestamp_padded}:{event_id}"
// so a prefix scan returns them in arrival order.
type DeadLetterQueue struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

func NewDeadLetterQueue(db *badger.DB, log *slog.Logger) *DeadLetterQueue {
	return &DeadLetterQueue{db: db, log: log, now: time.Now}
}

func deadLetterKey(parkedAt time.Time, eventID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("deadletter:%019d:%s", parkedAt.UnixNano(), eventID))
}

func (q *DeadLetterQueue) Park(ctx context.Context, letter DeadLetter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if letter.ParkedAt.IsZero() {
		letter.ParkedAt = q.now()
	}
	bytes, err := json.Marshal(letter)
	if err != nil {
		return err
	}
	q.log.Warn("event dead-lettered",
		"event_id", letter.EventID,
		"aggregate_id", letter.AggregateID,
		"disposition", letter.Disposition,
		"reason", letter.Reason,
	)
	return q.db.Update(func(txn *badger.Txn) error {
		return txn.Set(deadLetterKey(letter.ParkedAt, letter.EventID), bytes)
	})
}

// List returns up to limit letters in arrival order.
func (q *DeadLetterQueue) List(ctx context.Context, limit int) ([]DeadLetter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var letters []DeadLetter
	err := q.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchSize = limit
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte("deadletter:")
		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(letters) < limit; it.Next() {
			err := it.Item().Value(func(v []byte) error {
				var letter DeadLetter
				if err := json.Unmarshal(v, &letter); err != nil {
					return err
				}
				letters = append(letters, letter)
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
	return letters, nil
}

// Requeue pops a parked letter so the dispatcher can resubmit it. Letters
// with DispositionDead are refused: those need a human, not a retry loop.
func (q *DeadLetterQueue) Requeue(ctx context.Context, eventID uuid.UUID) (DeadLetter, error) {
	if err := ctx.Err(); err != nil {
		return DeadLetter{}, err
	}
	var found DeadLetter
	err := q.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("deadletter:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var letter DeadLetter
			if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &letter) }); err != nil {
				return err
			}
			if letter.EventID != eventID {
				continue
			}
			if letter.Disposition != DispositionParked {
				return fmt.Errorf("event %s has disposition %q and cannot be requeued", eventID, letter.Disposition)
			}
			found = letter
			return txn.Delete(item.KeyCopy(nil))
		}
		return stderrors.New("not found")
	})
	if err != nil {
		return DeadLetter{}, fmt.Errorf("requeue %s: %w", eventID, err)
	}
	return found, nil
}
