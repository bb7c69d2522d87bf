package workers

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"portfolio-engine/contract"
	"portfolio-engine/domain"
	"portfolio-engine/domain/event"
	"portfolio-engine/errors"
	"portfolio-engine/repositories"
)

// LaneItem is one routed unit of work: an inbound event bound to the single
// portfolio it must be applied to. For asset-scoped events the dispatcher
// creates one item per holding portfolio.
type LaneItem struct {
	Portfolio domain.PortfolioID
	Event     event.DomainEvent
	Envelope  event.Envelope
}

// Ensure *LaneWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*LaneWorker)(nil)

// LaneWorker drains one lane strictly sequentially, which is what gives every
// aggregate a single writer. The pipeline per item is:
// dedup reserve -> load -> transition -> save(expectedVersion) -> finalize -> forward.
// Any abort before save releases the reservation so the event can be retried.
type LaneWorker struct {
	lane        int
	items       chan LaneItem
	produced    chan event.Produced
	telemetry   chan event.Telemetry
	store       repositories.IAggregateStore
	ledger      repositories.IDedupLedger
	deadLetters repositories.IDeadLetterQueue
	maxAttempts int
	backoff     time.Duration
	log         *slog.Logger
}

func NewLaneWorker(
	lane int,
	items chan LaneItem,
	produced chan event.Produced,
	telemetry chan event.Telemetry,
	store repositories.IAggregateStore,
	ledger repositories.IDedupLedger,
	deadLetters repositories.IDeadLetterQueue,
	maxAttempts int,
	backoff time.Duration,
	log *slog.Logger,
) *LaneWorker {
	return &LaneWorker{
		lane:        lane,
		items:       items,
		produced:    produced,
		telemetry:   telemetry,
		store:       store,
		ledger:      ledger,
		deadLetters: deadLetters,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		log:         log,
	}
}

func (w *LaneWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping lane worker", "lane", w.lane)
			return ctx.Err()
		case item, ok := <-w.items:
			if !ok {
				return nil
			}
			if err := w.process(ctx, item); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.log.Error("lane processing failed",
					"lane", w.lane,
					"event_id", item.Event.EventID(),
					"portfolio_id", item.Portfolio,
					"error", err,
				)
			}
		}
	}
}

func (w *LaneWorker) process(ctx context.Context, item LaneItem) error {
	start := time.Now()
	eventID := item.Event.EventID()

	err := w.ledger.CheckAndReserve(ctx, item.Portfolio, eventID)
	switch {
	case stderrors.Is(err, errors.ErrAlreadyProcessed):
		// Redelivery of a finalized event: the at-most-once guarantee in action.
		w.log.Debug("duplicate delivery ignored", "event_id", eventID, "portfolio_id", item.Portfolio)
		return nil
	case stderrors.Is(err, errors.ErrReservationHeld):
		w.log.Warn("event already in flight, skipping redelivery", "event_id", eventID, "portfolio_id", item.Portfolio)
		return nil
	case err != nil:
		return w.park(ctx, item, err, 1)
	}

	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		current, err := w.load(ctx, item)
		if err != nil {
			if stderrors.Is(err, errors.ErrAggregateNotFound) {
				w.release(ctx, item)
				return w.deadLetter(ctx, item, err, attempt)
			}
			lastErr = err
			if !w.wait(ctx) {
				w.release(ctx, item)
				return ctx.Err()
			}
			continue
		}

		next, produced, err := event.Transition(current, item.Event)
		if err != nil {
			w.release(ctx, item)
			if stderrors.Is(err, errors.ErrUnsupportedEventKind) {
				// Non-fatal: logged skip, the version does not advance.
				w.log.Warn("unsupported event kind skipped", "event_id", eventID, "error", err)
				return nil
			}
			return w.deadLetter(ctx, item, err, attempt)
		}

		err = w.store.Save(ctx, next, current.Version)
		switch {
		case err == nil:
			w.finalize(ctx, item)
			if remaining, err := w.forward(ctx, produced); err != nil {
				w.parkProduced(ctx, remaining, err)
				return err
			}
			w.observeLatency(item, start)
			return nil
		case stderrors.Is(err, errors.ErrVersionConflict):
			// Should not happen under single-lane discipline; an external
			// writer exists. Re-load and re-apply.
			w.log.Warn("version conflict, re-applying", "event_id", eventID, "attempt", attempt)
			lastErr = err
		default:
			lastErr = err
		}
		if !w.wait(ctx) {
			w.release(ctx, item)
			return ctx.Err()
		}
	}

	w.release(ctx, item)
	if stderrors.Is(lastErr, errors.ErrVersionConflict) {
		return w.deadLetter(ctx, item, fmt.Errorf("retries exhausted: %w", lastErr), w.maxAttempts)
	}
	return w.park(ctx, item, lastErr, w.maxAttempts)
}

func (w *LaneWorker) load(ctx context.Context, item LaneItem) (domain.Portfolio, error) {
	current, err := w.store.Load(ctx, item.Portfolio)
	if stderrors.Is(err, errors.ErrAggregateNotFound) && item.Event.Kind() == event.KindPortfolioCreated {
		// First reference: the initializing event starts from version 0.
		return domain.Portfolio{ID: item.Portfolio, Holdings: map[domain.AssetID]domain.Holding{}}, nil
	}
	return current, err
}

// forward hands produced events to the publisher channel. On abort it returns
// the events that were not handed over, so the caller can preserve them.
func (w *LaneWorker) forward(ctx context.Context, produced []event.Produced) ([]event.Produced, error) {
	for i, e := range produced {
		select {
		case <-ctx.Done():
			return produced[i:], ctx.Err()
		case w.produced <- e:
		}
	}
	return nil, nil
}

// parkProduced preserves committed-but-unforwarded events. The save and the
// dedup finalize already happened, so a redelivery of the inbound event is a
// no-op: the parked envelope is the only remaining copy. The park must outlive
// the shutdown that aborted the forward.
func (w *LaneWorker) parkProduced(ctx context.Context, produced []event.Produced, cause error) {
	ctx = context.WithoutCancel(ctx)
	for _, e := range produced {
		env, err := event.Encode(e)
		if err != nil {
			w.log.Error("failed to encode committed event for parking", "event_id", e.EventID(), "error", err)
			continue
		}
		err = w.deadLetters.Park(ctx, repositories.DeadLetter{
			EventID:     e.EventID(),
			AggregateID: string(e.PortfolioID()),
			Envelope:    env,
			Reason:      fmt.Sprintf("committed event not forwarded: %v", cause),
			Disposition: repositories.DispositionParked,
			Attempts:    1,
		})
		if err != nil {
			w.log.Error("failed to park committed event", "event_id", e.EventID(), "error", err)
		}
	}
}

func (w *LaneWorker) release(ctx context.Context, item LaneItem) {
	if err := w.ledger.Release(ctx, item.Portfolio, item.Event.EventID()); err != nil {
		w.log.Error("failed to release dedup reservation",
			"event_id", item.Event.EventID(), "portfolio_id", item.Portfolio, "error", err)
	}
}

func (w *LaneWorker) finalize(ctx context.Context, item LaneItem) {
	if err := w.ledger.Finalize(ctx, item.Portfolio, item.Event.EventID()); err != nil {
		// The commit already happened; a lost finalize only risks one extra
		// re-application attempt after the reservation TTL, which the version
		// check will reject.
		w.log.Error("failed to finalize dedup record",
			"event_id", item.Event.EventID(), "portfolio_id", item.Portfolio, "error", err)
	}
}

func (w *LaneWorker) deadLetter(ctx context.Context, item LaneItem, cause error, attempts int) error {
	return w.deadLetters.Park(ctx, repositories.DeadLetter{
		EventID:     item.Event.EventID(),
		AggregateID: string(item.Portfolio),
		Envelope:    item.Envelope,
		Reason:      cause.Error(),
		Disposition: repositories.DispositionDead,
		Attempts:    attempts,
	})
}

func (w *LaneWorker) park(ctx context.Context, item LaneItem, cause error, attempts int) error {
	return w.deadLetters.Park(ctx, repositories.DeadLetter{
		EventID:     item.Event.EventID(),
		AggregateID: string(item.Portfolio),
		Envelope:    item.Envelope,
		Reason:      cause.Error(),
		Disposition: repositories.DispositionParked,
		Attempts:    attempts,
	})
}

func (w *LaneWorker) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(w.backoff):
		return true
	}
}

func (w *LaneWorker) observeLatency(item LaneItem, start time.Time) {
	select {
	case w.telemetry <- event.Telemetry{
		Type: event.ProcessingLatencyType,
		Payload: event.ProcessingLatency{
			Portfolio: item.Portfolio,
			EventKind: item.Event.Kind(),
			LeadTime:  time.Since(start),
		},
		At: time.Now(),
	}:
	default:
		w.log.Debug("Observability telemetry event lost")
	}
}
