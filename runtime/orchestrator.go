package runtime

import (
	"context"
	stderrors "errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"portfolio-engine/domain"
	"portfolio-engine/domain/event"
	"portfolio-engine/errors"
	"portfolio-engine/repositories"
	"portfolio-engine/runtime/workers"
)

var _ workers.Router = (*Dispatcher)(nil)

// Dispatcher decodes inbound envelopes and routes them to aggregate lanes.
// One portfolio always hashes to the same lane, so two events for the same
// aggregate can never race each other. Asset-scoped events fan out to every
// portfolio currently holding the asset.
type Dispatcher struct {
	log         *slog.Logger
	lanes       []chan workers.LaneItem
	store       repositories.IAggregateStore
	deadLetters repositories.IDeadLetterQueue
	telemetry   chan event.Telemetry
}

func NewDispatcher(
	log *slog.Logger,
	lanes []chan workers.LaneItem,
	store repositories.IAggregateStore,
	deadLetters repositories.IDeadLetterQueue,
	telemetry chan event.Telemetry,
) *Dispatcher {
	return &Dispatcher{
		log:         log,
		lanes:       lanes,
		store:       store,
		deadLetters: deadLetters,
		telemetry:   telemetry,
	}
}

func (d *Dispatcher) Submit(ctx context.Context, env event.Envelope) error {
	evt, err := event.Decode(env)
	switch {
	case stderrors.Is(err, errors.ErrUnsupportedEventKind):
		// Forward compatibility: unknown kinds are logged and skipped, never
		// dead-lettered. A newer producer must not poison the queue.
		d.log.Warn("unsupported event kind skipped", "event_id", env.EventID, "event_kind", env.EventKind)
		return nil
	case err != nil:
		d.log.Error("malformed envelope dead-lettered", "event_id", env.EventID, "error", err)
		return d.deadLetters.Park(ctx, repositories.DeadLetter{
			EventID:     env.EventID,
			AggregateID: env.AggregateID,
			Envelope:    env,
			Reason:      err.Error(),
			Disposition: repositories.DispositionDead,
			Attempts:    1,
		})
	}

	targets, err := d.resolve(ctx, evt)
	if err != nil {
		return err
	}
	for _, id := range targets {
		item := workers.LaneItem{Portfolio: id, Event: evt, Envelope: env}
		if err := d.enqueue(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// resolve maps an event to the portfolios it must be applied to.
func (d *Dispatcher) resolve(ctx context.Context, evt event.DomainEvent) ([]domain.PortfolioID, error) {
	switch e := evt.(type) {
	case event.PortfolioScoped:
		return []domain.PortfolioID{e.PortfolioID()}, nil
	case event.AssetScoped:
		holders, err := d.store.HoldersOf(ctx, e.AssetID())
		if err != nil {
			return nil, fmt.Errorf("resolving holders of %s: %w", e.AssetID(), err)
		}
		if len(holders) == 0 {
			d.log.Debug("no portfolio holds the asset, event ignored",
				"event_id", evt.EventID(), "asset_id", e.AssetID())
		}
		return holders, nil
	default:
		return nil, fmt.Errorf("event %s has no routing scope: %w", evt.Kind(), errors.ErrMalformedEvent)
	}
}

// enqueue blocks until the lane accepts the item. A full lane is back-pressure,
// not an error: the saturation is surfaced through telemetry while intake waits.
func (d *Dispatcher) enqueue(ctx context.Context, item workers.LaneItem) error {
	lane := d.laneFor(item.Portfolio)
	select {
	case d.lanes[lane] <- item:
		return nil
	default:
		d.observeSaturation(lane)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: lane %d still full when submission aborted: %v",
			errors.ErrLaneSaturated, lane, ctx.Err())
	case d.lanes[lane] <- item:
		return nil
	}
}

func (d *Dispatcher) laneFor(id domain.PortfolioID) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32() % uint32(len(d.lanes)))
}

func (d *Dispatcher) observeSaturation(lane int) {
	select {
	case d.telemetry <- event.Telemetry{
		Type:    event.LaneStalledType,
		Payload: event.LaneStalled{Lane: lane, Pending: len(d.lanes[lane])},
		At:      time.Now(),
	}:
	default:
		d.log.Debug("Observability telemetry event lost")
	}
}
