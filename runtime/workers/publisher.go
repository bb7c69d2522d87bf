package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"portfolio-engine/contract"
	"portfolio-engine/domain/event"
	apperrors "portfolio-engine/errors"
	"portfolio-engine/repositories"
)

var _ contract.Worker = (*PublisherWorker)(nil)

// PublisherWorker drains committed produced events and hands them to the
// outbound transport, then fans them out to local sinks. The aggregate commit
// already happened by the time an event reaches this worker, so a failed
// publish parks the event instead of losing it.
type PublisherWorker struct {
	log         *slog.Logger
	produced    chan event.Produced
	transport   contract.Transport
	sinks       []contract.EventSink
	registry    contract.IRegistry
	deadLetters repositories.IDeadLetterQueue
	sinkTimeout time.Duration
	maxAttempts int
	backoff     time.Duration
}

func NewPublisherWorker(
	log *slog.Logger,
	produced chan event.Produced,
	transport contract.Transport,
	registry contract.IRegistry,
	deadLetters repositories.IDeadLetterQueue,
	sinkTimeout time.Duration,
	maxAttempts int,
	backoff time.Duration,
) *PublisherWorker {
	return &PublisherWorker{
		log:         log,
		produced:    produced,
		transport:   transport,
		registry:    registry,
		deadLetters: deadLetters,
		sinkTimeout: sinkTimeout,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

func (w *PublisherWorker) Add(sinks ...contract.EventSink) *PublisherWorker {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *PublisherWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping publisher worker")
			return ctx.Err()
		case e, ok := <-w.produced:
			if !ok {
				return nil
			}
			w.publish(ctx, e)
			w.fanout(ctx, e)
		}
	}
}

func (w *PublisherWorker) publish(ctx context.Context, e event.Produced) {
	env, err := event.Encode(e)
	if err != nil {
		w.log.Error("failed to encode produced event", "event_id", e.EventID(), "error", err)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		lastErr = w.transport.Publish(ctx, env)
		if lastErr == nil {
			return
		}
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(w.backoff):
		}
	}

	// Never drop a committed event: park it for later redelivery.
	parkErr := fmt.Errorf("%w: %v", apperrors.ErrTransportUnavailable, lastErr)
	err = w.deadLetters.Park(ctx, repositories.DeadLetter{
		EventID:     e.EventID(),
		AggregateID: string(e.PortfolioID()),
		Envelope:    env,
		Reason:      parkErr.Error(),
		Disposition: repositories.DispositionParked,
		Attempts:    w.maxAttempts,
	})
	if err != nil {
		w.log.Error("failed to park unpublished event", "event_id", e.EventID(), "error", err)
	}
}

// fanout One sink for each event, bounded by sinkTimeout so a slow consumer
// cannot stall the publishing loop.
func (w *PublisherWorker) fanout(ctx context.Context, e event.Produced) {
	sinks := append([]contract.EventSink{}, w.sinks...)
	if w.registry != nil {
		sinks = append(sinks, w.registry.GetSinksFor(e.PortfolioID())...)
	}
	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, e); err != nil {
			w.log.Warn("sink failed to consume event", "event_id", e.EventID(), "error", err)
		}
		cancel()
	}
}
