package workers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"portfolio-engine/contract"
	"portfolio-engine/domain/event"
	"portfolio-engine/errors"
)

// Router is implemented by the dispatcher: it decodes an envelope and hands
// it to the right aggregate lane. Decode failures are routed internally
// (dead-letter or skip); Submit only returns when the context dies or a lane
// cannot be reached.
type Router interface {
	Submit(ctx context.Context, env event.Envelope) error
}

var _ contract.Worker = (*IntakeWorker)(nil)

// IntakeWorker pulls envelopes from the transport and feeds the dispatcher.
type IntakeWorker struct {
	transport contract.Transport
	router    Router
	backoff   time.Duration
	log       *slog.Logger
}

func NewIntakeWorker(transport contract.Transport, router Router, backoff time.Duration, log *slog.Logger) *IntakeWorker {
	return &IntakeWorker{transport: transport, router: router, backoff: backoff, log: log}
}

func (w *IntakeWorker) Run(ctx context.Context) error {
	for {
		env, err := w.transport.Receive(ctx)
		switch {
		case stderrors.Is(err, errors.ErrTransportClosed):
			w.log.Info("transport closed, intake finished")
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			w.log.Warn("transport receive failed, backing off", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.backoff):
			}
			continue
		}

		if err := w.router.Submit(ctx, env); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Error("failed to route envelope", "event_id", env.EventID, "error", err)
		}
	}
}
