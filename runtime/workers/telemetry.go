package workers

import (
	"context"
	"log/slog"

	"portfolio-engine/domain/event"
)

// TelemetryWorker drains the telemetry channel and hands each event to the
// handler chain.
type TelemetryWorker struct {
	log       *slog.Logger
	telemetry chan event.Telemetry
	handlers  []event.Handler
}

func NewTelemetryWorker(log *slog.Logger, telemetry chan event.Telemetry, handlers ...event.Handler) *TelemetryWorker {
	return &TelemetryWorker{
		log:       log,
		telemetry: telemetry,
		handlers:  handlers,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping telemetry worker")
			return nil
		case t := <-w.telemetry:
			for _, h := range w.handlers {
				h.Handle(t)
			}
		}
	}
}
