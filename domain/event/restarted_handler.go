package event

import (
	"fmt"
	"log/slog"
	"sync"

	"portfolio-engine/errors"
)

// RestartedAfterPanicHandler handles events when a worker panics and is restarted.
// It is triggered by the Supervisor when a worker recovers from a panic.
// Useful for monitoring reliability and resilience of the system.
type RestartedAfterPanicHandler struct {
	log     *slog.Logger
	mu      sync.Mutex
	counter *Counter
}

func NewRestartedAfterPanicHandler(log *slog.Logger, counter *Counter) *RestartedAfterPanicHandler {
	return &RestartedAfterPanicHandler{
		log:     log,
		counter: counter,
	}
}

func (h *RestartedAfterPanicHandler) Handle(t Telemetry) {
	switch t.Type {
	case RestartedAfterPanicType:
		payload, ok := t.Payload.(WorkerRestartedAfterPanic)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		h.counter.Increment(RestartedAfterPanicType)
		h.log.Debug(fmt.Sprintf("Worker %s restarted after panic, total: %d",
			payload.WorkerName, h.counter.Get(RestartedAfterPanicType)))
	}
}
