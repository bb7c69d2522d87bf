package event

import (
	"fmt"
	"log/slog"

	"portfolio-engine/errors"
)

// StallHandler surfaces stuck aggregate lanes as operational alerts. A lane
// whose queue stays full is never drained silently; an operator has to look.
type StallHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewStallHandler(log *slog.Logger, counter *Counter) *StallHandler {
	return &StallHandler{log: log, counter: counter}
}

func (h *StallHandler) Handle(t Telemetry) {
	switch t.Type {
	case LaneStalledType:
		payload, ok := t.Payload.(LaneStalled)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(LaneStalledType)
		h.log.Error(fmt.Sprintf("lane %d stalled: %d events pending for %d consecutive checks",
			payload.Lane, payload.Pending, payload.Ticks))
	}
}
