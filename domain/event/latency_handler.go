package event

import (
	"log/slog"
	"time"

	"portfolio-engine/errors"
)

type LatencyHandler struct {
	log              *slog.Logger
	latencyThreshold time.Duration
}

func NewLatencyHandler(log *slog.Logger, latencyThreshold time.Duration) *LatencyHandler {
	return &LatencyHandler{log: log, latencyThreshold: latencyThreshold}
}

func (h *LatencyHandler) Handle(t Telemetry) {
	switch t.Type {
	case ProcessingLatencyType:
		payload, ok := t.Payload.(ProcessingLatency)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}

		h.log.Info("telemetry: processing latency",
			"portfolio_id", payload.Portfolio,
			"event_kind", payload.EventKind,
			"lead_time_ms", payload.LeadTime.Milliseconds(),
		)

		if payload.LeadTime > h.latencyThreshold {
			h.log.Warn("high latency detected", "lead_time", payload.LeadTime)
		}
	}
}
