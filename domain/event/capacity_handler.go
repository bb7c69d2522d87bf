package event

import (
	"fmt"
	"log/slog"

	"portfolio-engine/errors"
)

// CapacityHandler handles telemetry reporting the capacity of internal channels.
// Useful for observability, detecting backpressure, and avoiding silent drops.
type CapacityHandler struct {
	log                  *slog.Logger
	lowCapacityThreshold int
}

func NewCapacityHandler(log *slog.Logger, lowCapacityThreshold int) *CapacityHandler {
	return &CapacityHandler{log: log, lowCapacityThreshold: lowCapacityThreshold}
}

func (h CapacityHandler) Handle(t Telemetry) {
	switch t.Type {
	case ChannelCapacityType:
		payload, ok := t.Payload.(ChannelCapacity)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.log.Debug(fmt.Sprintf("Channel %s usage: %d / %d", payload.ChannelName, payload.Length, payload.Capacity))
		if payload.Capacity <= 0 {
			// In case of unbuffered channel
			return
		}
		capacityLeft := payload.Capacity - payload.Length
		if capacityLeft > 0 && capacityLeft <= h.lowCapacityThreshold {
			h.log.Warn(fmt.Sprintf("channel %s capacity left : %d", payload.ChannelName, capacityLeft))
		}
	}
}
