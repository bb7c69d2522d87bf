package workers

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	"portfolio-engine/domain/event"
)

type NamedChannel struct {
	Name    string
	Channel any
}

// CapacityWorker periodically reports the current channel capacity and length.
// Reading len(channel) and cap(channel) is non-blocking, so this won't interfere
// with other goroutines. It's okay if a sample is dropped occasionally because
// metrics are sampled periodically.
type CapacityWorker struct {
	log            *slog.Logger
	channels       []NamedChannel
	telemetryChan  chan event.Telemetry
	metricInterval time.Duration
}

func NewCapacityWorker(log *slog.Logger,
	channels []NamedChannel, telemetryChan chan event.Telemetry,
	metricInterval time.Duration) *CapacityWorker {
	return &CapacityWorker{
		log: log, channels: channels,
		telemetryChan:  telemetryChan,
		metricInterval: metricInterval,
	}
}

func (w CapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping capacity sampling")
			return nil
		case <-ticker.C:
			for _, nc := range w.channels {
				v := reflect.ValueOf(nc.Channel)
				// Verify if this is a channel
				if v.Kind() != reflect.Chan {
					w.log.Error("Provided object is not a channel", "name", nc.Name)
					continue
				}
				select {
				case <-ctx.Done():
					return nil
				case w.telemetryChan <- toCapacityTelemetry(nc.Name, v.Cap(), v.Len()):
				default:
					w.log.Debug("Observability telemetry event lost")
				}
			}
		}
	}
}

func toCapacityTelemetry(name string, capacity, length int) event.Telemetry {
	return event.Telemetry{
		Type:    event.ChannelCapacityType,
		Payload: event.ChannelCapacity{ChannelName: name, Capacity: capacity, Length: length},
		At:      time.Now(),
	}
}
