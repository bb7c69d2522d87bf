package workers

import (
	"context"
	"log/slog"
	"time"

	"portfolio-engine/domain/event"
)

// StallWatchdog watches the lane queues. A lane that stays saturated across
// consecutive checks means a stuck aggregate: the alert is surfaced through
// telemetry, the events are never dropped.
type StallWatchdog struct {
	log        *slog.Logger
	lanes      []chan LaneItem
	telemetry  chan event.Telemetry
	interval   time.Duration
	stallTicks int
	fullFor    []int
}

func NewStallWatchdog(log *slog.Logger, lanes []chan LaneItem,
	telemetry chan event.Telemetry, interval time.Duration, stallTicks int) *StallWatchdog {
	return &StallWatchdog{
		log:        log,
		lanes:      lanes,
		telemetry:  telemetry,
		interval:   interval,
		stallTicks: stallTicks,
		fullFor:    make([]int, len(lanes)),
	}
}

func (w *StallWatchdog) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping lane watchdog")
			return nil
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *StallWatchdog) check() {
	for i, lane := range w.lanes {
		if cap(lane) > 0 && len(lane) == cap(lane) {
			w.fullFor[i]++
		} else {
			w.fullFor[i] = 0
			continue
		}
		if w.fullFor[i] < w.stallTicks {
			continue
		}
		select {
		case w.telemetry <- event.Telemetry{
			Type:    event.LaneStalledType,
			Payload: event.LaneStalled{Lane: i, Pending: len(lane), Ticks: w.fullFor[i]},
			At:      time.Now(),
		}:
		default:
			w.log.Debug("Observability telemetry event lost")
		}
	}
}
