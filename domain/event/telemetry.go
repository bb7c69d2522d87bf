package event

import (
	"sync"
	"time"

	"portfolio-engine/domain"
)

type TelemetryType string

const (
	RestartedAfterPanicType TelemetryType = "WORKER_RESTARTED_AFTER_PANIC"
	ChannelCapacityType     TelemetryType = "CHANNEL_CAPACITY"
	LaneStalledType         TelemetryType = "LANE_STALLED"
	ProcessingLatencyType   TelemetryType = "PROCESSING_LATENCY"
)

// Telemetry is an operational event. It never reaches the outbound transport;
// it flows on a dedicated channel into the telemetry handlers.
type Telemetry struct {
	Type    TelemetryType
	Payload any
	At      time.Time
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}

// LaneStalled signals a lane queue that stayed saturated across consecutive
// observations: a stuck aggregate that needs operator attention.
type LaneStalled struct {
	Lane    int
	Pending int
	Ticks   int
}

type ProcessingLatency struct {
	Portfolio domain.PortfolioID
	EventKind Kind
	LeadTime  time.Duration
}

// Counter accumulates per-type telemetry counts for handlers that track totals.
type Counter struct {
	mu     sync.Mutex
	counts map[TelemetryType]uint64
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[TelemetryType]uint64)}
}

func (c *Counter) Increment(t TelemetryType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[t]++
}

func (c *Counter) Get(t TelemetryType) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[t]
}
