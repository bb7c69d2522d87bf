// Package runtime wires the processing pipeline: intake, per-aggregate lanes,
// publishing and observability. It orchestrates the system without containing
// business logic or domain rules.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio-engine/contract"
	"portfolio-engine/domain"
	"portfolio-engine/domain/event"
	"portfolio-engine/projection"
	"portfolio-engine/repositories"
	"portfolio-engine/runtime/workers"
	"portfolio-engine/sink"
)

// Options groups the tuning knobs of the engine. Zero values are replaced by
// conservative defaults in NewEngine.
type Options struct {
	NumLanes             int
	LaneBuffer           int
	MaxAttempts          int
	RetryBackoff         time.Duration
	SinkTimeout          time.Duration
	MetricInterval       time.Duration
	LatencyThreshold     time.Duration
	StallTicks           int
	LowCapacityThreshold int
}

func (o Options) withDefaults() Options {
	if o.NumLanes <= 0 {
		o.NumLanes = 4
	}
	if o.LaneBuffer <= 0 {
		o.LaneBuffer = 64
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 100 * time.Millisecond
	}
	if o.SinkTimeout <= 0 {
		o.SinkTimeout = 2 * time.Second
	}
	if o.MetricInterval <= 0 {
		o.MetricInterval = 5 * time.Second
	}
	if o.LatencyThreshold <= 0 {
		o.LatencyThreshold = 500 * time.Millisecond
	}
	if o.StallTicks <= 0 {
		o.StallTicks = 3
	}
	if o.LowCapacityThreshold <= 0 {
		o.LowCapacityThreshold = 10
	}
	return o
}

// Engine owns the channels and workers of the pipeline. Construction is cheap;
// Start builds the workers, registers them on the supervisor and blocks until
// shutdown.
type Engine struct {
	mu             sync.Mutex
	log            *slog.Logger
	opts           Options
	supervisor     contract.ISupervisor
	registry       contract.IRegistry
	transport      contract.Transport
	store          repositories.IAggregateStore
	ledger         repositories.IDedupLedger
	deadLetters    repositories.IDeadLetterQueue
	audit          repositories.IAuditTrail
	permanentSinks []contract.EventSink
	lanes          []chan workers.LaneItem
	produced       chan event.Produced
	telemetry      chan event.Telemetry
	counter        *event.Counter
	dispatcher     *Dispatcher
}

func NewEngine(
	log *slog.Logger,
	supervisor contract.ISupervisor,
	registry contract.IRegistry,
	transport contract.Transport,
	store repositories.IAggregateStore,
	ledger repositories.IDedupLedger,
	deadLetters repositories.IDeadLetterQueue,
	audit repositories.IAuditTrail,
	telemetry chan event.Telemetry,
	opts Options,
) *Engine {
	opts = opts.withDefaults()
	lanes := make([]chan workers.LaneItem, opts.NumLanes)
	for i := range lanes {
		lanes[i] = make(chan workers.LaneItem, opts.LaneBuffer)
	}
	e := &Engine{
		log:         log,
		opts:        opts,
		supervisor:  supervisor,
		registry:    registry,
		transport:   transport,
		store:       store,
		ledger:      ledger,
		deadLetters: deadLetters,
		audit:       audit,
		lanes:       lanes,
		produced:    make(chan event.Produced, opts.LaneBuffer),
		telemetry:   telemetry,
		counter:     event.NewCounter(),
	}
	e.dispatcher = NewDispatcher(log, lanes, store, deadLetters, telemetry)
	return e
}

func (e *Engine) Add(sinks ...contract.EventSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.permanentSinks = append(e.permanentSinks, sinks...)
}

// Submit routes one envelope directly, bypassing the transport. Used by
// embedders and by dead-letter requeue.
func (e *Engine) Submit(ctx context.Context, env event.Envelope) error {
	return e.dispatcher.Submit(ctx, env)
}

func (e *Engine) RegisterSubscriber(subscriberID string, id domain.PortfolioID, s contract.EventSink) {
	e.registry.Subscribe(subscriberID, id, s)
}

func (e *Engine) UnregisterSubscriber(subscriberID string, id domain.PortfolioID) {
	e.registry.Unsubscribe(subscriberID, id)
}

func (e *Engine) Portfolio(ctx context.Context, id domain.PortfolioID) (domain.Portfolio, error) {
	return e.store.Load(ctx, id)
}

func (e *Engine) PortfoliosOf(ctx context.Context, ownerID string) ([]domain.Portfolio, error) {
	return e.store.ListByOwner(ctx, ownerID)
}

func (e *Engine) History(ctx context.Context, id domain.PortfolioID, limit int) ([]event.PortfolioUpdated, error) {
	return e.audit.History(ctx, id, limit)
}

func (e *Engine) DeadLetters(ctx context.Context, limit int) ([]repositories.DeadLetter, error) {
	return e.deadLetters.List(ctx, limit)
}

// Requeue pulls a parked event out of the dead-letter queue and pushes it
// through the pipeline again.
func (e *Engine) Requeue(ctx context.Context, eventID uuid.UUID) error {
	letter, err := e.deadLetters.Requeue(ctx, eventID)
	if err != nil {
		return err
	}
	return e.dispatcher.Submit(ctx, letter.Envelope)
}

func (e *Engine) Counter() *event.Counter {
	return e.counter
}

// Start initiates the engine by preparing all components (lanes, pipeline,
// observability) and then starting the supervisor. It uses a preparation
// pattern to minimize mutex locking time.
func (e *Engine) Start(ctx context.Context) error {
	// 1. Preparation phase (No Lock)
	laneWorkers := e.prepareLaneWorkers()
	publisher, pipeline, newSinks := e.preparePipeline()
	observability := e.prepareObservability()

	// 2. Critical Section (Short Lock)
	e.mu.Lock()
	// Attach the sinks under the lock: Add can run concurrently and the
	// slice must not be read outside it.
	e.permanentSinks = append(e.permanentSinks, newSinks...)
	publisher.Add(e.permanentSinks...)
	for _, w := range laneWorkers {
		e.supervisor.Add(w)
	}
	e.supervisor.Add(pipeline...)
	e.supervisor.Add(observability...)
	e.mu.Unlock()

	// 3. Execution phase (No Lock)
	e.log.Info("Starting engine and all supervised workers", "lanes", e.opts.NumLanes)
	e.supervisor.Run(ctx)
	return nil
}

func (e *Engine) prepareLaneWorkers() []contract.Worker {
	var res []contract.Worker
	for i, lane := range e.lanes {
		res = append(res, workers.NewLaneWorker(
			i, lane, e.produced, e.telemetry,
			e.store, e.ledger, e.deadLetters,
			e.opts.MaxAttempts, e.opts.RetryBackoff, e.log,
		))
	}
	return res
}

// preparePipeline initializes the intake, the default sinks and the publisher.
// The publisher is returned bare: Start attaches the permanent sinks to it
// inside the critical section.
func (e *Engine) preparePipeline() (*workers.PublisherWorker, []contract.Worker, []contract.EventSink) {
	newSinks := []contract.EventSink{
		projection.NewTimeline(),
		sink.NewAuditSink(e.audit, e.log),
	}

	publisher := workers.NewPublisherWorker(
		e.log, e.produced, e.transport, e.registry, e.deadLetters,
		e.opts.SinkTimeout, e.opts.MaxAttempts, e.opts.RetryBackoff,
	)

	intake := workers.NewIntakeWorker(e.transport, e.dispatcher, e.opts.RetryBackoff, e.log)

	return publisher, []contract.Worker{intake, publisher}, newSinks
}

func (e *Engine) prepareObservability() []contract.Worker {
	handlers := []event.Handler{
		event.NewCapacityHandler(e.log, e.opts.LowCapacityThreshold),
		event.NewLatencyHandler(e.log, e.opts.LatencyThreshold),
		event.NewStallHandler(e.log, e.counter),
		event.NewRestartedAfterPanicHandler(e.log, e.counter),
	}
	channels := []workers.NamedChannel{{Name: "produced", Channel: e.produced}}
	for i, lane := range e.lanes {
		channels = append(channels, workers.NamedChannel{Name: fmt.Sprintf("lane-%d", i), Channel: lane})
	}
	capacity := workers.NewCapacityWorker(e.log, channels, e.telemetry, e.opts.MetricInterval)
	watchdog := workers.NewStallWatchdog(e.log, e.lanes, e.telemetry, e.opts.MetricInterval, e.opts.StallTicks)
	drain := workers.NewTelemetryWorker(e.log, e.telemetry, handlers...)
	return []contract.Worker{capacity, watchdog, drain}
}

// Stop initiates a graceful shutdown. Workers observe the canceled context
// and drain what they hold before returning.
func (e *Engine) Stop() {
	e.log.Info("Requesting engine shutdown")
	e.supervisor.Stop()
}
