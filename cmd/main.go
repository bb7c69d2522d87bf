package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"portfolio-engine/domain/event"
	"portfolio-engine/internal"
	"portfolio-engine/repositories"
	"portfolio-engine/runtime"
	"portfolio-engine/runtime/workers"
	"portfolio-engine/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the engine lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Setup Supervision & Engine
	telemetry := make(chan event.Telemetry, config.LaneBufferSize)
	sup := workers.NewSupervisor(log, telemetry, config.RestartInterval)
	registry := runtime.NewRegistry()
	bus := transport.NewMemory(config.LaneBufferSize)
	defer bus.Close()

	store := repositories.NewAggregateStore(db, log)
	ledger := repositories.NewDedupLedger(db, log, config.DedupReservationTTL)
	deadLetters := repositories.NewDeadLetterQueue(db, log)
	audit := repositories.NewAuditTrail(db, log)

	engine := runtime.NewEngine(log, sup, registry, bus, store, ledger, deadLetters, audit,
		telemetry, runtime.Options{
			NumLanes:             config.NumberOfLanes,
			LaneBuffer:           config.LaneBufferSize,
			MaxAttempts:          config.MaxRetries,
			RetryBackoff:         config.RetryBackoff,
			SinkTimeout:          config.SinkTimeout,
			MetricInterval:       config.MetricInterval,
			LatencyThreshold:     config.LatencyThreshold,
			StallTicks:           config.StallTicks,
			LowCapacityThreshold: config.LowCapacityThreshold,
		})

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start the Engine
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting engine", "at", time.Now().UTC())
		if err := engine.Start(ctx); err != nil {
			errChan <- fmt.Errorf("engine failed to start: %w", err)
		}
	}()

	// 6. Wire stdin/stdout to the in-memory bus (NDJSON, one envelope per line)
	go feed(ctx, bus, log.With("io", "stdin"))
	go drain(ctx, bus)

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	engine.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

// feed reads NDJSON envelopes from stdin and pushes them onto the bus.
func feed(ctx context.Context, bus *transport.Memory, log *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var env event.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			log.Warn("invalid input line skipped", "error", err)
			continue
		}
		if err := bus.Send(ctx, env); err != nil {
			return
		}
	}
}

// drain prints published envelopes to stdout, one per line.
func drain(ctx context.Context, bus *transport.Memory) {
	enc := json.NewEncoder(os.Stdout)
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.Published():
			_ = enc.Encode(env)
		}
	}
}
