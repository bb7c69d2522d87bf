//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"portfolio-engine/domain"
	"portfolio-engine/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Transport is the messaging collaborator. The engine only defines the
// contract a broker must satisfy: Receive blocks until an inbound envelope is
// available, Publish hands an outbound envelope over. Both honor ctx
// cancellation; a closed transport returns errors.ErrTransportClosed.
type Transport interface {
	Receive(ctx context.Context) (event.Envelope, error)
	Publish(ctx context.Context, env event.Envelope) error
}

// EventSink consumes produced events after commit. Sinks must tolerate
// redelivery across process restarts; within one process each committed event
// is forwarded once.
type EventSink interface {
	Consume(ctx context.Context, e event.Produced) error
}

// IRegistry tracks downstream subscribers interested in a single portfolio's
// produced events, on top of the permanent sinks wired at startup.
type IRegistry interface {
	GetSinksFor(id domain.PortfolioID) []EventSink
	Subscribe(subscriberID string, id domain.PortfolioID, sink EventSink)
	Unsubscribe(subscriberID string, id domain.PortfolioID)
}
