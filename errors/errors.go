package errors

import "fmt"

// Sentinel errors for the processing taxonomy.
// The dispatcher maps each of these to a disposition: dead-letter, skip, retry or park.
var (
	ErrMalformedEvent       = fmt.Errorf("malformed event")
	ErrUnsupportedEventKind = fmt.Errorf("unsupported event kind")
	ErrNegativeHolding      = fmt.Errorf("negative holding")
	ErrVersionConflict      = fmt.Errorf("version conflict")
	ErrAggregateNotFound    = fmt.Errorf("aggregate not found")
	ErrAlreadyProcessed     = fmt.Errorf("event already processed")
	ErrReservationHeld      = fmt.Errorf("reservation already held")
	ErrStoreUnavailable     = fmt.Errorf("store unavailable")
	ErrTransportUnavailable = fmt.Errorf("transport unavailable")
	ErrTransportClosed      = fmt.Errorf("transport closed")
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrInvalidPayload       = fmt.Errorf("invalid telemetry payload")
	ErrLaneSaturated        = fmt.Errorf("lane saturated")
)
