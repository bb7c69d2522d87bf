// Package transport provides messaging backends satisfying contract.Transport.
package transport

import (
	"context"
	"sync"

	"portfolio-engine/contract"
	"portfolio-engine/domain/event"
	"portfolio-engine/errors"
)

var _ contract.Transport = (*Memory)(nil)

// Memory is a channel-backed transport for embedding and tests. Send feeds
// the inbound side consumed by Receive; Publish pushes to the outbound side
// exposed through Published.
type Memory struct {
	inbound  chan event.Envelope
	outbound chan event.Envelope
	done     chan struct{}
	closeOne sync.Once
}

func NewMemory(bufferSize int) *Memory {
	return &Memory{
		inbound:  make(chan event.Envelope, bufferSize),
		outbound: make(chan event.Envelope, bufferSize),
		done:     make(chan struct{}),
	}
}

// Send enqueues an inbound envelope for the engine to consume.
func (m *Memory) Send(ctx context.Context, env event.Envelope) error {
	select {
	case <-m.done:
		return errors.ErrTransportClosed
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return errors.ErrTransportClosed
	case m.inbound <- env:
		return nil
	}
}

func (m *Memory) Receive(ctx context.Context) (event.Envelope, error) {
	select {
	case <-ctx.Done():
		return event.Envelope{}, ctx.Err()
	case env, ok := <-m.inbound:
		if !ok {
			return event.Envelope{}, errors.ErrTransportClosed
		}
		return env, nil
	case <-m.done:
		// Drain what was sent before the close.
		select {
		case env, ok := <-m.inbound:
			if ok {
				return env, nil
			}
		default:
		}
		return event.Envelope{}, errors.ErrTransportClosed
	}
}

func (m *Memory) Publish(ctx context.Context, env event.Envelope) error {
	select {
	case <-m.done:
		return errors.ErrTransportClosed
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return errors.ErrTransportClosed
	case m.outbound <- env:
		return nil
	}
}

// Published exposes the outbound side for consumers and tests.
func (m *Memory) Published() <-chan event.Envelope {
	return m.outbound
}

// Close marks the transport closed. Receive drains remaining inbound
// envelopes, then reports errors.ErrTransportClosed.
func (m *Memory) Close() {
	m.closeOne.Do(func() {
		close(m.done)
	})
}
