// Package projection builds local read models from committed events.
// Handles ordering, deduplication, and projections.
// Does not emit events or interact with storage directly.
package projection

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"portfolio-engine/domain"
	"portfolio-engine/domain/event"
)

// Entry is one committed change of a portfolio as seen by the timeline.
type Entry struct {
	EventID   uuid.UUID
	Causation uuid.UUID
	Version   uint64
	Holdings  []event.HoldingSnapshot
	Valuation string
}

// Timeline keeps the per-portfolio chain of committed updates. Redeliveries
// across restarts are absorbed by the seen set, so the chain never shows the
// same event twice.
type Timeline struct {
	mu      sync.RWMutex
	entries map[domain.PortfolioID][]Entry
	seen    map[uuid.UUID]struct{}
}

func NewTimeline() *Timeline {
	return &Timeline{
		entries: make(map[domain.PortfolioID][]Entry),
		seen:    make(map[uuid.UUID]struct{}),
	}
}

func (t *Timeline) Consume(_ context.Context, e event.Produced) error {
	evt, ok := e.(event.PortfolioUpdated)
	if !ok {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, dup := t.seen[evt.ID]; dup {
		return nil
	}
	t.seen[evt.ID] = struct{}{}
	t.entries[evt.Portfolio] = append(t.entries[evt.Portfolio], Entry{
		EventID:   evt.ID,
		Causation: evt.Causation,
		Version:   evt.NewVersion,
		Holdings:  evt.Holdings,
		Valuation: evt.Valuation.String(),
	})
	return nil
}

// Entries returns a copy of the timeline for one portfolio, oldest first.
func (t *Timeline) Entries(id domain.PortfolioID) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Entry{}, t.entries[id]...)
}
