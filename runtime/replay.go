package runtime

import (
	"fmt"

	"portfolio-engine/domain"
	"portfolio-engine/domain/event"
)

// Replay rebuilds a portfolio by folding an ordered event history over the
// transition function, starting from the empty aggregate. The produced events
// are discarded: replay reconstructs state, it does not re-publish.
func Replay(id domain.PortfolioID, history []event.DomainEvent) (domain.Portfolio, error) {
	current := domain.Portfolio{ID: id, Holdings: map[domain.AssetID]domain.Holding{}}
	for i, evt := range history {
		next, _, err := event.Transition(current, evt)
		if err != nil {
			return domain.Portfolio{}, fmt.Errorf("replaying event %d (%s): %w", i, evt.Kind(), err)
		}
		current = next
	}
	return current, nil
}
