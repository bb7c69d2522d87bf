package runtime

import (
	"sync"

	"portfolio-engine/contract"
	"portfolio-engine/domain"
)

type Set map[string]struct{}

var _ contract.IRegistry = (*Registry)(nil)

// Registry tracks live subscriber sinks per portfolio, on top of the
// permanent sinks wired at startup.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]contract.EventSink // map subscriber -> Sink
	subscribers map[domain.PortfolioID]Set    // map portfolio to subscribers
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]contract.EventSink),
		subscribers: make(map[domain.PortfolioID]Set),
	}
}

// GetSinksFor retrieves all active sinks for a specific portfolio.
// It performs a two-step lookup:
// 1. Identifies subscriber IDs associated with the portfolio.
// 2. Resolves those IDs into actual EventSinks using the sessions map.
//
// This decoupled approach ensures that even if a subscriber watches multiple
// portfolios, their sink is managed in a single place.
// Returns nil if the portfolio has no subscribers.
func (r *Registry) GetSinksFor(id domain.PortfolioID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.subscribers[id]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for subscriberID := range members {
		if sink, exists := r.sessions[subscriberID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe registers a subscriber's sink and attaches it to a portfolio.
// If the portfolio has no entry yet, it is initialized on the fly.
func (r *Registry) Subscribe(subscriberID string, id domain.PortfolioID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[subscriberID] = sink

	if _, ok := r.subscribers[id]; !ok {
		r.subscribers[id] = make(Set)
	}
	r.subscribers[id][subscriberID] = struct{}{}
}

// Unsubscribe removes a subscriber from the registry and the portfolio.
// Empty sets are removed to prevent the map from growing over time.
func (r *Registry) Unsubscribe(subscriberID string, id domain.PortfolioID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, subscriberID)

	if members, ok := r.subscribers[id]; ok {
		delete(members, subscriberID)

		if len(members) == 0 {
			delete(r.subscribers, id)
		}
	}
}
