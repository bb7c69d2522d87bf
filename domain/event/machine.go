package event

import (
	"fmt"

	"portfolio-engine/domain"
	apperrors "portfolio-engine/errors"
)

// Transition is the aggregate state machine. It is a pure function: no I/O,
// no clock, no randomness. Applying the same event to the same state always
// yields the same new state and the same produced events, which is what makes
// replay-based recovery possible.
//
// The returned state carries the incremented version; persisting it under the
// old version is the caller's commit point. On error the input state is
// returned unchanged and the version does not advance.
func Transition(p domain.Portfolio, evt DomainEvent) (domain.Portfolio, []Produced, error) {
	switch e := evt.(type) {
	case PortfolioCreated:
		return applyPortfolioCreated(p, e)
	case TradeExecuted:
		return applyTradeExecuted(p, e)
	case DividendPaid:
		return applyDividendPaid(p, e)
	case PriceUpdated:
		return applyPriceUpdated(p, e)
	case CustodianDataSynced:
		return applyCustodianDataSynced(p, e)
	case CorporateActionApplied:
		return applyCorporateActionApplied(p, e)
	default:
		return p, nil, fmt.Errorf("%w: %T", apperrors.ErrUnsupportedEventKind, evt)
	}
}

// applyPortfolioCreated establishes the aggregate at version 0 with empty
// holdings. The version does not advance on creation: the first mutation
// commits version 1.
func applyPortfolioCreated(p domain.Portfolio, e PortfolioCreated) (domain.Portfolio, []Produced, error) {
	if p.Version > 0 || !p.CreatedAt.IsZero() {
		return p, nil, fmt.Errorf("%w: portfolio %s already exists", apperrors.ErrMalformedEvent, e.Portfolio)
	}
	next := domain.NewPortfolio(e.Portfolio, e.OwnerID, e.Name, e.At)
	return next, updated(next, e), nil
}

func applyTradeExecuted(p domain.Portfolio, e TradeExecuted) (domain.Portfolio, []Produced, error) {
	held := p.Quantity(e.Asset)
	newQuantity := held.Add(e.SignedQuantity())
	if newQuantity.Sign() < 0 {
		return p, nil, fmt.Errorf("%w: sell of %s %s exceeds held %s in portfolio %s",
			apperrors.ErrNegativeHolding, e.Quantity, e.Asset, held, p.ID)
	}

	next := bump(p)
	next.SetHolding(e.Asset, newQuantity, e.Currency)
	return next, updated(next, e), nil
}

func applyDividendPaid(p domain.Portfolio, e DividendPaid) (domain.Portfolio, []Produced, error) {
	cash := domain.CashAsset(e.Currency)
	next := bump(p)
	next.SetHolding(cash, p.Quantity(cash).Add(e.Amount), e.Currency)
	return next, updated(next, e), nil
}

// applyPriceUpdated never touches quantities: it only republishes the
// valuation for a portfolio holding the asset. The version still advances so
// the republication is auditable.
func applyPriceUpdated(p domain.Portfolio, e PriceUpdated) (domain.Portfolio, []Produced, error) {
	next := bump(p)
	return next, updated(next, e), nil
}

func applyCustodianDataSynced(p domain.Portfolio, e CustodianDataSynced) (domain.Portfolio, []Produced, error) {
	next := bump(p)
	for _, a := range e.Assets {
		next.SetHolding(a.Asset, a.Quantity, a.Currency)
	}
	return next, updated(next, e), nil
}

func applyCorporateActionApplied(p domain.Portfolio, e CorporateActionApplied) (domain.Portfolio, []Produced, error) {
	next := bump(p)
	if e.Action == ActionStockSplit {
		if h, ok := next.Holdings[e.Asset]; ok {
			next.SetHolding(e.Asset, h.Quantity.Mul(e.Ratio), h.Currency)
		}
	}
	// Other action types are no-ops on quantities but still advance the
	// version and emit an audit event; they must never be silently dropped.
	return next, updated(next, e), nil
}

func bump(p domain.Portfolio) domain.Portfolio {
	next := p.Clone()
	next.Version = p.Version + 1
	return next
}

func updated(next domain.Portfolio, cause DomainEvent) []Produced {
	return []Produced{PortfolioUpdated{
		ID:         derivedID(cause.EventID(), KindPortfolioUpdated, next.Version),
		Portfolio:  next.ID,
		NewVersion: next.Version,
		Holdings:   SnapshotHoldings(next),
		Valuation:  next.NaiveValuation(),
		Causation:  cause.EventID(),
		At:         cause.OccurredAt(),
	}}
}
