package domain

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type PortfolioID string

type AssetID string

// CashAsset is the reserved asset identifier holding cash-equivalent
// positions credited by dividends, one per currency.
func CashAsset(currency string) AssetID {
	return AssetID(fmt.Sprintf("CASH:%s", currency))
}

// Holding is a single position inside a portfolio.
// A holding with quantity zero is removed from the portfolio, never stored.
type Holding struct {
	Asset    AssetID         `json:"assetId"`
	Quantity decimal.Decimal `json:"quantity"`
	Currency string          `json:"currency"`
}

// Portfolio is the aggregate root. It is mutated exclusively by the state
// machine in machine.go; callers only ever observe committed snapshots.
type Portfolio struct {
	ID        PortfolioID         `json:"portfolioId"`
	OwnerID   string              `json:"ownerId"`
	Name      string              `json:"name"`
	Holdings  map[AssetID]Holding `json:"holdings"`
	Version   uint64              `json:"version"`
	CreatedAt time.Time           `json:"createdAt"`
}

func NewPortfolio(id PortfolioID, ownerID, name string, createdAt time.Time) Portfolio {
	return Portfolio{
		ID:        id,
		OwnerID:   ownerID,
		Name:      name,
		Holdings:  make(map[AssetID]Holding),
		CreatedAt: createdAt,
	}
}

// Clone returns a deep copy. Transitions operate on the copy so that a
// rejected event leaves the loaded state untouched.
func (p Portfolio) Clone() Portfolio {
	clone := p
	clone.Holdings = make(map[AssetID]Holding, len(p.Holdings))
	for asset, h := range p.Holdings {
		clone.Holdings[asset] = h
	}
	return clone
}

func (p Portfolio) Quantity(asset AssetID) decimal.Decimal {
	if h, ok := p.Holdings[asset]; ok {
		return h.Quantity
	}
	return decimal.Zero
}

func (p Portfolio) Holds(asset AssetID) bool {
	_, ok := p.Holdings[asset]
	return ok
}

func (p Portfolio) HeldAssets() []AssetID {
	return lo.Keys(p.Holdings)
}

// NaiveValuation is the sum of all holding quantities. Price-based valuation
// is delegated to downstream consumers of PortfolioUpdated.
func (p Portfolio) NaiveValuation() decimal.Decimal {
	total := decimal.Zero
	for _, h := range p.Holdings {
		total = total.Add(h.Quantity)
	}
	return total
}

// SetHolding enforces the zero-entry invariant: setting an exactly-zero
// quantity deletes the entry instead of storing it. Negative quantities are
// rejected upstream, never here.
func (p *Portfolio) SetHolding(asset AssetID, quantity decimal.Decimal, currency string) {
	if quantity.IsZero() {
		delete(p.Holdings, asset)
		return
	}
	p.Holdings[asset] = Holding{Asset: asset, Quantity: quantity, Currency: currency}
}
