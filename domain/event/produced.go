package event

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"portfolio-engine/domain"
)

// Produced events are derived by the state machine and handed to the
// outbound publisher after the aggregate commit.
type Produced interface {
	DomainEvent
	PortfolioID() domain.PortfolioID
	CausationID() uuid.UUID
}

type HoldingSnapshot struct {
	Asset    domain.AssetID  `json:"assetId"`
	Quantity decimal.Decimal `json:"quantity"`
	Currency string          `json:"currency"`
}

// SnapshotHoldings flattens a holdings map into a slice sorted by asset id,
// so the same state always snapshots identically.
func SnapshotHoldings(p domain.Portfolio) []HoldingSnapshot {
	snapshot := make([]HoldingSnapshot, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		snapshot = append(snapshot, HoldingSnapshot{Asset: h.Asset, Quantity: h.Quantity, Currency: h.Currency})
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Asset < snapshot[j].Asset })
	return snapshot
}

type PortfolioUpdated struct {
	ID         uuid.UUID
	Portfolio  domain.PortfolioID
	NewVersion uint64
	Holdings   []HoldingSnapshot
	Valuation  decimal.Decimal
	Causation  uuid.UUID
	At         time.Time
}

func (e PortfolioUpdated) EventID() uuid.UUID              { return e.ID }
func (e PortfolioUpdated) Kind() Kind                      { return KindPortfolioUpdated }
func (e PortfolioUpdated) OccurredAt() time.Time           { return e.At }
func (e PortfolioUpdated) PortfolioID() domain.PortfolioID { return e.Portfolio }
func (e PortfolioUpdated) CausationID() uuid.UUID          { return e.Causation }

// PortfolioRebalanced is reserved for the rebalancing trigger, which lives
// outside this engine. The type and codec exist so downstream contracts are
// stable; nothing here produces it.
type PortfolioRebalanced struct {
	ID             uuid.UUID
	Portfolio      domain.PortfolioID
	NewAllocations map[domain.AssetID]decimal.Decimal
	Causation      uuid.UUID
	At             time.Time
}

func (e PortfolioRebalanced) EventID() uuid.UUID              { return e.ID }
func (e PortfolioRebalanced) Kind() Kind                      { return KindPortfolioRebalanced }
func (e PortfolioRebalanced) OccurredAt() time.Time           { return e.At }
func (e PortfolioRebalanced) PortfolioID() domain.PortfolioID { return e.Portfolio }
func (e PortfolioRebalanced) CausationID() uuid.UUID          { return e.Causation }

// derivedID computes a produced event id from its causation id and position,
// keeping transitions fully deterministic for replay.
func derivedID(causation uuid.UUID, kind Kind, version uint64) uuid.UUID {
	return uuid.NewSHA1(causation, []byte(fmt.Sprintf("%s:%d", kind, version)))
}
