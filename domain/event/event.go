package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"portfolio-engine/domain"
)

// Kind discriminates event payloads on the wire. The inbound set is closed:
// the state machine switches exhaustively over it, so adding a kind is a
// compile-time-checked change.
type Kind string

const (
	KindPortfolioCreated       Kind = "PortfolioCreated"
	KindTradeExecuted          Kind = "TradeExecuted"
	KindDividendPaid           Kind = "DividendPaid"
	KindPriceUpdated           Kind = "PriceUpdated"
	KindCustodianDataSynced    Kind = "CustodianDataSynced"
	KindCorporateActionApplied Kind = "CorporateActionApplied"

	KindPortfolioUpdated    Kind = "PortfolioUpdated"
	KindPortfolioRebalanced Kind = "PortfolioRebalanced"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type ActionType string

const (
	ActionStockSplit ActionType = "STOCK_SPLIT"
)

type DomainEvent interface {
	EventID() uuid.UUID
	Kind() Kind
	OccurredAt() time.Time
}

// PortfolioScoped events target exactly one aggregate.
type PortfolioScoped interface {
	DomainEvent
	PortfolioID() domain.PortfolioID
}

// AssetScoped events target an asset and are fanned out by the dispatcher to
// every portfolio holding it.
type AssetScoped interface {
	DomainEvent
	AssetID() domain.AssetID
}

// PortfolioCreated initializes an aggregate at version 0 with empty holdings.
// Upstream it is triggered by a UserCreated event in the account service.
type PortfolioCreated struct {
	ID        uuid.UUID
	Portfolio domain.PortfolioID
	OwnerID   string
	Name      string
	At        time.Time
}

func (e PortfolioCreated) EventID() uuid.UUID              { return e.ID }
func (e PortfolioCreated) Kind() Kind                      { return KindPortfolioCreated }
func (e PortfolioCreated) OccurredAt() time.Time           { return e.At }
func (e PortfolioCreated) PortfolioID() domain.PortfolioID { return e.Portfolio }

type TradeExecuted struct {
	ID            uuid.UUID
	TransactionID string
	Portfolio     domain.PortfolioID
	Asset         domain.AssetID
	Quantity      decimal.Decimal
	Side          Side
	Price         decimal.Decimal
	Currency      string
	At            time.Time
}

func (e TradeExecuted) EventID() uuid.UUID              { return e.ID }
func (e TradeExecuted) Kind() Kind                      { return KindTradeExecuted }
func (e TradeExecuted) OccurredAt() time.Time           { return e.At }
func (e TradeExecuted) PortfolioID() domain.PortfolioID { return e.Portfolio }

// SignedQuantity is +quantity for BUY and -quantity for SELL.
func (e TradeExecuted) SignedQuantity() decimal.Decimal {
	if e.Side == SideSell {
		return e.Quantity.Neg()
	}
	return e.Quantity
}

type DividendPaid struct {
	ID            uuid.UUID
	TransactionID string
	Portfolio     domain.PortfolioID
	Asset         domain.AssetID
	Amount        decimal.Decimal
	Currency      string
	At            time.Time
}

func (e DividendPaid) EventID() uuid.UUID              { return e.ID }
func (e DividendPaid) Kind() Kind                      { return KindDividendPaid }
func (e DividendPaid) OccurredAt() time.Time           { return e.At }
func (e DividendPaid) PortfolioID() domain.PortfolioID { return e.Portfolio }

type PriceUpdated struct {
	ID       uuid.UUID
	Asset    domain.AssetID
	Price    decimal.Decimal
	Currency string
	At       time.Time
}

func (e PriceUpdated) EventID() uuid.UUID      { return e.ID }
func (e PriceUpdated) Kind() Kind              { return KindPriceUpdated }
func (e PriceUpdated) OccurredAt() time.Time   { return e.At }
func (e PriceUpdated) AssetID() domain.AssetID { return e.Asset }

type CustodianAsset struct {
	Asset    domain.AssetID
	Quantity decimal.Decimal
	Currency string
}

// CustodianDataSynced carries reconciliation data: listed assets are replaced
// exactly, holdings the custodian does not mention stay untouched.
type CustodianDataSynced struct {
	ID        uuid.UUID
	Portfolio domain.PortfolioID
	Assets    []CustodianAsset
	At        time.Time
}

func (e CustodianDataSynced) EventID() uuid.UUID              { return e.ID }
func (e CustodianDataSynced) Kind() Kind                      { return KindCustodianDataSynced }
func (e CustodianDataSynced) OccurredAt() time.Time           { return e.At }
func (e CustodianDataSynced) PortfolioID() domain.PortfolioID { return e.Portfolio }

type CorporateActionApplied struct {
	ID     uuid.UUID
	Asset  domain.AssetID
	Action ActionType
	// Ratio is the n of an n:1 stock split. Zero for non-split actions.
	Ratio   decimal.Decimal
	Details map[string]string
	At      time.Time
}

func (e CorporateActionApplied) EventID() uuid.UUID      { return e.ID }
func (e CorporateActionApplied) Kind() Kind              { return KindCorporateActionApplied }
func (e CorporateActionApplied) OccurredAt() time.Time   { return e.At }
func (e CorporateActionApplied) AssetID() domain.AssetID { return e.Asset }
