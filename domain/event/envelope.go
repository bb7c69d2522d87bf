package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"portfolio-engine/domain"
	apperrors "portfolio-engine/errors"
)

// Envelope is the wire-agnostic shape of an event. AggregateID is empty for
// asset-scoped kinds (PriceUpdated, CorporateActionApplied), which the
// dispatcher fans out to every portfolio holding the asset.
type Envelope struct {
	EventID     uuid.UUID       `json:"eventId"`
	EventKind   Kind            `json:"eventKind"`
	AggregateID string          `json:"aggregateId,omitempty"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

var validate = validator.New()

type decoder func(Envelope) (DomainEvent, error)

// registry maps event kinds to payload decoders. Produced kinds are
// registered too so that Encode/Decode round-trips losslessly.
var registry = map[Kind]decoder{
	KindPortfolioCreated:       decodePortfolioCreated,
	KindTradeExecuted:          decodeTradeExecuted,
	KindDividendPaid:           decodeDividendPaid,
	KindPriceUpdated:           decodePriceUpdated,
	KindCustodianDataSynced:    decodeCustodianDataSynced,
	KindCorporateActionApplied: decodeCorporateActionApplied,
	KindPortfolioUpdated:       decodePortfolioUpdated,
	KindPortfolioRebalanced:    decodePortfolioRebalanced,
}

// Decode turns an opaque envelope into a typed event. An unrecognized kind
// yields ErrUnsupportedEventKind; missing or ill-typed required fields yield
// ErrMalformedEvent.
func Decode(env Envelope) (DomainEvent, error) {
	dec, ok := registry[env.EventKind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedEventKind, env.EventKind)
	}
	if env.EventID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing eventId", apperrors.ErrMalformedEvent)
	}
	return dec(env)
}

// Encode is the mirror of Decode for outbound events.
func Encode(evt DomainEvent) (Envelope, error) {
	payload, err := marshalPayload(evt)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", evt.Kind(), err)
	}
	env := Envelope{
		EventID:    evt.EventID(),
		EventKind:  evt.Kind(),
		Payload:    payload,
		OccurredAt: evt.OccurredAt(),
	}
	if scoped, ok := evt.(interface{ PortfolioID() domain.PortfolioID }); ok {
		env.AggregateID = string(scoped.PortfolioID())
	}
	return env, nil
}

func unmarshalPayload(env Envelope, dst any) error {
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		return fmt.Errorf("%w: %s payload: %v", apperrors.ErrMalformedEvent, env.EventKind, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s payload: %v", apperrors.ErrMalformedEvent, env.EventKind, err)
	}
	return nil
}

type portfolioCreatedPayload struct {
	PortfolioID string    `json:"portfolioId" validate:"required"`
	OwnerID     string    `json:"ownerId" validate:"required"`
	Name        string    `json:"name"`
	Timestamp   time.Time `json:"timestamp"`
}

func decodePortfolioCreated(env Envelope) (DomainEvent, error) {
	var p portfolioCreatedPayload
	if err := unmarshalPayload(env, &p); err != nil {
		return nil, err
	}
	return PortfolioCreated{
		ID:        env.EventID,
		Portfolio: domain.PortfolioID(p.PortfolioID),
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		At:        timestampOr(p.Timestamp, env.OccurredAt),
	}, nil
}

type tradeExecutedPayload struct {
	TransactionID string          `json:"transactionId" validate:"required"`
	PortfolioID   string          `json:"portfolioId" validate:"required"`
	AssetID       string          `json:"assetId" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
	Side          string          `json:"side" validate:"required,oneof=BUY SELL"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency" validate:"required,iso4217"`
	Timestamp     time.Time       `json:"timestamp"`
}

func decodeTradeExecuted(env Envelope) (DomainEvent, error) {
	var p tradeExecutedPayload
	if err := unmarshalPayload(env, &p); err != nil {
		return nil, err
	}
	if p.Quantity.Sign() <= 0 {
		return nil, fmt.Errorf("%w: trade quantity must be positive, got %s", apperrors.ErrMalformedEvent, p.Quantity)
	}
	if p.Price.Sign() < 0 {
		return nil, fmt.Errorf("%w: trade price must not be negative, got %s", apperrors.ErrMalformedEvent, p.Price)
	}
	return TradeExecuted{
		ID:            env.EventID,
		TransactionID: p.TransactionID,
		Portfolio:     domain.PortfolioID(p.PortfolioID),
		Asset:         domain.AssetID(p.AssetID),
		Quantity:      p.Quantity,
		Side:          Side(p.Side),
		Price:         p.Price,
		Currency:      p.Currency,
		At:            timestampOr(p.Timestamp, env.OccurredAt),
	}, nil
}

type dividendPaidPayload struct {
	TransactionID string          `json:"transactionId" validate:"required"`
	PortfolioID   string          `json:"portfolioId" validate:"required"`
	AssetID       string          `json:"assetId" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency" validate:"required,iso4217"`
	Timestamp     time.Time       `json:"timestamp"`
}

func decodeDividendPaid(env Envelope) (DomainEvent, error) {
	var p dividendPaidPayload
	if err := unmarshalPayload(env, &p); err != nil {
		return nil, err
	}
	if p.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: dividend amount must be positive, got %s", apperrors.ErrMalformedEvent, p.Amount)
	}
	return DividendPaid{
		ID:            env.EventID,
		TransactionID: p.TransactionID,
		Portfolio:     domain.PortfolioID(p.PortfolioID),
		Asset:         domain.AssetID(p.AssetID),
		Amount:        p.Amount,
		Currency:      p.Currency,
		At:            timestampOr(p.Timestamp, env.OccurredAt),
	}, nil
}

type priceUpdatedPayload struct {
	AssetID   string          `json:"assetId" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency" validate:"required,iso4217"`
	Timestamp time.Time       `json:"timestamp"`
}

func decodePriceUpdated(env Envelope) (DomainEvent, error) {
	var p priceUpdatedPayload
	if err := unmarshalPayload(env, &p); err != nil {
		return nil, err
	}
	if p.Price.Sign() < 0 {
		return nil, fmt.Errorf("%w: price must not be negative, got %s", apperrors.ErrMalformedEvent, p.Price)
	}
	return PriceUpdated{
		ID:       env.EventID,
		Asset:    domain.AssetID(p.AssetID),
		Price:    p.Price,
		Currency: p.Currency,
		At:       timestampOr(p.Timestamp, env.OccurredAt),
	}, nil
}

type custodianAssetPayload struct {
	AssetID  string          `json:"assetId" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Currency string          `json:"currency" validate:"required,iso4217"`
}

type custodianDataSyncedPayload struct {
	PortfolioID string                  `json:"portfolioId" validate:"required"`
	Assets      []custodianAssetPayload `json:"assets" validate:"required,dive"`
	Timestamp   time.Time               `json:"timestamp"`
}

func decodeCustodianDataSynced(env Envelope) (DomainEvent, error) {
	var p custodianDataSyncedPayload
	if err := unmarshalPayload(env, &p); err != nil {
		return nil, err
	}
	for _, a := range p.Assets {
		if a.Quantity.Sign() < 0 {
			return nil, fmt.Errorf("%w: custodian quantity for %s must not be negative, got %s",
				apperrors.ErrMalformedEvent, a.AssetID, a.Quantity)
		}
	}
	return CustodianDataSynced{
		ID:        env.EventID,
		Portfolio: domain.PortfolioID(p.PortfolioID),
		Assets: lo.Map(p.Assets, func(a custodianAssetPayload, _ int) CustodianAsset {
			return CustodianAsset{Asset: domain.AssetID(a.AssetID), Quantity: a.Quantity, Currency: a.Currency}
		}),
		At: timestampOr(p.Timestamp, env.OccurredAt),
	}, nil
}

type corporateActionPayload struct {
	AssetID    string            `json:"assetId" validate:"required"`
	ActionType string            `json:"actionType" validate:"required"`
	Ratio      decimal.Decimal   `json:"ratio"`
	Details    map[string]string `json:"details"`
	Timestamp  time.Time         `json:"timestamp"`
}

func decodeCorporateActionApplied(env Envelope) (DomainEvent, error) {
	var p corporateActionPayload
	if err := unmarshalPayload(env, &p); err != nil {
		return nil, err
	}
	if ActionType(p.ActionType) == ActionStockSplit && p.Ratio.Sign() <= 0 {
		return nil, fmt.Errorf("%w: stock split ratio must be positive, got %s", apperrors.ErrMalformedEvent, p.Ratio)
	}
	return CorporateActionApplied{
		ID:      env.EventID,
		Asset:   domain.AssetID(p.AssetID),
		Action:  ActionType(p.ActionType),
		Ratio:   p.Ratio,
		Details: p.Details,
		At:      timestampOr(p.Timestamp, env.OccurredAt),
	}, nil
}

type portfolioUpdatedPayload struct {
	PortfolioID string            `json:"portfolioId" validate:"required"`
	NewVersion  uint64            `json:"newVersion"`
	Holdings    []HoldingSnapshot `json:"holdings"`
	Valuation   decimal.Decimal   `json:"valuation"`
	CausationID uuid.UUID         `json:"causationEventId"`
	Timestamp   time.Time         `json:"timestamp"`
}

func decodePortfolioUpdated(env Envelope) (DomainEvent, error) {
	var p portfolioUpdatedPayload
	if err := unmarshalPayload(env, &p); err != nil {
		return nil, err
	}
	return PortfolioUpdated{
		ID:         env.EventID,
		Portfolio:  domain.PortfolioID(p.PortfolioID),
		NewVersion: p.NewVersion,
		Holdings:   p.Holdings,
		Valuation:  p.Valuation,
		Causation:  p.CausationID,
		At:         timestampOr(p.Timestamp, env.OccurredAt),
	}, nil
}

type portfolioRebalancedPayload struct {
	PortfolioID    string                     `json:"portfolioId" validate:"required"`
	NewAllocations map[string]decimal.Decimal `json:"newAllocations"`
	CausationID    uuid.UUID                  `json:"causationEventId"`
	Timestamp      time.Time                  `json:"timestamp"`
}

func decodePortfolioRebalanced(env Envelope) (DomainEvent, error) {
	var p portfolioRebalancedPayload
	if err := unmarshalPayload(env, &p); err != nil {
		return nil, err
	}
	allocations := make(map[domain.AssetID]decimal.Decimal, len(p.NewAllocations))
	for asset, weight := range p.NewAllocations {
		allocations[domain.AssetID(asset)] = weight
	}
	return PortfolioRebalanced{
		ID:             env.EventID,
		Portfolio:      domain.PortfolioID(p.PortfolioID),
		NewAllocations: allocations,
		Causation:      p.CausationID,
		At:             timestampOr(p.Timestamp, env.OccurredAt),
	}, nil
}

func marshalPayload(evt DomainEvent) ([]byte, error) {
	switch e := evt.(type) {
	case PortfolioCreated:
		return json.Marshal(portfolioCreatedPayload{
			PortfolioID: string(e.Portfolio), OwnerID: e.OwnerID, Name: e.Name, Timestamp: e.At,
		})
	case TradeExecuted:
		return json.Marshal(tradeExecutedPayload{
			TransactionID: e.TransactionID, PortfolioID: string(e.Portfolio), AssetID: string(e.Asset),
			Quantity: e.Quantity, Side: string(e.Side), Price: e.Price, Currency: e.Currency, Timestamp: e.At,
		})
	case DividendPaid:
		return json.Marshal(dividendPaidPayload{
			TransactionID: e.TransactionID, PortfolioID: string(e.Portfolio), AssetID: string(e.Asset),
			Amount: e.Amount, Currency: e.Currency, Timestamp: e.At,
		})
	case PriceUpdated:
		return json.Marshal(priceUpdatedPayload{
			AssetID: string(e.Asset), Price: e.Price, Currency: e.Currency, Timestamp: e.At,
		})
	case CustodianDataSynced:
		return json.Marshal(custodianDataSyncedPayload{
			PortfolioID: string(e.Portfolio),
			Assets: lo.Map(e.Assets, func(a CustodianAsset, _ int) custodianAssetPayload {
				return custodianAssetPayload{AssetID: string(a.Asset), Quantity: a.Quantity, Currency: a.Currency}
			}),
			Timestamp: e.At,
		})
	case CorporateActionApplied:
		return json.Marshal(corporateActionPayload{
			AssetID: string(e.Asset), ActionType: string(e.Action), Ratio: e.Ratio, Details: e.Details, Timestamp: e.At,
		})
	case PortfolioUpdated:
		return json.Marshal(portfolioUpdatedPayload{
			PortfolioID: string(e.Portfolio), NewVersion: e.NewVersion, Holdings: e.Holdings,
			Valuation: e.Valuation, CausationID: e.Causation, Timestamp: e.At,
		})
	case PortfolioRebalanced:
		allocations := make(map[string]decimal.Decimal, len(e.NewAllocations))
		for asset, weight := range e.NewAllocations {
			allocations[string(asset)] = weight
		}
		return json.Marshal(portfolioRebalancedPayload{
			PortfolioID: string(e.Portfolio), NewAllocations: allocations, CausationID: e.Causation, Timestamp: e.At,
		})
	default:
		return nil, fmt.Errorf("%w: %T", apperrors.ErrUnsupportedEventKind, evt)
	}
}

func timestampOr(ts, fallback time.Time) time.Time {
	if ts.IsZero() {
		return fallback
	}
	return ts
}
