package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"portfolio-engine/domain"
	apperrors "portfolio-engine/errors"
)

var testAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func emptyPortfolio(id domain.PortfolioID) domain.Portfolio {
	return domain.Portfolio{ID: id, Holdings: map[domain.AssetID]domain.Holding{}}
}

func createdPortfolio(t *testing.T, id domain.PortfolioID) domain.Portfolio {
	t.Helper()
	p, _, err := Transition(emptyPortfolio(id), PortfolioCreated{
		ID: uuid.New(), Portfolio: id, OwnerID: "owner-1", Name: "Main", At: testAt,
	})
	require.NoError(t, err)
	return p
}

func Test_PortfolioCreated_Initializes_Aggregate(t *testing.T) {
	req := require.New(t)
	evt := PortfolioCreated{ID: uuid.New(), Portfolio: "pf-1", OwnerID: "owner-1", Name: "Main", At: testAt}

	next, produced, err := Transition(emptyPortfolio("pf-1"), evt)
	req.NoError(err)
	// Creation establishes version 0; the first mutation commits version 1.
	req.Equal(uint64(0), next.Version)
	req.Equal("owner-1", next.OwnerID)
	req.Empty(next.Holdings)
	req.Len(produced, 1)

	update := produced[0].(PortfolioUpdated)
	req.Equal(evt.ID, update.Causation)
	req.Equal(uint64(0), update.NewVersion)
}

func Test_PortfolioCreated_Rejects_Existing_Aggregate(t *testing.T) {
	req := require.New(t)
	p := createdPortfolio(t, "pf-1")

	next, produced, err := Transition(p, PortfolioCreated{
		ID: uuid.New(), Portfolio: "pf-1", OwnerID: "owner-2", At: testAt,
	})
	req.ErrorIs(err, apperrors.ErrMalformedEvent)
	req.Empty(produced)
	req.Equal(p, next)
}

func Test_Trade_Buy_Accumulates_Position(t *testing.T) {
	req := require.New(t)
	p := createdPortfolio(t, "pf-1")

	buy := TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-1", Portfolio: "pf-1", Asset: "AAPL",
		Quantity: d("10"), Side: SideBuy, Price: d("185.50"), Currency: "USD", At: testAt,
	}
	next, produced, err := Transition(p, buy)
	req.NoError(err)
	req.Equal(uint64(1), next.Version)
	req.True(next.Quantity("AAPL").Equal(d("10")))

	next, _, err = Transition(next, TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-2", Portfolio: "pf-1", Asset: "AAPL",
		Quantity: d("2.5"), Side: SideBuy, Price: d("186"), Currency: "USD", At: testAt,
	})
	req.NoError(err)
	req.True(next.Quantity("AAPL").Equal(d("12.5")))

	update := produced[0].(PortfolioUpdated)
	req.Len(update.Holdings, 1)
	req.Equal(domain.AssetID("AAPL"), update.Holdings[0].Asset)
}

func Test_Trade_Sell_To_Zero_Removes_Holding(t *testing.T) {
	req := require.New(t)
	p := createdPortfolio(t, "pf-1")
	p, _, err := Transition(p, TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-1", Portfolio: "pf-1", Asset: "AAPL",
		Quantity: d("10"), Side: SideBuy, Price: d("185"), Currency: "USD", At: testAt,
	})
	req.NoError(err)

	next, _, err := Transition(p, TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-2", Portfolio: "pf-1", Asset: "AAPL",
		Quantity: d("10"), Side: SideSell, Price: d("190"), Currency: "USD", At: testAt,
	})
	req.NoError(err)
	req.False(next.Holds("AAPL"))
	req.Equal(uint64(2), next.Version)
}

func Test_Trade_OverSell_Is_Rejected(t *testing.T) {
	req := require.New(t)
	p := createdPortfolio(t, "pf-1")
	p, _, err := Transition(p, TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-1", Portfolio: "pf-1", Asset: "AAPL",
		Quantity: d("5"), Side: SideBuy, Price: d("185"), Currency: "USD", At: testAt,
	})
	req.NoError(err)

	next, produced, err := Transition(p, TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-2", Portfolio: "pf-1", Asset: "AAPL",
		Quantity: d("8"), Side: SideSell, Price: d("190"), Currency: "USD", At: testAt,
	})
	req.ErrorIs(err, apperrors.ErrNegativeHolding)
	req.Empty(produced)
	// The rejected event must leave state and version untouched.
	req.Equal(p, next)
	req.True(next.Quantity("AAPL").Equal(d("5")))
}

func Test_Sell_Unknown_Asset_Is_Rejected(t *testing.T) {
	req := require.New(t)
	p := createdPortfolio(t, "pf-1")

	_, _, err := Transition(p, TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-1", Portfolio: "pf-1", Asset: "TSLA",
		Quantity: d("1"), Side: SideSell, Price: d("200"), Currency: "USD", At: testAt,
	})
	req.ErrorIs(err, apperrors.ErrNegativeHolding)
}

func Test_Dividend_Credits_Cash_Position(t *testing.T) {
	req := require.New(t)
	p := createdPortfolio(t, "pf-1")

	next, _, err := Transition(p, DividendPaid{
		ID: uuid.New(), TransactionID: "div-1", Portfolio: "pf-1", Asset: "AAPL",
		Amount: d("42.10"), Currency: "USD", At: testAt,
	})
	req.NoError(err)
	req.True(next.Quantity(domain.CashAsset("USD")).Equal(d("42.10")))

	next, _, err = Transition(next, DividendPaid{
		ID: uuid.New(), TransactionID: "div-2", Portfolio: "pf-1", Asset: "AAPL",
		Amount: d("7.90"), Currency: "USD", At: testAt,
	})
	req.NoError(err)
	req.True(next.Quantity(domain.CashAsset("USD")).Equal(d("50")))
	req.Equal(uint64(2), next.Version)
}

func Test_PriceUpdated_Advances_Version_Without_Touching_Quantities(t *testing.T) {
	req := require.New(t)
	p := createdPortfolio(t, "pf-1")
	p, _, err := Transition(p, TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-1", Portfolio: "pf-1", Asset: "AAPL",
		Quantity: d("10"), Side: SideBuy, Price: d("185"), Currency: "USD", At: testAt,
	})
	req.NoError(err)

	next, produced, err := Transition(p, PriceUpdated{
		ID: uuid.New(), Asset: "AAPL", Price: d("190"), Currency: "USD", At: testAt,
	})
	req.NoError(err)
	req.Equal(p.Version+1, next.Version)
	req.True(next.Quantity("AAPL").Equal(d("10")))
	req.Len(produced, 1)
}

func Test_CustodianSync_Replaces_Listed_Assets_Only(t *testing.T) {
	req := require.New(t)
	p := createdPortfolio(t, "pf-1")
	p, _, err := Transition(p, TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-1", Portfolio: "pf-1", Asset: "AAPL",
		Quantity: d("10"), Side: SideBuy, Price: d("185"), Currency: "USD", At: testAt,
	})
	req.NoError(err)
	p, _, err = Transition(p, TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-2", Portfolio: "pf-1", Asset: "MSFT",
		Quantity: d("4"), Side: SideBuy, Price: d("410"), Currency: "USD", At: testAt,
	})
	req.NoError(err)

	next, _, err := Transition(p, CustodianDataSynced{
		ID: uuid.New(), Portfolio: "pf-1",
		Assets: []CustodianAsset{
			{Asset: "AAPL", Quantity: d("11"), Currency: "USD"},
			{Asset: "GOOG", Quantity: d("3"), Currency: "USD"},
		},
		At: testAt,
	})
	req.NoError(err)
	// Listed assets are overwritten, unlisted ones are preserved.
	req.True(next.Quantity("AAPL").Equal(d("11")))
	req.True(next.Quantity("GOOG").Equal(d("3")))
	req.True(next.Quantity("MSFT").Equal(d("4")))
}

func Test_CustodianSync_Zero_Quantity_Removes_Holding(t *testing.T) {
	req := require.New(t)
	p := createdPortfolio(t, "pf-1")
	p, _, err := Transition(p, TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-1", Portfolio: "pf-1", Asset: "AAPL",
		Quantity: d("10"), Side: SideBuy, Price: d("185"), Currency: "USD", At: testAt,
	})
	req.NoError(err)

	next, _, err := Transition(p, CustodianDataSynced{
		ID: uuid.New(), Portfolio: "pf-1",
		Assets: []CustodianAsset{{Asset: "AAPL", Quantity: decimal.Zero, Currency: "USD"}},
		At:     testAt,
	})
	req.NoError(err)
	req.False(next.Holds("AAPL"))
}

func Test_StockSplit_Multiplies_Held_Quantity(t *testing.T) {
	req := require.New(t)
	p := createdPortfolio(t, "pf-1")
	p, _, err := Transition(p, TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-1", Portfolio: "pf-1", Asset: "AAPL",
		Quantity: d("10"), Side: SideBuy, Price: d("185"), Currency: "USD", At: testAt,
	})
	req.NoError(err)

	next, _, err := Transition(p, CorporateActionApplied{
		ID: uuid.New(), Asset: "AAPL", Action: ActionStockSplit, Ratio: d("4"), At: testAt,
	})
	req.NoError(err)
	req.True(next.Quantity("AAPL").Equal(d("40")))
}

func Test_Unknown_CorporateAction_Advances_Version_Only(t *testing.T) {
	req := require.New(t)
	p := createdPortfolio(t, "pf-1")
	p, _, err := Transition(p, TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-1", Portfolio: "pf-1", Asset: "AAPL",
		Quantity: d("10"), Side: SideBuy, Price: d("185"), Currency: "USD", At: testAt,
	})
	req.NoError(err)

	next, produced, err := Transition(p, CorporateActionApplied{
		ID: uuid.New(), Asset: "AAPL", Action: "MERGER", At: testAt,
	})
	req.NoError(err)
	req.Equal(p.Version+1, next.Version)
	req.True(next.Quantity("AAPL").Equal(d("10")))
	req.Len(produced, 1)
}

func Test_Unsupported_Event_Does_Not_Advance(t *testing.T) {
	req := require.New(t)
	p := createdPortfolio(t, "pf-1")

	next, produced, err := Transition(p, PortfolioRebalanced{ID: uuid.New(), Portfolio: "pf-1", At: testAt})
	req.ErrorIs(err, apperrors.ErrUnsupportedEventKind)
	req.Empty(produced)
	req.Equal(p, next)
}

func Test_Transition_Is_Deterministic(t *testing.T) {
	req := require.New(t)
	evt := TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-1", Portfolio: "pf-1", Asset: "AAPL",
		Quantity: d("10"), Side: SideBuy, Price: d("185"), Currency: "USD", At: testAt,
	}
	p := createdPortfolio(t, "pf-1")

	a, producedA, errA := Transition(p, evt)
	b, producedB, errB := Transition(p, evt)
	req.NoError(errA)
	req.NoError(errB)
	req.Equal(a, b)
	req.Equal(producedA, producedB)
	// Derived ids must be stable across runs for the same causation.
	req.Equal(producedA[0].EventID(), producedB[0].EventID())
}
