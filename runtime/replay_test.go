package runtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"portfolio-engine/domain"
	"portfolio-engine/domain/event"
	"portfolio-engine/errors"
)

func Test_Replay_Rebuilds_State_From_History(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	history := []event.DomainEvent{
		event.PortfolioCreated{ID: uuid.New(), Portfolio: "pf-1", OwnerID: "owner-1", Name: "Main", At: at},
		event.TradeExecuted{
			ID: uuid.New(), TransactionID: "tx-1", Portfolio: "pf-1", Asset: "AAPL",
			Quantity: decimal.NewFromInt(10), Side: event.SideBuy,
			Price: decimal.NewFromInt(185), Currency: "USD", At: at,
		},
		event.DividendPaid{
			ID: uuid.New(), TransactionID: "div-1", Portfolio: "pf-1", Asset: "AAPL",
			Amount: decimal.RequireFromString("42.10"), Currency: "USD", At: at,
		},
		event.CorporateActionApplied{
			ID: uuid.New(), Asset: "AAPL", Action: event.ActionStockSplit,
			Ratio: decimal.NewFromInt(2), At: at,
		},
	}

	p, err := Replay("pf-1", history)
	req.NoError(err)
	req.Equal(uint64(3), p.Version)
	req.True(p.Quantity("AAPL").Equal(decimal.NewFromInt(20)))
	req.True(p.Quantity(domain.CashAsset("USD")).Equal(decimal.RequireFromString("42.10")))
}

func Test_Replay_Stops_On_Invalid_History(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()

	history := []event.DomainEvent{
		event.PortfolioCreated{ID: uuid.New(), Portfolio: "pf-1", OwnerID: "owner-1", At: at},
		event.TradeExecuted{
			ID: uuid.New(), TransactionID: "tx-1", Portfolio: "pf-1", Asset: "AAPL",
			Quantity: decimal.NewFromInt(5), Side: event.SideSell,
			Price: decimal.NewFromInt(185), Currency: "USD", At: at,
		},
	}

	_, err := Replay("pf-1", history)
	req.ErrorIs(err, errors.ErrNegativeHolding)
}

func Test_Replay_Of_Empty_History(t *testing.T) {
	req := require.New(t)
	p, err := Replay("pf-1", nil)
	req.NoError(err)
	req.Equal(uint64(0), p.Version)
	req.Empty(p.Holdings)
}
