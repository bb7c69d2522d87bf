package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"portfolio-engine/domain"
	apperrors "portfolio-engine/errors"
)

func envelope(kind Kind, payload string) Envelope {
	return Envelope{
		EventID:    uuid.New(),
		EventKind:  kind,
		Payload:    json.RawMessage(payload),
		OccurredAt: testAt,
	}
}

func Test_Decode_TradeExecuted(t *testing.T) {
	req := require.New(t)
	env := envelope(KindTradeExecuted, `{
		"transactionId": "tx-1",
		"portfolioId": "pf-1",
		"assetId": "AAPL",
		"quantity": "10.5",
		"side": "BUY",
		"price": "185.50",
		"currency": "USD"
	}`)

	evt, err := Decode(env)
	req.NoError(err)

	trade := evt.(TradeExecuted)
	req.Equal(env.EventID, trade.EventID())
	req.Equal(domain.PortfolioID("pf-1"), trade.Portfolio)
	req.True(trade.Quantity.Equal(d("10.5")))
	req.Equal(SideBuy, trade.Side)
	// No payload timestamp: the envelope one applies.
	req.Equal(testAt, trade.OccurredAt())
}

func Test_Decode_Unknown_Kind(t *testing.T) {
	req := require.New(t)
	_, err := Decode(envelope("PortfolioArchived", `{}`))
	req.ErrorIs(err, apperrors.ErrUnsupportedEventKind)
}

func Test_Decode_Missing_EventID(t *testing.T) {
	req := require.New(t)
	env := envelope(KindPortfolioCreated, `{"portfolioId":"pf-1","ownerId":"owner-1"}`)
	env.EventID = uuid.Nil
	_, err := Decode(env)
	req.ErrorIs(err, apperrors.ErrMalformedEvent)
}

func Test_Decode_Malformed_Payloads(t *testing.T) {
	cases := map[string]Envelope{
		"not json":              envelope(KindTradeExecuted, `{not json`),
		"missing portfolio id":  envelope(KindTradeExecuted, `{"transactionId":"tx-1","assetId":"AAPL","quantity":"1","side":"BUY","currency":"USD"}`),
		"invalid side":          envelope(KindTradeExecuted, `{"transactionId":"tx-1","portfolioId":"pf-1","assetId":"AAPL","quantity":"1","side":"HOLD","currency":"USD"}`),
		"invalid currency":      envelope(KindTradeExecuted, `{"transactionId":"tx-1","portfolioId":"pf-1","assetId":"AAPL","quantity":"1","side":"BUY","currency":"DOLLARS"}`),
		"zero quantity":         envelope(KindTradeExecuted, `{"transactionId":"tx-1","portfolioId":"pf-1","assetId":"AAPL","quantity":"0","side":"BUY","currency":"USD"}`),
		"negative quantity":     envelope(KindTradeExecuted, `{"transactionId":"tx-1","portfolioId":"pf-1","assetId":"AAPL","quantity":"-3","side":"SELL","currency":"USD"}`),
		"negative price":        envelope(KindPriceUpdated, `{"assetId":"AAPL","price":"-1","currency":"USD"}`),
		"zero dividend":         envelope(KindDividendPaid, `{"transactionId":"tx-1","portfolioId":"pf-1","assetId":"AAPL","amount":"0","currency":"USD"}`),
		"negative custody qty":  envelope(KindCustodianDataSynced, `{"portfolioId":"pf-1","assets":[{"assetId":"AAPL","quantity":"-1","currency":"USD"}]}`),
		"zero split ratio":      envelope(KindCorporateActionApplied, `{"assetId":"AAPL","actionType":"STOCK_SPLIT","ratio":"0"}`),
		"missing custody asset": envelope(KindCustodianDataSynced, `{"portfolioId":"pf-1","assets":[{"quantity":"1","currency":"USD"}]}`),
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(env)
			require.ErrorIs(t, err, apperrors.ErrMalformedEvent)
		})
	}
}

func Test_Payload_Timestamp_Takes_Precedence(t *testing.T) {
	req := require.New(t)
	payloadAt := testAt.Add(-time.Hour)
	env := envelope(KindPriceUpdated, `{"assetId":"AAPL","price":"190","currency":"USD","timestamp":"`+
		payloadAt.Format(time.RFC3339)+`"}`)

	evt, err := Decode(env)
	req.NoError(err)
	req.True(evt.OccurredAt().Equal(payloadAt))
}

func Test_Encode_Decode_RoundTrip(t *testing.T) {
	req := require.New(t)
	original := TradeExecuted{
		ID: uuid.New(), TransactionID: "tx-1", Portfolio: "pf-1", Asset: "AAPL",
		Quantity: d("10.5"), Side: SideSell, Price: d("190"), Currency: "USD", At: testAt,
	}

	env, err := Encode(original)
	req.NoError(err)
	req.Equal("pf-1", env.AggregateID)
	req.Equal(KindTradeExecuted, env.EventKind)

	decoded, err := Decode(env)
	req.NoError(err)
	req.Equal(original, decoded)
}

func Test_Encode_Produced_Event(t *testing.T) {
	req := require.New(t)
	original := PortfolioUpdated{
		ID:         uuid.New(),
		Portfolio:  "pf-1",
		NewVersion: 7,
		Holdings:   []HoldingSnapshot{{Asset: "AAPL", Quantity: d("10"), Currency: "USD"}},
		Valuation:  d("10"),
		Causation:  uuid.New(),
		At:         testAt,
	}

	env, err := Encode(original)
	req.NoError(err)

	decoded, err := Decode(env)
	req.NoError(err)
	update := decoded.(PortfolioUpdated)
	req.Equal(original.NewVersion, update.NewVersion)
	req.Equal(original.Causation, update.Causation)
	req.True(original.Valuation.Equal(update.Valuation))
}

func Test_AssetScoped_Envelope_Has_No_AggregateID(t *testing.T) {
	req := require.New(t)
	env, err := Encode(PriceUpdated{ID: uuid.New(), Asset: "AAPL", Price: d("190"), Currency: "USD", At: testAt})
	req.NoError(err)
	req.Empty(env.AggregateID)
}
