package runtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"portfolio-engine/domain"
	"portfolio-engine/domain/event"
	"portfolio-engine/errors"
	"portfolio-engine/mocks"
	"portfolio-engine/repositories"
	"portfolio-engine/runtime/workers"
)

func newLanes(n, buffer int) []chan workers.LaneItem {
	lanes := make([]chan workers.LaneItem, n)
	for i := range lanes {
		lanes[i] = make(chan workers.LaneItem, buffer)
	}
	return lanes
}

func tradeEnvelope(portfolio string) event.Envelope {
	return event.Envelope{
		EventID:     uuid.New(),
		EventKind:   event.KindTradeExecuted,
		AggregateID: portfolio,
		Payload: json.RawMessage(`{
			"transactionId": "tx-1",
			"portfolioId": "` + portfolio + `",
			"assetId": "AAPL",
			"quantity": "10",
			"side": "BUY",
			"price": "185",
			"currency": "USD"
		}`),
		OccurredAt: time.Now().UTC(),
	}
}

func Test_Dispatcher_Routes_Portfolio_Scoped_Event(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIAggregateStore(ctrl)
	deadLetters := mocks.NewMockIDeadLetterQueue(ctrl)

	lanes := newLanes(4, 8)
	d := NewDispatcher(slog.Default(), lanes, store, deadLetters, make(chan event.Telemetry, 1))

	env := tradeEnvelope("pf-1")
	req.NoError(d.Submit(ctx, env))

	lane := d.laneFor("pf-1")
	req.Len(lanes[lane], 1)
	item := <-lanes[lane]
	req.Equal(domain.PortfolioID("pf-1"), item.Portfolio)
	req.Equal(env.EventID, item.Event.EventID())
}

func Test_Dispatcher_Pins_Portfolio_To_One_Lane(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIAggregateStore(ctrl)
	deadLetters := mocks.NewMockIDeadLetterQueue(ctrl)

	lanes := newLanes(4, 16)
	d := NewDispatcher(slog.Default(), lanes, store, deadLetters, make(chan event.Telemetry, 1))

	for i := 0; i < 10; i++ {
		req.NoError(d.Submit(ctx, tradeEnvelope("pf-sticky")))
	}

	lane := d.laneFor("pf-sticky")
	req.Len(lanes[lane], 10)
	for i, other := range lanes {
		if i != lane {
			req.Empty(other)
		}
	}
}

func Test_Dispatcher_Fans_Out_Asset_Scoped_Event(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIAggregateStore(ctrl)
	deadLetters := mocks.NewMockIDeadLetterQueue(ctrl)

	store.EXPECT().
		HoldersOf(ctx, domain.AssetID("AAPL")).
		Return([]domain.PortfolioID{"pf-1", "pf-2", "pf-3"}, nil)

	lanes := newLanes(4, 8)
	d := NewDispatcher(slog.Default(), lanes, store, deadLetters, make(chan event.Telemetry, 1))

	env := event.Envelope{
		EventID:    uuid.New(),
		EventKind:  event.KindPriceUpdated,
		Payload:    json.RawMessage(`{"assetId":"AAPL","price":"190","currency":"USD"}`),
		OccurredAt: time.Now().UTC(),
	}
	req.NoError(d.Submit(ctx, env))

	total := 0
	for _, lane := range lanes {
		total += len(lane)
	}
	req.Equal(3, total)
}

func Test_Dispatcher_Ignores_Asset_Event_Without_Holders(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIAggregateStore(ctrl)
	deadLetters := mocks.NewMockIDeadLetterQueue(ctrl)

	store.EXPECT().HoldersOf(ctx, domain.AssetID("TSLA")).Return(nil, nil)

	lanes := newLanes(2, 8)
	d := NewDispatcher(slog.Default(), lanes, store, deadLetters, make(chan event.Telemetry, 1))

	env := event.Envelope{
		EventID:    uuid.New(),
		EventKind:  event.KindPriceUpdated,
		Payload:    json.RawMessage(`{"assetId":"TSLA","price":"200","currency":"USD"}`),
		OccurredAt: time.Now().UTC(),
	}
	req.NoError(d.Submit(ctx, env))
	req.Empty(lanes[0])
	req.Empty(lanes[1])
}

func Test_Dispatcher_DeadLetters_Malformed_Envelope(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIAggregateStore(ctrl)
	deadLetters := mocks.NewMockIDeadLetterQueue(ctrl)

	env := event.Envelope{
		EventID:    uuid.New(),
		EventKind:  event.KindTradeExecuted,
		Payload:    json.RawMessage(`{"portfolioId":"pf-1"}`),
		OccurredAt: time.Now().UTC(),
	}
	deadLetters.EXPECT().
		Park(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, letter repositories.DeadLetter) error {
			require.Equal(t, repositories.DispositionDead, letter.Disposition)
			require.Equal(t, env.EventID, letter.EventID)
			return nil
		})

	lanes := newLanes(2, 8)
	d := NewDispatcher(slog.Default(), lanes, store, deadLetters, make(chan event.Telemetry, 1))

	req.NoError(d.Submit(ctx, env))
	req.Empty(lanes[0])
	req.Empty(lanes[1])
}

func Test_Dispatcher_Skips_Unsupported_Kind(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIAggregateStore(ctrl)
	deadLetters := mocks.NewMockIDeadLetterQueue(ctrl)

	lanes := newLanes(2, 8)
	d := NewDispatcher(slog.Default(), lanes, store, deadLetters, make(chan event.Telemetry, 1))

	env := event.Envelope{
		EventID:    uuid.New(),
		EventKind:  "PortfolioArchived",
		Payload:    json.RawMessage(`{}`),
		OccurredAt: time.Now().UTC(),
	}
	// Unknown kinds are skipped, never dead-lettered.
	req.NoError(d.Submit(ctx, env))
	req.Empty(lanes[0])
	req.Empty(lanes[1])
}

func Test_Dispatcher_Signals_Saturated_Lane(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIAggregateStore(ctrl)
	deadLetters := mocks.NewMockIDeadLetterQueue(ctrl)

	telemetry := make(chan event.Telemetry, 1)
	lanes := newLanes(1, 1)
	d := NewDispatcher(slog.Default(), lanes, store, deadLetters, telemetry)

	ctx := context.Background()
	req.NoError(d.Submit(ctx, tradeEnvelope("pf-1")))

	// The lane is full: the next submit must block until canceled, after
	// surfacing the saturation through telemetry.
	blockedCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	err := d.Submit(blockedCtx, tradeEnvelope("pf-1"))
	req.ErrorIs(err, errors.ErrLaneSaturated)

	select {
	case tel := <-telemetry:
		req.Equal(event.LaneStalledType, tel.Type)
	default:
		req.Fail("No saturation telemetry emitted")
	}
}
