package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"portfolio-engine/domain"
	"portfolio-engine/errors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testPortfolio(id domain.PortfolioID, version uint64) domain.Portfolio {
	p := domain.NewPortfolio(id, "owner-1", "Main", time.Now().UTC())
	p.Version = version
	return p
}

func Test_Save_And_Load_Portfolio(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewAggregateStore(openTestDB(t), slog.Default())

	p := testPortfolio("pf-1", 1)
	p.SetHolding("AAPL", decimal.NewFromInt(10), "USD")
	req.NoError(store.Save(ctx, p, 0))

	loaded, err := store.Load(ctx, "pf-1")
	req.NoError(err)
	req.Equal(uint64(1), loaded.Version)
	req.True(loaded.Quantity("AAPL").Equal(decimal.NewFromInt(10)))
}

func Test_Load_Unknown_Portfolio(t *testing.T) {
	req := require.New(t)
	store := NewAggregateStore(openTestDB(t), slog.Default())

	_, err := store.Load(context.Background(), "nope")
	req.ErrorIs(err, errors.ErrAggregateNotFound)
}

func Test_Save_Rejects_Stale_Version(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewAggregateStore(openTestDB(t), slog.Default())

	req.NoError(store.Save(ctx, testPortfolio("pf-1", 1), 0))
	req.NoError(store.Save(ctx, testPortfolio("pf-1", 2), 1))

	// A writer that loaded version 1 must not overwrite version 2.
	err := store.Save(ctx, testPortfolio("pf-1", 2), 1)
	req.ErrorIs(err, errors.ErrVersionConflict)

	loaded, err := store.Load(ctx, "pf-1")
	req.NoError(err)
	req.Equal(uint64(2), loaded.Version)
}

func Test_Save_Creates_At_Version_Zero_Then_Updates(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewAggregateStore(openTestDB(t), slog.Default())

	// Creation commits the empty version-0 state, keyed on key absence.
	req.NoError(store.Save(ctx, testPortfolio("pf-1", 0), 0))

	// The first mutation moves the stored version-0 aggregate to version 1.
	p := testPortfolio("pf-1", 1)
	p.SetHolding("AAPL", decimal.NewFromInt(10), "USD")
	req.NoError(store.Save(ctx, p, 0))

	loaded, err := store.Load(ctx, "pf-1")
	req.NoError(err)
	req.Equal(uint64(1), loaded.Version)
	req.True(loaded.Quantity("AAPL").Equal(decimal.NewFromInt(10)))
}

func Test_Save_Rejects_Creation_With_NonZero_Expected_Version(t *testing.T) {
	req := require.New(t)
	store := NewAggregateStore(openTestDB(t), slog.Default())

	err := store.Save(context.Background(), testPortfolio("pf-1", 5), 4)
	req.ErrorIs(err, errors.ErrVersionConflict)
}

func Test_HoldersOf_Tracks_Index_Across_Saves(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewAggregateStore(openTestDB(t), slog.Default())

	p1 := testPortfolio("pf-1", 1)
	p1.SetHolding("AAPL", decimal.NewFromInt(10), "USD")
	req.NoError(store.Save(ctx, p1, 0))

	p2 := testPortfolio("pf-2", 1)
	p2.SetHolding("AAPL", decimal.NewFromInt(3), "USD")
	req.NoError(store.Save(ctx, p2, 0))

	holders, err := store.HoldersOf(ctx, "AAPL")
	req.NoError(err)
	req.ElementsMatch([]domain.PortfolioID{"pf-1", "pf-2"}, holders)

	// Selling out must drop the index entry in the same commit.
	p1 = p1.Clone()
	p1.Version = 2
	p1.SetHolding("AAPL", decimal.Zero, "USD")
	req.NoError(store.Save(ctx, p1, 1))

	holders, err = store.HoldersOf(ctx, "AAPL")
	req.NoError(err)
	req.Equal([]domain.PortfolioID{"pf-2"}, holders)
}

func Test_ListByOwner(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewAggregateStore(openTestDB(t), slog.Default())

	req.NoError(store.Save(ctx, testPortfolio("pf-1", 1), 0))
	req.NoError(store.Save(ctx, testPortfolio("pf-2", 1), 0))
	other := domain.NewPortfolio("pf-3", "owner-2", "Other", time.Now().UTC())
	other.Version = 1
	req.NoError(store.Save(ctx, other, 0))

	portfolios, err := store.ListByOwner(ctx, "owner-1")
	req.NoError(err)
	req.Len(portfolios, 2)

	portfolios, err = store.ListByOwner(ctx, "owner-2")
	req.NoError(err)
	req.Len(portfolios, 1)
	req.Equal(domain.PortfolioID("pf-3"), portfolios[0].ID)
}

func Test_Delete_Removes_Aggregate_And_Indexes(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewAggregateStore(openTestDB(t), slog.Default())

	p := testPortfolio("pf-1", 1)
	p.SetHolding("AAPL", decimal.NewFromInt(10), "USD")
	req.NoError(store.Save(ctx, p, 0))

	req.NoError(store.Delete(ctx, "pf-1"))

	_, err := store.Load(ctx, "pf-1")
	req.ErrorIs(err, errors.ErrAggregateNotFound)

	holders, err := store.HoldersOf(ctx, "AAPL")
	req.NoError(err)
	req.Empty(holders)

	portfolios, err := store.ListByOwner(ctx, "owner-1")
	req.NoError(err)
	req.Empty(portfolios)

	req.ErrorIs(store.Delete(ctx, "pf-1"), errors.ErrAggregateNotFound)
}
