package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrade/src/engine"
	"papertrade/src/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fixedQuote(price string) engine.QuoteFunc {
	return func(ctx context.Context, ticker string) (decimal.Decimal, error) {
		return dec(price), nil
	}
}

func newPortfolio(cash string, holdings ...models.Holding) *models.Portfolio {
	return &models.Portfolio{
		ID:          1,
		UserID:      1,
		CashBalance: dec(cash),
		Version:     3,
		Holdings:    holdings,
	}
}

func TestExecuteBuy(t *testing.T) {
	t.Run("new holding debits exact cost", func(t *testing.T) {
		p := newPortfolio("10000.00")

		out, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Buy, Ticker: "aapl", Quantity: dec("10"),
		}, fixedQuote("175.50"))
		require.NoError(t, err)

		assert.True(t, out.NewCashBalance.Equal(dec("8245.00")), "got %s", out.NewCashBalance)
		assert.Equal(t, "AAPL", out.Holding.Ticker)
		assert.True(t, out.Holding.Quantity.Equal(dec("10")))
		assert.True(t, out.Holding.AverageCost.Equal(dec("175.50")))
		assert.False(t, out.DeleteHolding)
		assert.Equal(t, models.Buy, out.Transaction.Side)
		assert.True(t, out.Transaction.PricePerUnit.Equal(dec("175.50")))
		assert.Equal(t, int64(3), out.FromVersion)
	})

	t.Run("existing holding recomputes weighted average", func(t *testing.T) {
		p := newPortfolio("5000", models.Holding{
			ID: 7, PortfolioID: 1, Ticker: "MSFT",
			Quantity: dec("10"), AverageCost: dec("100"),
		})

		out, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Buy, Ticker: "MSFT", Quantity: dec("10"),
		}, fixedQuote("200"))
		require.NoError(t, err)

		assert.True(t, out.Holding.AverageCost.Equal(dec("150")), "got %s", out.Holding.AverageCost)
		assert.True(t, out.Holding.Quantity.Equal(dec("20")))
		assert.Equal(t, int64(7), out.Holding.ID)
		assert.True(t, out.NewCashBalance.Equal(dec("3000")))
	})

	t.Run("cash exactly equal to total cost succeeds", func(t *testing.T) {
		p := newPortfolio("1755.00")

		out, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Buy, Ticker: "AAPL", Quantity: dec("10"),
		}, fixedQuote("175.50"))
		require.NoError(t, err)
		assert.True(t, out.NewCashBalance.IsZero())
	})

	t.Run("insufficient funds", func(t *testing.T) {
		p := newPortfolio("1754.99")

		_, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Buy, Ticker: "AAPL", Quantity: dec("10"),
		}, fixedQuote("175.50"))
		assert.ErrorIs(t, err, engine.ErrInsufficientFunds)
	})

	t.Run("fractional quantities stay exact", func(t *testing.T) {
		p := newPortfolio("1000")

		out, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Buy, Ticker: "VT", Quantity: dec("0.3"),
		}, fixedQuote("110.10"))
		require.NoError(t, err)
		assert.True(t, out.NewCashBalance.Equal(dec("966.97")), "got %s", out.NewCashBalance)
	})
}

func TestExecuteSell(t *testing.T) {
	holding := func() models.Holding {
		return models.Holding{
			ID: 4, PortfolioID: 1, Ticker: "TSLA",
			Quantity: dec("20"), AverageCost: dec("240.00"),
		}
	}

	t.Run("credits exact proceeds and decrements quantity", func(t *testing.T) {
		p := newPortfolio("10000.00", holding())

		out, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Sell, Ticker: "TSLA", Quantity: dec("5"),
		}, fixedQuote("250.00"))
		require.NoError(t, err)

		assert.True(t, out.NewCashBalance.Equal(dec("11250.00")))
		assert.True(t, out.Holding.Quantity.Equal(dec("15")))
		assert.True(t, out.Holding.AverageCost.Equal(dec("240.00")), "sell must not touch average cost")
		assert.False(t, out.DeleteHolding)
	})

	t.Run("selling the full position deletes the holding", func(t *testing.T) {
		p := newPortfolio("0", holding())

		out, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Sell, Ticker: "TSLA", Quantity: dec("20"),
		}, fixedQuote("250.00"))
		require.NoError(t, err)

		assert.True(t, out.DeleteHolding)
		assert.True(t, out.Holding.Quantity.IsZero())
		assert.True(t, out.NewCashBalance.Equal(dec("5000.00")))
	})

	t.Run("selling more than held is rejected before any quote", func(t *testing.T) {
		p := newPortfolio("10000.00", holding())
		quoteCalls := 0
		quote := func(ctx context.Context, ticker string) (decimal.Decimal, error) {
			quoteCalls++
			return dec("250.00"), nil
		}

		_, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Sell, Ticker: "TSLA", Quantity: dec("21"),
		}, quote)
		assert.ErrorIs(t, err, engine.ErrInsufficientHoldings)
		assert.Zero(t, quoteCalls)

		// Rejection is side-effect free: the snapshot is untouched.
		assert.True(t, p.CashBalance.Equal(dec("10000.00")))
		assert.True(t, p.Holdings[0].Quantity.Equal(dec("20")))
	})

	t.Run("selling a ticker never held", func(t *testing.T) {
		p := newPortfolio("10000.00", holding())

		_, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Sell, Ticker: "NVDA", Quantity: dec("1"),
		}, fixedQuote("100"))
		assert.ErrorIs(t, err, engine.ErrHoldingNotFound)
	})
}

func TestExecuteValidation(t *testing.T) {
	t.Run("quantity below epsilon", func(t *testing.T) {
		p := newPortfolio("10000.00")
		for _, qty := range []string{"0", "-1", "0.0000009"} {
			_, err := engine.Execute(context.Background(), p, engine.Intent{
				Side: models.Buy, Ticker: "AAPL", Quantity: dec(qty),
			}, fixedQuote("1"))
			assert.ErrorIs(t, err, engine.ErrInvalidQuantity, "qty=%s", qty)
		}
	})

	t.Run("quantity finer than six decimals", func(t *testing.T) {
		p := newPortfolio("10000.00")

		_, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Buy, Ticker: "AAPL", Quantity: dec("0.0000015"),
		}, fixedQuote("1"))
		assert.ErrorIs(t, err, engine.ErrInvalidQuantity)
	})

	t.Run("total finer than the cash scale is rejected", func(t *testing.T) {
		// 0.000123 × 175.50 = 0.02158650: persisting the debit would
		// round it away from the exact balance.
		p := newPortfolio("100000.00")

		_, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Buy, Ticker: "AAPL", Quantity: dec("0.000123"),
		}, fixedQuote("175.50"))
		assert.ErrorIs(t, err, engine.ErrUnsettlableTotal)
		assert.True(t, p.CashBalance.Equal(dec("100000.00")))
		assert.Empty(t, p.Holdings)
	})

	t.Run("unsettlable sell is rejected too", func(t *testing.T) {
		p := newPortfolio("0", models.Holding{
			ID: 2, PortfolioID: 1, Ticker: "AAPL",
			Quantity: dec("1"), AverageCost: dec("100"),
		})

		_, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Sell, Ticker: "AAPL", Quantity: dec("0.000123"),
		}, fixedQuote("175.50"))
		assert.ErrorIs(t, err, engine.ErrUnsettlableTotal)
	})

	t.Run("fractional quantity whose total lands on the cash scale", func(t *testing.T) {
		p := newPortfolio("10000.00")

		out, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Buy, Ticker: "AAPL", Quantity: dec("0.0002"),
		}, fixedQuote("175.50"))
		require.NoError(t, err)
		assert.True(t, out.NewCashBalance.Equal(dec("9999.9649")), "got %s", out.NewCashBalance)
	})

	t.Run("unknown ticker maps to ErrTickerNotFound", func(t *testing.T) {
		p := newPortfolio("10000.00")
		quote := func(ctx context.Context, ticker string) (decimal.Decimal, error) {
			return decimal.Zero, errors.New("upstream 404")
		}

		_, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Buy, Ticker: "NOPE", Quantity: dec("1"),
		}, quote)
		assert.ErrorIs(t, err, engine.ErrTickerNotFound)
	})

	t.Run("non-positive quoted price is not tradable", func(t *testing.T) {
		p := newPortfolio("10000.00")

		_, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Buy, Ticker: "HALT", Quantity: dec("1"),
		}, fixedQuote("0"))
		assert.ErrorIs(t, err, engine.ErrTickerNotFound)
	})

	t.Run("ticker is normalized to uppercase", func(t *testing.T) {
		p := newPortfolio("10000.00")
		var seen string
		quote := func(ctx context.Context, ticker string) (decimal.Decimal, error) {
			seen = ticker
			return dec("10"), nil
		}

		out, err := engine.Execute(context.Background(), p, engine.Intent{
			Side: models.Buy, Ticker: " tsla ", Quantity: dec("1"),
		}, quote)
		require.NoError(t, err)
		assert.Equal(t, "TSLA", seen)
		assert.Equal(t, "TSLA", out.Transaction.Ticker)
	})
}

// Average cost reflects buys since the position was last fully closed: a
// close-and-reopen must not remember the old basis.
func TestAverageCostResetsAfterFullClose(t *testing.T) {
	p := newPortfolio("10000.00", models.Holding{
		ID: 9, PortfolioID: 1, Ticker: "AMZN",
		Quantity: dec("4"), AverageCost: dec("50"),
	})

	out, err := engine.Execute(context.Background(), p, engine.Intent{
		Side: models.Sell, Ticker: "AMZN", Quantity: dec("4"),
	}, fixedQuote("60"))
	require.NoError(t, err)
	require.True(t, out.DeleteHolding)

	// Apply the sell to the snapshot the way the store would.
	p.CashBalance = out.NewCashBalance
	p.Holdings = nil
	p.Version++

	out, err = engine.Execute(context.Background(), p, engine.Intent{
		Side: models.Buy, Ticker: "AMZN", Quantity: dec("2"),
	}, fixedQuote("80"))
	require.NoError(t, err)
	assert.True(t, out.Holding.AverageCost.Equal(dec("80")), "got %s", out.Holding.AverageCost)
}
