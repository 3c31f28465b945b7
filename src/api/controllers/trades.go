package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"papertrade/src/engine"
	"papertrade/src/models"
	"papertrade/src/repositories"
	"papertrade/src/schemas"
	"papertrade/src/utils"
)

// maxTradeAttempts bounds the retry loop when a concurrent trade moved the
// portfolio version between snapshot and commit.
const maxTradeAttempts = 3

// ExecuteTrade runs one trade end to end: load a fresh snapshot, let the
// engine compute the outcome, commit it atomically. On a version conflict
// the whole computation is re-run against a freshly loaded portfolio, never
// re-applied to stale state.
func (c *Controller) ExecuteTrade(ctx context.Context, userID int64, side models.TradeSide, req schemas.TradeRequest) (*schemas.TradeResponse, error) {
	logger := utils.LoggerFromContext(ctx)

	qty, err := decimal.NewFromString(strings.TrimSpace(req.Quantity))
	if err != nil {
		return nil, engine.ErrInvalidQuantity
	}

	intent := engine.Intent{Side: side, Ticker: req.Ticker, Quantity: qty}

	var out *engine.Outcome
	for attempt := 1; ; attempt++ {
		portfolio, err := c.Portfolios.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}

		out, err = engine.Execute(ctx, &portfolio, intent, c.Market.QuotePrice)
		if err != nil {
			return nil, err
		}

		err = c.Portfolios.ApplyTrade(ctx, out)
		if err == nil {
			break
		}
		if !errors.Is(err, repositories.ErrConcurrentModification) || attempt == maxTradeAttempts {
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"user_id": userID,
			"ticker":  out.Transaction.Ticker,
			"attempt": attempt,
		}).Warn("concurrent portfolio update, retrying trade")
	}

	verb := "bought"
	if side == models.Sell {
		verb = "sold"
	}

	return &schemas.TradeResponse{
		Message:     fmt.Sprintf("Successfully %s %s of %s", verb, qty.String(), out.Transaction.Ticker),
		Ticker:      out.Transaction.Ticker,
		Quantity:    qty.String(),
		Price:       out.Transaction.PricePerUnit.String(),
		CashBalance: out.NewCashBalance.String(),
	}, nil
}
