package controllers

import (
	"context"
	"time"

	"papertrade/src/schemas"
)

func (c *Controller) GetPortfolio(ctx context.Context, userID int64) (*schemas.PortfolioResponse, error) {
	portfolio, err := c.Portfolios.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings := make([]schemas.HoldingResponse, 0, len(portfolio.Holdings))
	for _, h := range portfolio.Holdings {
		holdings = append(holdings, schemas.HoldingResponse{
			Ticker:      h.Ticker,
			Quantity:    h.Quantity.String(),
			AverageCost: h.AverageCost.String(),
		})
	}

	return &schemas.PortfolioResponse{
		CashBalance: portfolio.CashBalance.String(),
		Holdings:    holdings,
	}, nil
}

func (c *Controller) GetTransactions(ctx context.Context, userID int64) ([]schemas.TransactionResponse, error) {
	portfolio, err := c.Portfolios.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	transactions, err := c.Transactions.GetByPortfolioID(ctx, portfolio.ID)
	if err != nil {
		return nil, err
	}

	out := make([]schemas.TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, schemas.TransactionResponse{
			Ticker:       t.Ticker,
			Side:         string(t.Side),
			Quantity:     t.Quantity.String(),
			PricePerUnit: t.PricePerUnit.String(),
			ExecutedAt:   t.ExecutedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}
