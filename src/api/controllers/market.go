package controllers

import (
	"context"

	"papertrade/src/clients/market"
	"papertrade/src/schemas"
)

func (c *Controller) GetQuote(ctx context.Context, ticker string) (*schemas.QuoteResponse, error) {
	quote, err := c.Market.GetQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return &schemas.QuoteResponse{
		Symbol: quote.Symbol,
		Name:   quote.Name,
		Price:  quote.Price.String(),
	}, nil
}

func (c *Controller) Search(ctx context.Context, query string) ([]market.Asset, error) {
	return c.Market.Search(ctx, query)
}
