package controllers

import (
	"context"

	"github.com/shopspring/decimal"

	"papertrade/src/clients/market"
	"papertrade/src/repositories"
	"papertrade/src/schemas"
)

// MarketClient is the slice of the market client the controllers consume.
type MarketClient interface {
	GetQuote(ctx context.Context, ticker string) (market.Quote, error)
	QuotePrice(ctx context.Context, ticker string) (decimal.Decimal, error)
	Search(ctx context.Context, query string) ([]market.Asset, error)
}

// AuthManager handles registration and credential verification.
type AuthManager interface {
	Register(ctx context.Context, req schemas.RegisterRequest) error
	Login(ctx context.Context, req schemas.LoginRequest) (*schemas.TokenResponse, error)
}

type Controller struct {
	Auth         AuthManager
	Portfolios   repositories.PortfolioRepository
	Transactions repositories.TransactionRepository
	Market       MarketClient
}

func NewController(
	auth AuthManager,
	portfolios repositories.PortfolioRepository,
	transactions repositories.TransactionRepository,
	marketClient MarketClient,
) *Controller {
	return &Controller{
		Auth:         auth,
		Portfolios:   portfolios,
		Transactions: transactions,
		Market:       marketClient,
	}
}
