package models

import (
	"github.com/shopspring/decimal"
)

// Holding is a non-zero position in one ticker. A holding whose quantity
// reaches exactly zero is deleted, never stored at zero. Unique per
// (portfolio, ticker).
type Holding struct {
	ID          int64           `db:"id"`
	PortfolioID int64           `db:"portfolio_id"`
	Ticker      string          `db:"ticker"`
	Quantity    decimal.Decimal `db:"quantity"`
	AverageCost decimal.Decimal `db:"average_cost"`
}
