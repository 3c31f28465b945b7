package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TradeSide string

const (
	Buy  TradeSide = "BUY"
	Sell TradeSide = "SELL"
)

// Transaction is the immutable audit record of one executed trade. Rows are
// only ever inserted, never updated or deleted.
type Transaction struct {
	ID           int64           `db:"id"`
	PortfolioID  int64           `db:"portfolio_id"`
	Ticker       string          `db:"ticker"`
	Side         TradeSide       `db:"side"`
	Quantity     decimal.Decimal `db:"quantity"`
	PricePerUnit decimal.Decimal `db:"price_per_unit"`
	ExecutedAt   time.Time       `db:"executed_at"`
}
