package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is the virtual account backing a user's paper trades. Exactly one
// exists per user. Version is bumped on every committed trade so that two
// interleaved trades against the same portfolio cannot both commit from a
// stale snapshot.
type Portfolio struct {
	ID          int64           `db:"id"`
	UserID      int64           `db:"user_id"`
	CashBalance decimal.Decimal `db:"cash_balance"`
	Version     int64           `db:"version"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`

	Holdings []Holding
}

// HoldingFor returns the holding for the given ticker, or nil when the
// portfolio has no open position in it. Lookup is case-insensitive.
func (p *Portfolio) HoldingFor(ticker string) *Holding {
	ticker = strings.ToUpper(ticker)
	for i := range p.Holdings {
		if p.Holdings[i].Ticker == ticker {
			return &p.Holdings[i]
		}
	}
	return nil
}
