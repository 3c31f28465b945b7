// Package engine holds the trade-execution logic: given a portfolio snapshot,
// a trade intent and a quote capability, it either computes the full set of
// mutations a successful trade implies or rejects the trade with a typed
// error. It performs no I/O of its own besides the injected quote call and
// never partially mutates anything: all effects are described in the returned
// Outcome, which the portfolio store applies as one unit.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"papertrade/src/models"
)

// QuoteFunc resolves a ticker to its current price. Implementations must be
// idempotent and side-effect free; the engine invokes it at most once per
// trade attempt, after local validation has passed.
type QuoteFunc func(ctx context.Context, ticker string) (decimal.Decimal, error)

// Intent is a validated-at-the-boundary trade request. Quantity has already
// been parsed from its string form into an exact decimal.
type Intent struct {
	Side     models.TradeSide
	Ticker   string
	Quantity decimal.Decimal
}

// Outcome describes every mutation a successful trade implies. FromVersion is
// the portfolio version the computation was based on; the store rejects the
// commit when the stored version no longer matches.
type Outcome struct {
	PortfolioID    int64
	FromVersion    int64
	NewCashBalance decimal.Decimal
	Holding        models.Holding
	DeleteHolding  bool
	Transaction    models.Transaction
}

// minQuantity rejects zero and garbage input that survives decimal parsing.
var minQuantity = decimal.New(1, -6)

// Scales of the persisted columns. Anything the engine emits must round-trip
// through them, so quantities finer than quantityScale are invalid and a
// total that does not land on the cash scale cannot be settled.
const (
	cashScale     = 4
	quantityScale = 6
)

// Execute validates the intent against the portfolio snapshot and computes
// the resulting state. Validation order: quantity first, then (for sells)
// holding sufficiency, then the quote lookup, then settlement precision and
// (for buys) the funds check. Sell sufficiency is deliberately checked
// before the quote so that a doomed sell never spends a provider call.
func Execute(ctx context.Context, p *models.Portfolio, intent Intent, quote QuoteFunc) (*Outcome, error) {
	if intent.Quantity.LessThan(minQuantity) ||
		!intent.Quantity.Equal(intent.Quantity.Round(quantityScale)) {
		return nil, ErrInvalidQuantity
	}

	ticker := strings.ToUpper(strings.TrimSpace(intent.Ticker))

	var held *models.Holding
	if intent.Side == models.Sell {
		held = p.HoldingFor(ticker)
		if held == nil {
			return nil, ErrHoldingNotFound
		}
		if held.Quantity.LessThan(intent.Quantity) {
			return nil, ErrInsufficientHoldings
		}
	}

	price, err := quote(ctx, ticker)
	if err != nil {
		// Absence and quote timeouts are the same failure class: the
		// ticker is not tradable right now.
		return nil, ErrTickerNotFound
	}
	if !price.IsPositive() {
		return nil, ErrTickerNotFound
	}

	total := price.Mul(intent.Quantity)
	// Cash moves exactly or not at all: a total finer than the cash scale
	// would persist rounded and drift from the reported balance.
	if !total.Equal(total.Round(cashScale)) {
		return nil, ErrUnsettlableTotal
	}
	out := &Outcome{PortfolioID: p.ID, FromVersion: p.Version}

	switch intent.Side {
	case models.Buy:
		if total.GreaterThan(p.CashBalance) {
			return nil, ErrInsufficientFunds
		}
		out.NewCashBalance = p.CashBalance.Sub(total)
		if existing := p.HoldingFor(ticker); existing != nil {
			newQty := existing.Quantity.Add(intent.Quantity)
			newAvg := existing.AverageCost.Mul(existing.Quantity).Add(total).Div(newQty)
			out.Holding = models.Holding{
				ID:          existing.ID,
				PortfolioID: p.ID,
				Ticker:      ticker,
				Quantity:    newQty,
				AverageCost: newAvg,
			}
		} else {
			out.Holding = models.Holding{
				PortfolioID: p.ID,
				Ticker:      ticker,
				Quantity:    intent.Quantity,
				AverageCost: price,
			}
		}

	case models.Sell:
		out.NewCashBalance = p.CashBalance.Add(total)
		newQty := held.Quantity.Sub(intent.Quantity)
		out.Holding = models.Holding{
			ID:          held.ID,
			PortfolioID: p.ID,
			Ticker:      ticker,
			Quantity:    newQty,
			AverageCost: held.AverageCost,
		}
		// Exact zero closes the position; average cost restarts on the
		// next buy.
		out.DeleteHolding = newQty.IsZero()

	default:
		return nil, fmt.Errorf("unknown trade side %q", intent.Side)
	}

	out.Transaction = models.Transaction{
		PortfolioID:  p.ID,
		Ticker:       ticker,
		Side:         intent.Side,
		Quantity:     intent.Quantity,
		PricePerUnit: price,
		ExecutedAt:   time.Now().UTC(),
	}

	return out, nil
}
