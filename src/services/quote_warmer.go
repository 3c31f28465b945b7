package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"papertrade/src/clients/market"
	"papertrade/src/repositories"
)

type quoteFetcher interface {
	GetQuote(ctx context.Context, ticker string) (market.Quote, error)
}

// QuoteWarmer periodically refreshes the quote cache for every ticker held
// in any portfolio, so trades usually hit a warm cache.
type QuoteWarmer struct {
	portfolios repositories.PortfolioRepository
	market     quoteFetcher
	logger     *logrus.Logger
}

func NewQuoteWarmer(portfolios repositories.PortfolioRepository, market quoteFetcher, logger *logrus.Logger) *QuoteWarmer {
	return &QuoteWarmer{portfolios: portfolios, market: market, logger: logger}
}

// Run is the cron entrypoint.
func (w *QuoteWarmer) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tickers, err := w.portfolios.ListHeldTickers(ctx)
	if err != nil {
		w.logger.WithError(err).Error("quote warmer: listing held tickers failed")
		return
	}

	refreshed := 0
	for _, ticker := range tickers {
		if _, err := w.market.GetQuote(ctx, ticker); err != nil {
			w.logger.WithError(err).WithField("ticker", ticker).Warn("quote warmer: refresh failed")
			continue
		}
		refreshed++
	}
	w.logger.WithFields(logrus.Fields{"held": len(tickers), "refreshed": refreshed}).Debug("quote cache warmed")
}
