package market

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

type Asset struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Currency      string `json:"currency"`
	StockExchange string `json:"stockExchange"`
}

// fmpQuote mirrors one element of the upstream /quote/{ticker} response.
// Price is kept as json.Number so it reaches decimal without passing
// through a binary float.
type fmpQuote struct {
	Symbol string      `json:"symbol"`
	Name   string      `json:"name"`
	Price  json.Number `json:"price"`
}
