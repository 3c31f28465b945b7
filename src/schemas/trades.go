package schemas

// TradeRequest carries quantity as a string so it can be parsed straight
// into an exact decimal, never through a binary float.
type TradeRequest struct {
	Ticker   string `json:"ticker"`
	Quantity string `json:"quantity"`
}

type TradeResponse struct {
	Message     string `json:"message"`
	Ticker      string `json:"ticker"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	CashBalance string `json:"cash_balance"`
}

type TransactionResponse struct {
	Ticker       string `json:"ticker"`
	Side         string `json:"side"`
	Quantity     string `json:"quantity"`
	PricePerUnit string `json:"price_per_unit"`
	ExecutedAt   string `json:"executed_at"`
}
