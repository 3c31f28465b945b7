package schemas

type HoldingResponse struct {
	Ticker      string `json:"ticker"`
	Quantity    string `json:"quantity"`
	AverageCost string `json:"average_cost"`
}

type PortfolioResponse struct {
	CashBalance string            `json:"cash_balance"`
	Holdings    []HoldingResponse `json:"holdings"`
}
