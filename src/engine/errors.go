package engine

import "errors"

var (
	ErrInvalidQuantity      = errors.New("quantity must be a positive number")
	ErrUnsettlableTotal     = errors.New("trade total cannot be settled at cash precision")
	ErrTickerNotFound       = errors.New("ticker not found")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings to sell")
	ErrHoldingNotFound      = errors.New("no holding for ticker")
)
