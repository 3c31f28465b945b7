package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"papertrade/src/models"
	"papertrade/src/schemas"
	"papertrade/src/utils"
)

func (h *Handler) BuyAsset(w http.ResponseWriter, r *http.Request) {
	h.executeTrade(w, r, models.Buy)
}

func (h *Handler) SellAsset(w http.ResponseWriter, r *http.Request) {
	h.executeTrade(w, r, models.Sell)
}

func (h *Handler) executeTrade(w http.ResponseWriter, r *http.Request, side models.TradeSide) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	ctx = utils.WithLogger(ctx, h.Logger)

	userID, err := h.currentUserID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	var req schemas.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}
	if req.Ticker == "" || req.Quantity == "" {
		h.HandleErrors(w, utils.BadRequest("ticker and quantity are required"))
		return
	}

	result, err := h.Portfolio.ExecuteTrade(ctx, userID, side, req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, result, http.StatusOK)
}
