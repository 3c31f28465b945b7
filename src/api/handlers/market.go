package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"papertrade/src/utils"
)

func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	ctx = utils.WithLogger(ctx, h.Logger)

	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		h.HandleErrors(w, utils.BadRequest("ticker is required"))
		return
	}

	quote, err := h.Market.GetQuote(ctx, ticker)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, quote, http.StatusOK)
}

func (h *Handler) SearchAssets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	ctx = utils.WithLogger(ctx, h.Logger)

	query := chi.URLParam(r, "query")
	if query == "" {
		h.HandleErrors(w, utils.BadRequest("search query is required"))
		return
	}

	assets, err := h.Market.Search(ctx, query)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, assets, http.StatusOK)
}
