package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"papertrade/src/schemas"
	"papertrade/src/utils"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	ctx = utils.WithLogger(ctx, h.Logger)

	var req schemas.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		h.HandleErrors(w, utils.BadRequest("username, email and password are required"))
		return
	}

	if err := h.Auth.Register(ctx, req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.MessageResponse{Message: "User created successfully"}, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	ctx = utils.WithLogger(ctx, h.Logger)

	var req schemas.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}

	token, err := h.Auth.Login(ctx, req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, token, http.StatusOK)
}
