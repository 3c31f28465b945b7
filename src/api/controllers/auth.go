package controllers

import (
	"context"

	"papertrade/src/schemas"
)

func (c *Controller) Register(ctx context.Context, req schemas.RegisterRequest) error {
	return c.Auth.Register(ctx, req)
}

func (c *Controller) Login(ctx context.Context, req schemas.LoginRequest) (*schemas.TokenResponse, error) {
	return c.Auth.Login(ctx, req)
}
