package client

import (
	"context"
	"net/http"

	"github.com/erazemk/sweetshop/internal/model"
)

// Login handles POST /api/auth/login.
func (c *Client) Login(ctx context.Context, in model.LoginInput) (*model.AuthResult, error) {
	var res model.AuthResult
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", "", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Register handles POST /api/auth/register.
func (c *Client) Register(ctx context.Context, in model.RegisterInput) (*model.AuthResult, error) {
	var res model.AuthResult
	if err := c.do(ctx, "register", http.MethodPost, "/api/auth/register", "", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
