package client

import (
	"context"
	"net/http"

	"github.com/sushihentaime/companyblog/internal/userservice"
)

// Login exchanges credentials for a token pair. Use WithToken to authenticate later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*userservice.AuthToken, error) {
	var env struct {
		Token *userservice.AuthToken `json:"token"`
	}

	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/v1/users/login", body, &env); err != nil {
		return nil, err
	}
	return env.Token, nil
}

// Account returns the user the client's token belongs to.
func (c *Client) Account(ctx context.Context) (*userservice.User, error) {
	var env struct {
		User *userservice.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/account", nil, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}
