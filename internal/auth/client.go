package auth

import (
	"context"
	"fmt"
	"net/http"

	"ipgeo-client/internal/apiclient"
	"ipgeo-client/internal/models"
)

// Client calls the auth service.
type Client struct {
	api *apiclient.Client
}

// NewClient returns a client on api.
func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login submits credentials and returns the service's response envelope.
func (c *Client) Login(ctx context.Context, email, password string) (models.LoginResponse, error) {
	var resp models.LoginResponse
	err := c.api.Do(ctx, http.MethodPost, "/api/login", nil, loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return models.LoginResponse{}, fmt.Errorf("auth: login: %w", err)
	}
	return resp, nil
}
