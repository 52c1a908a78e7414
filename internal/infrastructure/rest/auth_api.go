package rest

import (
	"context"
	"net/http"

	"github.com/openshelf/libctl/internal/core/domain"
	"github.com/openshelf/libctl/internal/core/ports"
)

var _ ports.AuthAPI = (*Client)(nil)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error) {
	var resp authResponse
	err := c.post(ctx, "/auth/login", nil, loginRequest{
		Username: input.Username,
		Password: input.Password,
	}, &resp)
	if err != nil {
		return nil, mapStatus(err, http.StatusUnauthorized, domain.ErrInvalidCredentials)
	}
	return &ports.AuthResult{Token: resp.Token, Username: resp.Username, Role: resp.Role}, nil
}

// Register creates an account. The service answers 201 with a token, but per
// contract no session is established implicitly; the result is returned for
// completeness and the caller decides what to do with it.
func (c *Client) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	var resp authResponse
	err := c.post(ctx, "/auth/register", nil, registerRequest{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Surname:  input.Surname,
	}, &resp)
	if err != nil {
		return nil, mapStatus(err, http.StatusConflict, domain.ErrUserExists)
	}
	return &ports.AuthResult{Token: resp.Token, Username: resp.Username, Role: resp.Role}, nil
}
