package rest

import (
	"context"
	"net/http"

	"github.com/openshelf/libctl/internal/core/domain"
	"github.com/openshelf/libctl/internal/core/ports"
)

var _ ports.UserAPI = (*Client)(nil)

type userRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func userRequestFrom(input ports.UserInput) userRequest {
	return userRequest{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Surname:  input.Surname,
		Role:     string(input.Role),
		Status:   string(input.Status),
	}
}

func (c *Client) ListUsers(ctx context.Context, page ports.PageRequest) (*ports.UserPage, error) {
	var envelope pageEnvelope[domain.User]
	if err := c.get(ctx, "/users", pageQuery(page), &envelope); err != nil {
		return nil, err
	}
	return &ports.UserPage{
		Content:       envelope.Content,
		TotalElements: envelope.TotalElements,
		TotalPages:    envelope.TotalPages,
		First:         envelope.First,
		Last:          envelope.Last,
	}, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := c.get(ctx, "/users/"+id, nil, &user); err != nil {
		return nil, mapStatus(err, http.StatusNotFound, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := c.get(ctx, "/users/email/"+email, nil, &user); err != nil {
		return nil, mapStatus(err, http.StatusNotFound, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (c *Client) CreateUser(ctx context.Context, input ports.UserInput) (*domain.User, error) {
	var user domain.User
	if err := c.post(ctx, "/users", nil, userRequestFrom(input), &user); err != nil {
		return nil, mapStatus(err, http.StatusConflict, domain.ErrUserExists)
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, input ports.UserInput) (*domain.User, error) {
	var user domain.User
	if err := c.put(ctx, "/users/"+id, userRequestFrom(input), &user); err != nil {
		return nil, mapStatus(err, http.StatusNotFound, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (c *Client) DeactivateUser(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := c.put(ctx, "/users/"+id+"/deactivate", nil, &user); err != nil {
		return nil, mapStatus(err, http.StatusNotFound, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return mapStatus(c.delete(ctx, "/users/"+id), http.StatusNotFound, domain.ErrUserNotFound)
}
