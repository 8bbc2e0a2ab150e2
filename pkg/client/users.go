package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// UserService handles user lookups and admin user management
type UserService struct {
	client *Client
}

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Password  string `json:"password,omitempty"`
	Role      string `json:"role,omitempty"`
}

// GetByEmail retrieves a user by email
func (s *UserService) GetByEmail(ctx context.Context, email string) (*User, error) {
	var resp struct {
		Result *User `json:"result"`
	}
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/v1/user/"+url.PathEscape(email), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// GetOrCreate returns the user with the request email, creating it when
// missing. The bool reports whether a user was created.
func (s *UserService) GetOrCreate(ctx context.Context, req CreateUserRequest) (*User, bool, error) {
	var resp struct {
		Created bool  `json:"created"`
		Result  *User `json:"result"`
	}
	if err := s.client.doRequest(ctx, http.MethodPost, "/api/v1/user/", req, &resp); err != nil {
		return nil, false, err
	}
	return resp.Result, resp.Created, nil
}

// Delete deletes a user
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.client.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/user/%d", id), nil, nil)
}
