package client

import (
	"context"
	"net/http"
	"net/url"
)

// RoleService handles role lookups and admin role management
type RoleService struct {
	client *Client
}

// PermissionView is one permission granted on one view
type PermissionView struct {
	ID         int64  `json:"id"`
	Permission string `json:"permission"`
	View       string `json:"view"`
}

// Role is a named set of permission views
type Role struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Permissions []PermissionView `json:"permissions"`
}

// CreateRoleRequest creates a role. Each PermissionView entry is a
// [permission, view] pair.
type CreateRoleRequest struct {
	Name           string      `json:"name"`
	PermissionView [][2]string `json:"permission_view"`
}

// GetByName retrieves a role by name
func (s *RoleService) GetByName(ctx context.Context, name string) (*Role, error) {
	var resp struct {
		Result *Role `json:"result"`
	}
	if err := s.client.doRequest(ctx, http.MethodGet, "/api/v1/role/name/"+url.PathEscape(name), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// Create creates a role
func (s *RoleService) Create(ctx context.Context, req CreateRoleRequest) (*Role, error) {
	var resp struct {
		Result *Role `json:"result"`
	}
	if err := s.client.doRequest(ctx, http.MethodPost, "/api/v1/role/", req, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// Delete deletes a role that no user holds
func (s *RoleService) Delete(ctx context.Context, name string) error {
	return s.client.doRequest(ctx, http.MethodDelete, "/api/v1/role/name/"+url.PathEscape(name), nil, nil)
}
