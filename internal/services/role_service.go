package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pratik-mahalle/dashlist/internal/domain/role"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
)

// RoleService implements role.Service
type RoleService struct {
	repo   role.Repository
	logger *logger.Logger
}

// NewRoleService creates a new role service
func NewRoleService(repo role.Repository, log *logger.Logger) role.Service {
	return &RoleService{
		repo:   repo,
		logger: log.Component("roles"),
	}
}

// Create adds a role with its permission views
func (s *RoleService) Create(ctx context.Context, in role.CreateInput) (*role.Role, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.BadRequest("Role name is required")
	}

	seen := make(map[role.PermissionView]bool, len(in.Permissions))
	var perms []role.PermissionView
	for _, pv := range in.Permissions {
		pv = role.PermissionView{
			Permission: strings.TrimSpace(pv.Permission),
			View:       strings.TrimSpace(pv.View),
		}
		if pv.Permission == "" || pv.View == "" {
			return nil, errors.BadRequest("Permission and view are required")
		}
		if seen[pv] {
			continue
		}
		seen[pv] = true
		perms = append(perms, pv)
	}

	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return nil, errors.Conflict(fmt.Sprintf("Role %s already exists", name))
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	r := &role.Role{Name: name, Permissions: perms}
	if err := s.repo.Create(ctx, r); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create role")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"role":        r.Name,
		"permissions": len(r.Permissions),
	}).Info("Role created")
	return r, nil
}

// GetByName retrieves a role
func (s *RoleService) GetByName(ctx context.Context, name string) (*role.Role, error) {
	return s.repo.GetByName(ctx, name)
}

// Delete removes a role no user holds
func (s *RoleService) Delete(ctx context.Context, name string) error {
	r, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if role.IsBuiltin(r.Name) {
		return errors.BadRequest(fmt.Sprintf("Built-in role %s cannot be deleted", r.Name))
	}

	n, err := s.repo.CountUsers(ctx, r.Name)
	if err != nil {
		return err
	}
	if n > 0 {
		return errors.Conflict(fmt.Sprintf("Role %s is assigned to %d users", r.Name, n))
	}

	if err := s.repo.Delete(ctx, r.ID); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"role": r.Name,
	}).Info("Role deleted")
	return nil
}

// ViewPermissions returns what name grants on view
func (s *RoleService) ViewPermissions(ctx context.Context, name, view string) ([]string, error) {
	if name == "" {
		return []string{}, nil
	}
	r, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.IsNotFound(err) {
			return []string{}, nil
		}
		return nil, err
	}
	return r.OnView(view), nil
}
