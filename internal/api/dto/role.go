package dto

import "github.com/pratik-mahalle/dashlist/internal/domain/role"

// PermissionViewDTO is one permission granted on one view
type PermissionViewDTO struct {
	ID         int64  `json:"id"`
	Permission string `json:"permission"`
	View       string `json:"view"`
}

// RoleDTO represents a role in API responses
type RoleDTO struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Permissions []PermissionViewDTO `json:"permissions"`
}

// CreateRoleRequest creates a role. PermissionView lists
// [permission, view] pairs, e.g. ["can_write", "Dashboard"].
type CreateRoleRequest struct {
	Name           string     `json:"name" validate:"required,max=64"`
	PermissionView [][]string `json:"permission_view" validate:"required,min=1,dive,len=2,dive,required,max=100"`
}

// ToCreateInput converts the request to service input
func (r CreateRoleRequest) ToCreateInput() role.CreateInput {
	in := role.CreateInput{Name: r.Name}
	for _, pair := range r.PermissionView {
		in.Permissions = append(in.Permissions, role.PermissionView{Permission: pair[0], View: pair[1]})
	}
	return in
}

// FromRole converts a domain role
func FromRole(r *role.Role) *RoleDTO {
	if r == nil {
		return nil
	}
	perms := make([]PermissionViewDTO, 0, len(r.Permissions))
	for _, pv := range r.Permissions {
		perms = append(perms, PermissionViewDTO{ID: pv.ID, Permission: pv.Permission, View: pv.View})
	}
	return &RoleDTO{ID: r.ID, Name: r.Name, Permissions: perms}
}
