package dto

import "github.com/pratik-mahalle/dashlist/internal/domain/user"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Username    string   `json:"username"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Role        string   `json:"role"`
	Active      bool     `json:"is_active"`
	Permissions []string `json:"permissions"`
}

// CreateUserRequest represents an admin user creation request
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	FirstName string `json:"first_name,omitempty" validate:"max=64"`
	LastName  string `json:"last_name,omitempty" validate:"max=64"`
	Password  string `json:"password,omitempty" validate:"omitempty,min=8"`
	Role      string `json:"role,omitempty" validate:"omitempty,max=64"`
}

// CreateUserResponse reports whether the user already existed
type CreateUserResponse struct {
	Created bool     `json:"created"`
	Result  *UserDTO `json:"result"`
}

// FromUser converts a domain user holding perms on dashboards
func FromUser(u *user.User, perms []string) *UserDTO {
	if u == nil {
		return nil
	}
	actor := user.Actor{UserID: u.ID, Role: u.Role, Perms: perms}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		Active:      u.Active,
		Permissions: actor.Permissions(),
	}
}
