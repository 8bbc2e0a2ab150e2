package user

import (
	"strings"
	"time"
)

// User represents a user in the system
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"` // Not exposed in JSON
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// User roles
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Permissions granted on dashboards
const (
	PermRead  = "can_read"
	PermWrite = "can_write"
)

// FullName joins first and last name, falling back to the username
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Actor is the authenticated caller of a service operation. Perms holds the
// dashboard permissions granted by the actor's role.
type Actor struct {
	UserID int64
	Role   string
	Perms  []string
}

// Anonymous reports whether no user is attached
func (a Actor) Anonymous() bool {
	return a.UserID == 0
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// HasPerm reports whether the actor's role grants perm
func (a Actor) HasPerm(perm string) bool {
	if a.Anonymous() {
		return false
	}
	for _, p := range a.Perms {
		if p == perm {
			return true
		}
	}
	return false
}

// CanWrite reports whether the actor may create and modify dashboards
func (a Actor) CanWrite() bool {
	return a.HasPerm(PermWrite)
}

// Permissions lists the dashboard permissions of the actor
func (a Actor) Permissions() []string {
	if a.Anonymous() {
		return []string{}
	}
	return append([]string{}, a.Perms...)
}
