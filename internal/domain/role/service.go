package role

import "context"

// CreateInput carries the fields of a new role
type CreateInput struct {
	Name        string
	Permissions []PermissionView
}

// Service defines the interface for role business logic
type Service interface {
	// Create adds a role. The name must be unused.
	Create(ctx context.Context, in CreateInput) (*Role, error)

	// GetByName retrieves a role
	GetByName(ctx context.Context, name string) (*Role, error)

	// Delete removes a role that no user holds. Seeded roles cannot be
	// deleted.
	Delete(ctx context.Context, name string) error

	// ViewPermissions returns the permissions a role grants on view. An
	// unknown role grants nothing.
	ViewPermissions(ctx context.Context, name, view string) ([]string, error)
}
