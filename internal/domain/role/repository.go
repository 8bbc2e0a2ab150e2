package role

import "context"

// Repository defines the interface for role data access
type Repository interface {
	// Create stores r and its permission views. Permission views that do not
	// exist yet are created.
	Create(ctx context.Context, r *Role) error

	// GetByName retrieves a role with its permission views
	GetByName(ctx context.Context, name string) (*Role, error)

	// Delete removes the role and its grants. Permission views are kept.
	Delete(ctx context.Context, id int64) error

	// CountUsers returns how many users hold the role
	CountUsers(ctx context.Context, name string) (int64, error)
}
