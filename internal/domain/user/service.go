package user

import "context"

// RegisterInput carries the fields of a self-registration
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// CreateInput carries the fields of an admin-created user
type CreateInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
	Role      string
}

// Service defines the interface for user business logic
type Service interface {
	// Register creates an account with the default role
	Register(ctx context.Context, in RegisterInput) (*User, error)

	// Authenticate checks credentials and returns the matching user
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetOrCreate returns the user with the given email, creating it when
	// missing. The bool reports whether a user was created.
	GetOrCreate(ctx context.Context, in CreateInput) (*User, bool, error)

	// Delete deletes a user
	Delete(ctx context.Context, id int64) error
}
