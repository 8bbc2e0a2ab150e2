package dashboard

import "context"

// Repository defines the interface for dashboard data access
type Repository interface {
	// Create creates a dashboard together with its owners
	Create(ctx context.Context, d *Dashboard) error

	// GetByID retrieves a dashboard by ID
	GetByID(ctx context.Context, id int64) (*Dashboard, error)

	// GetByIDs retrieves the dashboards that exist among ids
	GetByIDs(ctx context.Context, ids []int64) ([]*Dashboard, error)

	// Update updates properties and replaces the owner set
	Update(ctx context.Context, d *Dashboard) error

	// Delete removes the given dashboards in one transaction
	Delete(ctx context.Context, ids []int64) (int64, error)

	// List returns one page of dashboards and the total match count
	List(ctx context.Context, c Criteria) ([]*Dashboard, int64, error)

	// SlugTaken reports whether another dashboard uses slug
	SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error)

	// Related lists users that can be used as values for a relation filter
	Related(ctx context.Context, column, search string, limit, offset int) ([]Owner, int64, error)
}
