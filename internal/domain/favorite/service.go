package favorite

import "context"

// Service defines the interface for favorite business logic
type Service interface {
	// Statuses returns one entry per requested id, in request order
	Statuses(ctx context.Context, userID int64, ids []int64) ([]Status, error)

	// Add marks an existing dashboard as favorite
	Add(ctx context.Context, userID, dashboardID int64) error

	// Remove clears the favorite mark
	Remove(ctx context.Context, userID, dashboardID int64) error

	// Prune removes orphaned marks and returns how many were deleted
	Prune(ctx context.Context) (int64, error)
}
