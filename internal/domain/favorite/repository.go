package favorite

import "context"

// Repository defines the interface for favorite data access
type Repository interface {
	// Add marks dashboardID as a favorite of userID. Adding twice is a no-op.
	Add(ctx context.Context, userID, dashboardID int64) error

	// Remove clears the mark. Removing a missing mark is a no-op.
	Remove(ctx context.Context, userID, dashboardID int64) error

	// FavoritedIDs returns the subset of ids that userID marked
	FavoritedIDs(ctx context.Context, userID int64, ids []int64) ([]int64, error)

	// PruneOrphans deletes marks whose dashboard no longer exists
	PruneOrphans(ctx context.Context) (int64, error)
}
