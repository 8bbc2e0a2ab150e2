package favorite

import "time"

// Favorite marks a dashboard as a favorite of a user
type Favorite struct {
	UserID      int64     `json:"user_id"`
	DashboardID int64     `json:"dashboard_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Status is the favorite flag of one dashboard for the current user
type Status struct {
	ID    int64 `json:"id"`
	Value bool  `json:"value"`
}
