package postgres

import (
	"context"
	"time"

	"github.com/pratik-mahalle/dashlist/internal/domain/favorite"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
)

// FavoriteRepository implements favorite.Repository
type FavoriteRepository struct {
	db *DB
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *DB) favorite.Repository {
	return &FavoriteRepository{db: db}
}

// Add marks dashboardID as a favorite of userID
func (r *FavoriteRepository) Add(ctx context.Context, userID, dashboardID int64) error {
	defer observe("insert", "favorites", time.Now())

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, dashboard_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, dashboard_id) DO NOTHING
	`, userID, dashboardID, nowUnix())
	if err != nil {
		return errors.DatabaseError("Failed to save favorite", err)
	}
	return nil
}

// Remove clears the favorite mark
func (r *FavoriteRepository) Remove(ctx context.Context, userID, dashboardID int64) error {
	defer observe("delete", "favorites", time.Now())

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND dashboard_id = ?`, userID, dashboardID)
	if err != nil {
		return errors.DatabaseError("Failed to remove favorite", err)
	}
	return nil
}

// FavoritedIDs returns the subset of ids that userID marked
func (r *FavoriteRepository) FavoritedIDs(ctx context.Context, userID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	defer observe("select", "favorites", time.Now())

	args := append([]interface{}{userID}, int64Args(ids)...)
	rows, err := r.db.QueryContext(ctx,
		`SELECT dashboard_id FROM favorites WHERE user_id = ? AND dashboard_id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, errors.DatabaseError("Failed to get favorites", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.DatabaseError("Failed to scan favorite", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate favorites", err)
	}
	return out, nil
}

// PruneOrphans deletes marks whose dashboard no longer exists
func (r *FavoriteRepository) PruneOrphans(ctx context.Context) (int64, error) {
	defer observe("delete", "favorites", time.Now())

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE dashboard_id NOT IN (SELECT id FROM dashboards)`)
	if err != nil {
		return 0, errors.DatabaseError("Failed to prune favorites", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get affected rows", err)
	}
	return n, nil
}
