package services

import (
	"context"

	"github.com/pratik-mahalle/dashlist/internal/domain/dashboard"
	"github.com/pratik-mahalle/dashlist/internal/domain/favorite"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/internal/pkg/metrics"
)

// FavoriteService implements favorite.Service
type FavoriteService struct {
	repo       favorite.Repository
	dashboards dashboard.Repository
	logger     *logger.Logger
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(repo favorite.Repository, dashboards dashboard.Repository, log *logger.Logger) favorite.Service {
	return &FavoriteService{
		repo:       repo,
		dashboards: dashboards,
		logger:     log.Component("favorites"),
	}
}

// Statuses returns one entry per requested id, in request order
func (s *FavoriteService) Statuses(ctx context.Context, userID int64, ids []int64) ([]favorite.Status, error) {
	if userID == 0 {
		return nil, errors.Unauthorized("Login required")
	}

	marked, err := s.repo.FavoritedIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	set := make(map[int64]bool, len(marked))
	for _, id := range marked {
		set[id] = true
	}

	statuses := make([]favorite.Status, len(ids))
	for i, id := range ids {
		statuses[i] = favorite.Status{ID: id, Value: set[id]}
	}
	return statuses, nil
}

// Add marks an existing dashboard as favorite
func (s *FavoriteService) Add(ctx context.Context, userID, dashboardID int64) error {
	if userID == 0 {
		return errors.Unauthorized("Login required")
	}
	if _, err := s.dashboards.GetByID(ctx, dashboardID); err != nil {
		return err
	}

	if err := s.repo.Add(ctx, userID, dashboardID); err != nil {
		s.logger.ErrorWithErr(err, "Failed to add favorite")
		return err
	}
	metrics.RecordFavoriteToggle(true)
	return nil
}

// Remove clears the favorite mark
func (s *FavoriteService) Remove(ctx context.Context, userID, dashboardID int64) error {
	if userID == 0 {
		return errors.Unauthorized("Login required")
	}
	if _, err := s.dashboards.GetByID(ctx, dashboardID); err != nil {
		return err
	}

	if err := s.repo.Remove(ctx, userID, dashboardID); err != nil {
		s.logger.ErrorWithErr(err, "Failed to remove favorite")
		return err
	}
	metrics.RecordFavoriteToggle(false)
	return nil
}

// Prune removes orphaned marks and returns how many were deleted
func (s *FavoriteService) Prune(ctx context.Context) (int64, error) {
	n, err := s.repo.PruneOrphans(ctx)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to prune favorites")
		return 0, err
	}
	if n > 0 {
		metrics.RecordFavoritesPruned(n)
		s.logger.WithFields(map[string]interface{}{"count": n}).Info("Pruned orphaned favorites")
	}
	return n, nil
}
