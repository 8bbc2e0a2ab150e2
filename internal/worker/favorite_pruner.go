package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/pratik-mahalle/dashlist/internal/domain/favorite"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
)

// FavoritePruner periodically removes favorite marks whose dashboard was
// deleted
type FavoritePruner struct {
	favorites favorite.Service
	schedule  string
	logger    *logger.Logger

	scheduler *cron.Cron
	mu        sync.Mutex
}

// NewFavoritePruner creates a new favorite pruner worker. schedule accepts
// standard cron expressions and descriptors such as @hourly.
func NewFavoritePruner(favorites favorite.Service, schedule string, log *logger.Logger) (*FavoritePruner, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid favorite pruner schedule: %w", err)
	}
	return &FavoritePruner{
		favorites: favorites,
		schedule:  schedule,
		logger:    log.Component("favorite_pruner"),
	}, nil
}

// Start runs one prune immediately and then on the schedule until ctx is done
func (p *FavoritePruner) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.scheduler != nil {
		p.mu.Unlock()
		return fmt.Errorf("favorite pruner already running")
	}
	p.scheduler = cron.New()
	if _, err := p.scheduler.AddFunc(p.schedule, func() { p.RunOnce(ctx) }); err != nil {
		p.scheduler = nil
		p.mu.Unlock()
		return fmt.Errorf("failed to schedule favorite pruner: %w", err)
	}
	p.scheduler.Start()
	p.mu.Unlock()

	p.logger.WithFields(map[string]interface{}{
		"schedule": p.schedule,
	}).Info("Starting favorite pruner worker")

	p.RunOnce(ctx)

	<-ctx.Done()
	p.Stop()
	p.logger.Info("Favorite pruner worker stopped")
	return nil
}

// Stop halts the schedule and waits for a running prune to finish
func (p *FavoritePruner) Stop() {
	p.mu.Lock()
	scheduler := p.scheduler
	p.scheduler = nil
	p.mu.Unlock()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
}

// RunOnce prunes orphaned favorites and returns how many were removed
func (p *FavoritePruner) RunOnce(ctx context.Context) int64 {
	if ctx.Err() != nil {
		return 0
	}
	n, err := p.favorites.Prune(ctx)
	if err != nil {
		p.logger.ErrorWithErr(err, "Failed to prune favorites")
		return 0
	}
	return n
}
