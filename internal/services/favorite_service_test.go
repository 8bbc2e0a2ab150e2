package services

import (
	"context"
	"testing"

	"github.com/pratik-mahalle/dashlist/internal/domain/dashboard"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/internal/testutil"
)

func TestFavoriteService(t *testing.T) {
	dashboards := testutil.NewMockDashboardRepository()
	repo := testutil.NewMockFavoriteRepository(dashboards)
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	service := NewFavoriteService(repo, dashboards, log)
	ctx := context.Background()

	a := &dashboard.Dashboard{DashboardTitle: "A"}
	b := &dashboard.Dashboard{DashboardTitle: "B"}
	_ = dashboards.Create(ctx, a)
	_ = dashboards.Create(ctx, b)

	if err := service.Add(ctx, 1, a.ID); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := service.Add(ctx, 1, 999); !errors.IsNotFound(err) {
		t.Errorf("Add(missing) error = %v, want not found", err)
	}
	if err := service.Add(ctx, 0, a.ID); err == nil {
		t.Error("Add() accepted an anonymous user")
	}

	statuses, err := service.Statuses(ctx, 1, []int64{b.ID, a.ID})
	if err != nil {
		t.Fatalf("Statuses() error = %v", err)
	}
	if len(statuses) != 2 || statuses[0].Value || !statuses[1].Value || statuses[1].ID != a.ID {
		t.Errorf("Statuses() = %+v", statuses)
	}

	if err := service.Remove(ctx, 1, a.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	statuses, _ = service.Statuses(ctx, 1, []int64{a.ID})
	if statuses[0].Value {
		t.Error("Statuses() still reports removed favorite")
	}
}

func TestFavoriteService_Prune(t *testing.T) {
	dashboards := testutil.NewMockDashboardRepository()
	repo := testutil.NewMockFavoriteRepository(dashboards)
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	service := NewFavoriteService(repo, dashboards, log)
	ctx := context.Background()

	d := &dashboard.Dashboard{DashboardTitle: "A"}
	_ = dashboards.Create(ctx, d)
	_ = repo.Add(ctx, 1, d.ID)
	_ = repo.Add(ctx, 1, 42)

	n, err := service.Prune(ctx)
	if err != nil || n != 1 {
		t.Errorf("Prune() = %d, %v; want 1", n, err)
	}
}
