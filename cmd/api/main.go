// @title dashlist API
// @version 1.0
// @description Paginated, filterable dashboard list with favorites and bulk actions
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pratik-mahalle/dashlist/internal/api/handlers"
	"github.com/pratik-mahalle/dashlist/internal/api/middleware"
	"github.com/pratik-mahalle/dashlist/internal/api/router"
	"github.com/pratik-mahalle/dashlist/internal/config"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
	"github.com/pratik-mahalle/dashlist/internal/pkg/validator"
	"github.com/pratik-mahalle/dashlist/internal/repository/postgres"
	"github.com/pratik-mahalle/dashlist/internal/services"
	"github.com/pratik-mahalle/dashlist/internal/worker"
	"github.com/pratik-mahalle/dashlist/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logger.SetGlobal(log)

	if err := run(cfg, log); err != nil {
		log.FatalWithErr(err, "Server exited with error")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	migrationsFS, err := migrations.FS(cfg.Database.Driver)
	if err != nil {
		return err
	}
	applied, err := postgres.RunMigrations(ctx, db, migrationsFS)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Infof("Applied %d migrations", applied)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	dashboardRepo := postgres.NewDashboardRepository(db)
	favoriteRepo := postgres.NewFavoriteRepository(db)
	roleRepo := postgres.NewRoleRepository(db)

	// Services
	roleService := services.NewRoleService(roleRepo, log)
	userService := services.NewUserService(userRepo, roleRepo, cfg.Auth, log)
	dashboardService := services.NewDashboardService(dashboardRepo, userRepo, cfg.List, log)
	favoriteService := services.NewFavoriteService(favoriteRepo, dashboardRepo, log)

	val := validator.New()
	h := &router.Handlers{
		Health:    handlers.NewHealthHandler(db.DB, log),
		Auth:      handlers.NewAuthHandler(userService, roleService, cfg, log, val),
		User:      handlers.NewUserHandler(userService, roleService, log, val),
		Role:      handlers.NewRoleHandler(roleService, log, val),
		Dashboard: handlers.NewDashboardHandler(dashboardService, favoriteService, log, val),

		Permissions: roleService,
	}

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		limiter.RunCleanup(gctx, time.Minute)
		return nil
	})

	if cfg.Worker.FavoritePrunerEnabled {
		pruner, err := worker.NewFavoritePruner(favoriteService, cfg.Worker.FavoritePrunerSchedule, log)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return pruner.Start(gctx)
		})
	}

	g.Go(func() error {
		log.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
