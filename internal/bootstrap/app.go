package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"vendoreval-backend/internal/evaluations"
	"vendoreval-backend/internal/recommendations"
	"vendoreval-backend/internal/responses"
	"vendoreval-backend/internal/services/health"
	"vendoreval-backend/internal/shared/config"
	"vendoreval-backend/internal/shared/metrics"
	"vendoreval-backend/internal/shared/server"
	"vendoreval-backend/internal/shared/server/middleware"
	"vendoreval-backend/internal/shared/storage/db"
	"vendoreval-backend/internal/shared/telemetry"
	"vendoreval-backend/internal/submissions"
	"vendoreval-backend/internal/users"
	"vendoreval-backend/internal/vendors"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	EvaluationsRepo     evaluations.Repo
	VendorsRepo         vendors.Repo
	UsersRepo           users.Repo
	ResponsesRepo       responses.Repo
	RecommendationsRepo recommendations.Repo

	Directory              *vendors.CachedDirectory
	Reconciler             *recommendations.Reconciler
	EvaluationsService     *evaluations.Service
	VendorsService         *vendors.Service
	UsersService           *users.Service
	SubmissionsService     *submissions.Service
	RecommendationsService *recommendations.Service
}

// Build connects storage and wires services and routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, err
	}
	app := BuildWithDB(cfg, sqlDB)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:                app.Config,
		Health:                health.NewService(app.DB),
		EvaluationHandler:     evaluations.NewHandler(app.EvaluationsService),
		VendorHandler:         vendors.NewHandler(app.VendorsService, app.Directory.Invalidate),
		UserHandler:           users.NewHandler(app.UsersService),
		SubmissionHandler:     submissions.NewHandler(app.SubmissionsService),
		RecommendationHandler: recommendations.NewHandler(app.RecommendationsService),
		RateLimiter:           middleware.NewRateLimiter(nil),
	})
	return app, nil
}

// BuildCLI wires services for command-line use without routes.
func BuildCLI(ctx context.Context, cfg config.Config) (*App, error) {
	sqlDB, err := buildDB(ctx, cfg, db.OptionsFromEnv(db.DefaultCLIOptions()))
	if err != nil {
		return nil, err
	}
	if sqlDB == nil {
		return nil, errors.New("DATABASE_URL is required")
	}
	return BuildWithDB(cfg, sqlDB), nil
}

// BuildWithDB wires repositories and services. A nil database selects the
// in-memory repositories.
func BuildWithDB(cfg config.Config, sqlDB *sql.DB) *App {
	app := &App{Config: cfg, DB: sqlDB}

	if sqlDB != nil {
		app.EvaluationsRepo = &evaluations.PGRepo{DB: sqlDB}
		app.VendorsRepo = &vendors.PGRepo{DB: sqlDB}
		app.UsersRepo = &users.PGRepo{DB: sqlDB}
		app.ResponsesRepo = &responses.PGRepo{DB: sqlDB}
		app.RecommendationsRepo = &recommendations.PGRepo{DB: sqlDB}
	} else {
		app.EvaluationsRepo = evaluations.NewMemoryRepo()
		app.VendorsRepo = vendors.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
		app.ResponsesRepo = responses.NewMemoryRepo()
		app.RecommendationsRepo = recommendations.NewMemoryRepo()
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.VendorsService = vendors.NewService(app.VendorsRepo)
	app.EvaluationsService = evaluations.NewService(app.EvaluationsRepo, app.VendorsService)
	app.Directory = vendors.NewCachedDirectory(
		vendors.Directory{Vendors: app.VendorsRepo, Profiles: app.UsersService},
		cfg.DirectoryCacheTTL,
	)
	app.Reconciler = &recommendations.Reconciler{
		Questions:         evaluations.Catalog{Repo: app.EvaluationsRepo},
		Directory:         app.Directory,
		Store:             app.RecommendationsRepo,
		BatchSize:         cfg.RecommendationBatchSize,
		LookupConcurrency: cfg.ReconcileLookupConcurrency,
	}
	app.SubmissionsService = submissions.NewService(app.EvaluationsService, app.ResponsesRepo, app.Reconciler)
	app.RecommendationsService = recommendations.NewService(app.RecommendationsRepo)
	return app
}

func buildDB(ctx context.Context, cfg config.Config, opts db.Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_storage", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_storage", map[string]any{
				"reason": "database connect failed",
				"error":  err,
			})
			return nil, nil
		}
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	metrics.RegisterDB(sqlDB)
	return sqlDB, nil
}
