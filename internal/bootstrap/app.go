package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard-backend/internal/applications"
	"jobboard-backend/internal/blob"
	s3store "jobboard-backend/internal/blob/s3"
	"jobboard-backend/internal/companies"
	"jobboard-backend/internal/files"
	"jobboard-backend/internal/jobs"
	"jobboard-backend/internal/shared/config"
	"jobboard-backend/internal/shared/server"
	"jobboard-backend/internal/shared/storage/db"
	"jobboard-backend/internal/users"
)

// App holds shared dependencies built once at process start.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  blob.Store

	UsersRepo        users.Repo
	CompaniesRepo    companies.Repo
	JobsRepo         jobs.Repo
	ApplicationsRepo applications.Repo

	FilesService        *files.Service
	UsersService        *users.Service
	CompaniesService    *companies.Service
	JobsService         *jobs.Service
	ApplicationsService *applications.Service

	FilesHandler        *files.Handler
	UsersHandler        *users.Handler
	CompaniesHandler    *companies.Handler
	JobsHandler         *jobs.Handler
	ApplicationsHandler *applications.Handler
}

// Build prepares dependencies and the router. Store initialization is
// bounded by the configured timeout; exceeding it fails the whole start.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg, sqlDB)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:              app.Config,
		FilesHandler:        app.FilesHandler,
		UsersHandler:        app.UsersHandler,
		CompaniesHandler:    app.CompaniesHandler,
		JobsHandler:         app.JobsHandler,
		ApplicationsHandler: app.ApplicationsHandler,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config, sqlDB *sql.DB) (blob.Store, error) {
	switch cfg.BlobStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("BLOB_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "memory":
		return blob.NewMemoryStore(), nil
	default:
		if sqlDB == nil {
			log.Printf("bootstrap: no database available; using in-memory blob store")
			return blob.NewMemoryStore(), nil
		}
		store := blob.NewPGStore(sqlDB)
		initCtx, cancel := context.WithTimeout(ctx, cfg.StorageInitTimeout)
		defer cancel()
		if err := store.Init(initCtx); err != nil {
			return nil, err
		}
		return store, nil
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.CompaniesRepo = &companies.PGRepo{DB: app.DB}
		app.JobsRepo = &jobs.PGRepo{DB: app.DB}
		app.ApplicationsRepo = &applications.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.CompaniesRepo = companies.NewMemoryRepo()
		app.JobsRepo = jobs.NewMemoryRepo()
		app.ApplicationsRepo = applications.NewMemoryRepo()
	}

	app.FilesService = &files.Service{
		Store:  app.Store,
		Policy: files.NewPolicy(app.Config.MaxUploadBytes, app.Config.AllowedMimeTypes),
	}
	app.UsersService = users.NewService(app.UsersRepo, app.FilesService)
	app.CompaniesService = companies.NewService(app.CompaniesRepo, app.FilesService)
	app.JobsService = jobs.NewService(app.JobsRepo, app.CompaniesRepo)
	app.ApplicationsService = applications.NewService(app.ApplicationsRepo, app.JobsRepo, app.UsersRepo, app.Store)

	app.FilesHandler = files.NewHandler(app.FilesService)
	app.UsersHandler = users.NewHandler(app.UsersService)
	app.CompaniesHandler = companies.NewHandler(app.CompaniesService)
	app.JobsHandler = jobs.NewHandler(app.JobsService)
	app.ApplicationsHandler = applications.NewHandler(app.ApplicationsService)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
