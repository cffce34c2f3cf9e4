package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "compliance-backend/internal/auth"
	"compliance-backend/internal/dashboard"
	"compliance-backend/internal/documents"
	"compliance-backend/internal/extraction"
	"compliance-backend/internal/extraction/openai"
	"compliance-backend/internal/notifications"
	"compliance-backend/internal/orgs"
	"compliance-backend/internal/processing"
	"compliance-backend/internal/queue"
	"compliance-backend/internal/shared/config"
	"compliance-backend/internal/shared/server"
	"compliance-backend/internal/shared/storage/db"
	"compliance-backend/internal/shared/storage/object"
	localstore "compliance-backend/internal/shared/storage/object/local"
	s3store "compliance-backend/internal/shared/storage/object/s3"
	"compliance-backend/internal/usage"
	"compliance-backend/internal/users"
)

// App holds shared dependencies for the API and worker processes.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	DocumentsRepo     documents.Repo
	JobsRepo          processing.Repo
	NotificationsRepo notifications.Repo
	UsersRepo         users.Repo
	OrgsRepo          orgs.Repo

	DocumentsService     *documents.Service
	ProcessingService    *processing.Service
	UsageService         *usage.Service
	NotificationsService *notifications.Service
	DashboardService     *dashboard.Service
	UsersService         *users.Service
	OrgsService          *orgs.Service

	DocumentsHandler     *documents.Handler
	ProcessingHandler    *processing.Handler
	UsageHandler         *usage.Handler
	NotificationsHandler *notifications.Handler
	DashboardHandler     *dashboard.Handler
	UsersHandler         *users.Handler
	OrgsHandler          *orgs.Handler
	GoogleAuth           *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:               app.Config,
		DocumentsHandler:     app.DocumentsHandler,
		ProcessingHandler:    app.ProcessingHandler,
		UsageHandler:         app.UsageHandler,
		NotificationsHandler: app.NotificationsHandler,
		DashboardHandler:     app.DashboardHandler,
		UsersHandler:         app.UsersHandler,
		OrgsHandler:          app.OrgsHandler,
		GoogleAuth:           app.GoogleAuth,
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

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("CD_SQS_QUEUE_URL")) == "" {
		// Jobs run inline in the API process when no queue is configured.
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var docRepo documents.Repo
	var jobsRepo processing.Repo
	var notifRepo notifications.Repo
	var userRepo users.Repo
	var orgRepo orgs.Repo

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		jobsRepo = &processing.PGRepo{DB: app.DB}
		notifRepo = &notifications.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
		orgRepo = &orgs.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		jobsRepo = processing.NewMemoryRepo()
		notifRepo = notifications.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		orgRepo = orgs.NewMemoryRepo()
	}

	docSvc := &documents.Service{
		Repo:  docRepo,
		Store: app.Store,
	}

	var usageSvc *usage.Service
	if app.DB != nil {
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB))
	} else {
		usageSvc = usage.NewService()
	}

	extractor, err := buildExtractor(app.Config)
	if err != nil {
		return err
	}

	processingSvc := &processing.Service{
		Repo:      jobsRepo,
		Docs:      docSvc,
		Usage:     usageSvc,
		Store:     app.Store,
		Extractor: extractor,
		Queue:     app.Queue,
		Provider:  app.Config.ExtractionProvider,
		Model:     app.Config.ExtractionModel,
	}

	orgSvc := &orgs.Service{Repo: orgRepo, Docs: docRepo}
	userSvc := users.NewService(userRepo)

	notifSvc := &notifications.Service{
		Repo: notifRepo,
		Docs: docSvc,
		Orgs: orgSvc,
	}

	dashboardSvc := &dashboard.Service{
		Docs:  docSvc,
		Usage: usageSvc,
	}

	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
		orgSvc,
	)

	app.DocumentsRepo = docRepo
	app.JobsRepo = jobsRepo
	app.NotificationsRepo = notifRepo
	app.UsersRepo = userRepo
	app.OrgsRepo = orgRepo
	app.DocumentsService = docSvc
	app.ProcessingService = processingSvc
	app.UsageService = usageSvc
	app.NotificationsService = notifSvc
	app.DashboardService = dashboardSvc
	app.UsersService = userSvc
	app.OrgsService = orgSvc
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.ProcessingHandler = processing.NewHandler(processingSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)
	app.NotificationsHandler = notifications.NewHandler(notifSvc)
	app.DashboardHandler = dashboard.NewHandler(dashboardSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.OrgsHandler = orgs.NewHandler(orgSvc)
	app.GoogleAuth = googleAuthSvc

	if app.DocumentsHandler == nil || app.ProcessingHandler == nil || app.DashboardHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}

func buildExtractor(cfg config.Config) (extraction.Client, error) {
	if cfg.ExtractionProvider != "openai" {
		return extraction.PlaceholderClient{}, nil
	}
	client, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.ExtractionModel)
	if err != nil {
		return nil, err
	}
	return extraction.NewResilientClient(client), nil
}
