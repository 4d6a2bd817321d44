package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/go-chi/httprate"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/employee_records/internal/blobstore"
	"github.com/locvowork/employee_records/internal/config"
	"github.com/locvowork/employee_records/internal/database"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/handler"
	"github.com/locvowork/employee_records/internal/logger"
	"github.com/locvowork/employee_records/internal/repository"
	"github.com/locvowork/employee_records/internal/service"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Echo            *echo.Echo
	DB              *sql.DB
	DatastoreClient *datastore.Client
	Blobs           *blobstore.LocalStore
	Service         service.EmployeeService
}

func NewApp() *App {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	return &App{Echo: e}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	// Initialize record store
	repo, err := a.newRecordStore(ctx)
	if err != nil {
		return err
	}
	logger.InfoLog(ctx, "Record store %q ready", cfg.RECORD_STORE)

	// Initialize blob store
	a.Blobs = blobstore.NewLocalStore(cfg.UPLOAD_DIR, cfg.FILES_URL_PREFIX)
	if err := os.MkdirAll(a.Blobs.Root(), 0o755); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}

	// Initialize dependencies
	a.Service = service.NewEmployeeService(repo, a.Blobs)

	exportTemplate, err := loadExportTemplate(cfg.EXPORT_TEMPLATE_PATH)
	if err != nil {
		return err
	}
	empHandler, err := handler.NewEmployeeHandler(a.Service, exportTemplate)
	if err != nil {
		return err
	}

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(empHandler)

	return nil
}

func (a *App) newRecordStore(ctx context.Context) (domain.EmployeeRepository, error) {
	cfg := config.DefaultEnvConfig

	switch cfg.RECORD_STORE {
	case config.StoreMemory:
		return repository.NewMemoryEmployeeRepository(), nil

	case config.StorePostgres:
		dbConfig := database.Config{
			Host:            cfg.DB_HOST,
			Port:            cfg.DB_PORT,
			User:            cfg.DB_USER,
			Password:        cfg.DB_PASSWORD,
			DBName:          cfg.DB_NAME,
			SSLMode:         cfg.DB_SSL_MODE,
			MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
		}
		db, err := database.NewPostgresDB(ctx, dbConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db
		if err := database.Migrate(ctx, db, database.DialectPostgres); err != nil {
			return nil, err
		}
		return repository.NewEmployeeRepository(db), nil

	case config.StoreSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.SQLITE_PATH)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db
		if err := database.Migrate(ctx, db, database.DialectSQLite); err != nil {
			return nil, err
		}
		return repository.NewEmployeeRepository(db), nil

	case config.StoreDatastore:
		client, err := database.NewDatastoreClient(ctx, cfg.DATASTORE_PROJECT_ID)
		if err != nil {
			return nil, err
		}
		a.DatastoreClient = client
		return repository.NewDatastoreEmployeeRepository(client), nil

	default:
		return nil, fmt.Errorf("unknown RECORD_STORE %q", cfg.RECORD_STORE)
	}
}

func loadExportTemplate(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read export template: %w", err)
	}
	return string(b), nil
}

func (a *App) RegisterMiddlewares() {
	cfg := config.DefaultEnvConfig

	a.Echo.Use(middleware.Recover())
	a.Echo.Use(handler.RequestLogger())
	a.Echo.Use(middleware.CORS())
	a.Echo.Use(middleware.BodyLimit(cfg.MAX_UPLOAD_SIZE))
	if cfg.RATE_LIMIT_PER_MINUTE > 0 {
		a.Echo.Use(echo.WrapMiddleware(httprate.Limit(
			cfg.RATE_LIMIT_PER_MINUTE,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(handler.RateLimitExceeded),
		)))
	}
}

func (a *App) RegisterRoutes(empHandler *handler.EmployeeHandler) {
	a.Echo.GET("/employees", empHandler.ListHandler)
	a.Echo.GET("/employees/export", empHandler.ExportHandler)
	a.Echo.GET("/employees/:id", empHandler.GetHandler)
	a.Echo.POST("/employees", empHandler.CreateHandler)
	a.Echo.PUT("/employees/:id", empHandler.UpdateHandler)
	a.Echo.DELETE("/employees/:id", empHandler.DeleteHandler)

	a.Echo.Static(a.Blobs.URLPrefix(), a.Blobs.Root())
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.InfoLog(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	}
}

// Close releases the record store connections.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.DatastoreClient != nil {
		a.DatastoreClient.Close()
	}
}
