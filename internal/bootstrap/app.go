package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/quotes_service/internal/config"
	"github.com/locvowork/quotes_service/internal/database"
	"github.com/locvowork/quotes_service/internal/domain"
	"github.com/locvowork/quotes_service/internal/handler"
	"github.com/locvowork/quotes_service/internal/logger"
	"github.com/locvowork/quotes_service/internal/repository"
	"github.com/locvowork/quotes_service/internal/service"
	"github.com/locvowork/quotes_service/internal/service/serviceutils"
	"github.com/locvowork/quotes_service/pkg/quotexlsx"
)

type App struct {
	Echo *echo.Echo
	DB   *sql.DB
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
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

	// The database is optional: without it quotes get the placeholder number
	// and no conditions.
	var (
		sequences  domain.SequenceRepository
		conditions domain.ConditionRepository
	)
	if !cfg.QUOTES_DISABLE_DB {
		db, err := OpenDatabase(ctx)
		if err != nil {
			logger.ErrorLog(ctx, "Database unavailable, continuing without numbering store", err)
		} else {
			a.DB = db
			sequences = repository.NewSequenceRepository(db)
			conditions = repository.NewConditionRepository(db)
		}
	}

	// Initialize dependencies
	layouts, err := quotexlsx.NewLayoutSet(cfg.LAYOUTS_DIR)
	if err != nil {
		return fmt.Errorf("failed to load layouts: %w", err)
	}
	exporter := quotexlsx.NewExporter(
		quotexlsx.NewTemplateSet(cfg.TEMPLATES_DIRS...),
		layouts,
		quotexlsx.WithAnchorMaxRow(cfg.ANCHOR_MAX_ROW),
	)
	quoteSvc := service.NewQuoteService(exporter, sequences, conditions, service.Config{
		OutputDir: cfg.QUOTES_OUTPUT_DIR,
	})
	quoteHandler := handler.NewQuoteHandler(quoteSvc)

	// Register Middlewares
	a.RegisterMiddlewares(cfg.QUOTES_CORS_ORIGINS)

	// Register Routes
	a.RegisterRoutes(quoteHandler)

	logger.InfoLog(ctx, "Templates available: %v", quoteSvc.Templates())
	return nil
}

// OpenDatabase connects to PostgreSQL with the loaded environment config and
// makes sure the schema exists.
func OpenDatabase(ctx context.Context) (*sql.DB, error) {
	cfg := config.DefaultEnvConfig
	dbConfig := database.Config{
		URL:             cfg.QUOTES_DATABASE_URL,
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
	if err := database.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (a *App) RegisterMiddlewares(origins []string) {
	a.Echo.Validator = serviceutils.NewCustomValidator()
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  origins,
		ExposeHeaders: []string{"Content-Disposition", "X-Quote-Number"},
	}))
}

func (a *App) RegisterRoutes(quoteHandler *handler.QuoteHandler) {
	a.Echo.GET("/", quoteHandler.HealthHandler)
	a.Echo.GET("/health", quoteHandler.HealthHandler)

	a.Echo.POST("/export", quoteHandler.ExportHandler)
	a.Echo.POST("/export/xlsx", quoteHandler.ExportHandler)

	a.Echo.POST("/quote/next-number", quoteHandler.NextNumberHandler)
}

func (a *App) Run() error {
	if a.DB != nil {
		defer a.DB.Close()
	}
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}
