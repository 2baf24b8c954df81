package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/cinemate/reelrank/internal/catalog"
	"github.com/cinemate/reelrank/internal/config"
	"github.com/cinemate/reelrank/internal/database"
	"github.com/cinemate/reelrank/internal/handlers"
	"github.com/cinemate/reelrank/internal/middleware"
	"github.com/cinemate/reelrank/internal/services"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	catalog  *catalog.Catalog
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	// Load the precomputed artifacts; a misaligned catalog/matrix pair
	// is fatal here rather than a wrong answer later.
	c, err := catalog.Load(&cfg.Catalog, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	app.catalog = c

	// Initialize database connections
	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	// Initialize services
	services, err := services.New(cfg, app.logger, db, c)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = services

	// Initialize handlers
	app.handlers = handlers.New(app.logger, c, services)

	// Setup router
	app.setupRouter()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	// Health check endpoints (no session required)
	router.GET("/health", a.handlers.Health.Check)
	router.GET("/health/detailed", a.handlers.Health.Check)

	// Prometheus metrics endpoint
	if a.config.Monitoring.Enabled {
		router.GET(a.config.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	// API routes
	api := router.Group("/api/v1")
	{
		// Every API call runs inside a session; the middleware mints
		// one when the caller has none.
		api.Use(middleware.Session(a.services.Session, a.logger))
		api.Use(middleware.RateLimit(a.services.RateLimit, a.logger))

		// Movie routes
		movies := api.Group("/movies")
		{
			movies.GET("", a.handlers.Movie.Search)
			movies.GET("/random", a.handlers.Movie.Random)
			movies.GET("/:id", a.handlers.Movie.Get)
			movies.GET("/:id/recommendations", a.handlers.Recommendation.GetForMovie)
		}

		// Title-based convenience endpoint
		api.GET("/recommendations", a.handlers.Recommendation.GetByTitle)

		// Trending strip
		api.GET("/trending", a.handlers.Trending.Get)

		// Session history
		session := api.Group("/session")
		{
			session.GET("/history", a.handlers.Session.GetHistory)
			session.POST("/history", a.handlers.Session.RecordView)
		}
	}

	a.router = router
}
