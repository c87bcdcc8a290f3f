package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/auric/recommender/internal/config"
	"github.com/auric/recommender/internal/database"
	"github.com/auric/recommender/internal/engine"
	"github.com/auric/recommender/internal/handlers"
	"github.com/auric/recommender/internal/middleware"
	"github.com/auric/recommender/internal/scheduler"
	"github.com/auric/recommender/internal/store"
)

type App struct {
	config    *config.Config
	logger    *logrus.Logger
	db        *database.Database
	engine    *engine.Engine
	scheduler *scheduler.RetrainScheduler
	handlers  *handlers.Handlers
	router    *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	catalogStore := store.NewPostgresCatalogStore(db.PG, app.logger)
	ratingStore := store.NewPostgresRatingStore(db.PG, app.logger)
	orderStore := store.NewPostgresOrderStore(db.PG, app.logger)

	metrics := engine.NewMetrics(prometheus.DefaultRegisterer)
	app.engine = engine.New(
		catalogStore, ratingStore, orderStore,
		db.Redis, &cfg.Engine, metrics, app.logger,
	)

	// Initial fit. A failure here is not fatal: the engine stays unfitted
	// and queries answer empty until a retrain succeeds.
	if err := app.engine.Retrain(context.Background()); err != nil {
		app.logger.WithError(err).Error("Initial model fit failed")
	}

	app.scheduler = scheduler.NewRetrainScheduler(app.engine, app.logger)
	if err := app.scheduler.Start(cfg.Engine.RetrainSchedule); err != nil {
		return nil, fmt.Errorf("failed to start retrain scheduler: %w", err)
	}

	app.handlers = handlers.New(app.logger, app.engine)
	app.setupRouter()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	a.scheduler.Stop()

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

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS())

	router.GET("/health", a.handlers.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	recommendations := router.Group("/recommendations")
	{
		recommendations.GET("/product/:sku", a.handlers.Recommendation.GetSimilar)
		recommendations.GET("/personalized/:userId", a.handlers.Recommendation.GetPersonalized)
		recommendations.GET("/trending", a.handlers.Recommendation.GetTrending)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/retrain", a.handlers.Admin.Retrain)
	}

	a.router = router
}
