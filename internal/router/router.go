package router

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/anonto42/cinefeed/backend/internal/handlers"
	"github.com/anonto42/cinefeed/backend/internal/logging"
	"github.com/anonto42/cinefeed/backend/internal/middleware"
	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/anonto42/cinefeed/backend/internal/realtime"
	"github.com/anonto42/cinefeed/backend/internal/repositories"
	"github.com/anonto42/cinefeed/backend/internal/services"
	"github.com/anonto42/cinefeed/backend/pkg/config"
)

// Deps are the connections and settings the routes are built from
type Deps struct {
	Config   *config.Config
	Postgres *gorm.DB
	Mongo    *mongo.Database
	Redis    *redis.Client            // optional, enables cross-instance push
	Firebase middleware.TokenVerifier // optional, replaces JWT auth
}

// App exposes the long-running parts main must start and stop
type App struct {
	Hub         *realtime.Hub
	Dispatcher  *services.NotificationDispatcher
	RedisRouter *realtime.RedisRouter // nil without Redis
}

// Migrate creates or updates the relational schema
func Migrate(pgdb *gorm.DB) error {
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("auto migrating models: %w", err)
	}
	logging.Info().Msg("PostgreSQL auto-migrations completed")
	return nil
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) *App {
	cfg := deps.Config

	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(deps.Postgres)
	likeRepo := repositories.NewPostgresLikeRepository(deps.Postgres)
	commentRepo := repositories.NewPostgresCommentRepository(deps.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.Postgres)
	movieRepo := repositories.NewMongoMovieRepository(deps.Mongo)
	reviewRepo := repositories.NewMongoReviewRepository(deps.Mongo)
	listRepo := repositories.NewMongoListRepository(deps.Mongo)
	watchedRepo := repositories.NewMongoWatchedRepository(deps.Mongo)

	// --- Realtime delivery ---
	app := &App{Hub: realtime.NewHub()}
	var push services.RealtimeRouter = app.Hub
	if deps.Redis != nil {
		app.RedisRouter = realtime.NewRedisRouter(deps.Redis, app.Hub)
		push = app.RedisRouter
		logging.Info().Msg("realtime push fans out through Redis")
	}

	// --- Services ---
	app.Dispatcher = services.NewNotificationDispatcher(notificationRepo, push)
	notifier := services.NewNotifier(
		services.NewNotificationFactory(),
		app.Dispatcher,
		services.NewMentionResolver(userRepo),
	)
	feed := services.NewFeedService(
		services.NewSocialGraph(followRepo),
		userRepo,
		services.FeedConfig{
			Limit:         cfg.Feed.Limit,
			SourceLimit:   cfg.Feed.SourceLimit,
			Lookback:      cfg.Feed.Lookback,
			SourceTimeout: cfg.Feed.SourceTimeout,
		},
		services.NewReviewSource(reviewRepo),
		services.NewListSource(listRepo),
		services.NewWatchedSource(watchedRepo, movieRepo, userRepo),
	)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	if deps.Firebase != nil {
		api.Use(middleware.FirebaseAuthMiddleware(deps.Firebase, userRepo))
		logging.Info().Msg("Firebase authentication applied to /api/v1")
	} else {
		api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
		logging.Info().Msg("JWT authentication applied to /api/v1")
	}

	handlers.NewUserHandler(userRepo, followRepo).RegisterProfileRoutes(api)
	handlers.NewFeedHandler(feed).RegisterFeedRoutes(api)
	handlers.NewFollowHandler(followRepo, userRepo, notifier).RegisterFollowRoutes(api)
	handlers.NewLikeHandler(likeRepo, userRepo, reviewRepo, listRepo, notifier).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(commentRepo, userRepo, reviewRepo, listRepo, notifier).RegisterCommentRoutes(api)
	handlers.NewNotificationHandler(notificationRepo, userRepo, cfg.NotificationPage).RegisterNotificationRoutes(api)
	handlers.NewContentHandler(movieRepo, reviewRepo, listRepo, watchedRepo, cfg.ReviewAutoApprove).RegisterContentRoutes(api)

	api.GET("/ws", realtime.NewHandler(app.Hub, cfg.AllowedOrigins).Serve)

	logging.Info().Msg("All routes configured")
	return app
}
