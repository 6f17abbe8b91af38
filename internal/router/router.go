package router

import (
	"github.com/discussion-system/discussion-system/internal/config"
	"github.com/discussion-system/discussion-system/internal/handlers"
	"github.com/discussion-system/discussion-system/internal/middleware"
	"github.com/discussion-system/discussion-system/internal/repository"
	"github.com/discussion-system/discussion-system/internal/services"
	"github.com/discussion-system/discussion-system/pkg/cache"
	"github.com/discussion-system/discussion-system/pkg/logger"
	"github.com/discussion-system/discussion-system/pkg/metrics"
	"github.com/discussion-system/discussion-system/pkg/password"
	"github.com/discussion-system/discussion-system/pkg/queue"
	"github.com/discussion-system/discussion-system/pkg/token"
	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Config    *config.Config
	DB        *repository.Database
	Redis     *cache.RedisClient // nil when redis is disabled
	Publisher queue.Publisher
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

// New wires repositories, services and handlers into a gin engine.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	userRepo := repository.NewUserRepository(deps.DB.DB)
	followRepo := repository.NewFollowRepository(deps.DB.DB)
	discussionRepo := repository.NewDiscussionRepository(deps.DB.DB)
	hashtagRepo := repository.NewHashtagRepository(deps.DB.DB)
	commentRepo := repository.NewCommentRepository(deps.DB.DB)
	likeRepo := repository.NewLikeRepository(deps.DB.DB)

	var guard services.LoginGuard = services.NopLoginGuard{}
	if deps.Redis != nil {
		guard = services.NewRedisLoginGuard(deps.Redis, cfg.Security.MaxLoginAttempts, cfg.Security.LoginWindow)
	}

	hasher := password.NewHasher(cfg.Security.BcryptCost)
	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.ExpireTime)

	userService := services.NewUserService(deps.DB, userRepo, followRepo, likeRepo, hasher, tokens, guard, deps.Publisher, deps.Logger)
	discussionService := services.NewDiscussionService(deps.DB, discussionRepo, hashtagRepo, commentRepo, likeRepo, deps.Publisher, deps.Logger)
	commentService := services.NewCommentService(deps.DB, discussionRepo, commentRepo, deps.Publisher, deps.Logger)
	likeService := services.NewLikeService(deps.DB, discussionRepo, commentRepo, likeRepo, deps.Publisher, deps.Logger)

	userHandler := handlers.NewUserHandler(userService, deps.Metrics, deps.Logger)
	discussionHandler := handlers.NewDiscussionHandler(discussionService, commentService, likeService, deps.Metrics, deps.Logger)
	commentHandler := handlers.NewCommentHandler(commentService, likeService, deps.Metrics, deps.Logger)

	router := gin.New()
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(gin.Recovery())
	router.Use(deps.Metrics.Middleware())
	router.Use(middleware.CORS())

	checks := map[string]handlers.Pinger{"database": deps.DB}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	router.GET("/health", handlers.Health(checks))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	auth := middleware.RequireAuth(userService)
	userHandler.RegisterRoutes(router, auth)
	discussionHandler.RegisterRoutes(router, auth)
	commentHandler.RegisterRoutes(router, auth)

	return router
}
