package router

import (
	"stockswift/internal/config"
	"stockswift/internal/handler"
	"stockswift/internal/infra"
	"stockswift/internal/middleware"
	"stockswift/internal/repository"
	"stockswift/internal/service"
	"stockswift/internal/token"
	"stockswift/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← Connector
// rdb may be nil; the alert dispatcher is then left unwired.
func New(cfg *config.Config, db *infra.Connector, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	// ── Infrastructure ───────────────────────────────────────────────────────
	tokens := token.NewService(cfg)
	// Left as a nil interface when Redis is absent; a typed nil pointer here
	// would defeat the service's nil check.
	var dispatcher service.AlertDispatcher
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, tokens)
	itemSvc := service.NewItemService(itemRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc, tokens)
	itemsH := handler.NewItemsHandler(itemSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authH.Signup)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/logout", authH.Logout)
		auth.GET("/me", middleware.Auth(tokens), authH.Me)
	}

	// Item routes carry no auth — the stock dashboard reads them before login.
	items := r.Group("/items")
	{
		items.GET("", itemsH.List)
		items.POST("", itemsH.Create)
		items.PATCH("/:id", itemsH.Patch)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
