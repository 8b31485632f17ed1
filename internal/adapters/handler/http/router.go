package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-tracker/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/services"
)

const (
	rateLimit       = 100
	rateLimitWindow = 1 * time.Minute
)

type RouterDependencies struct {
	AuthHandler      *AuthHandler
	HabitHandler     *HabitHandler
	EntryHandler     *EntryHandler
	StatsHandler     *StatsHandler
	DataHandler      *DataHandler
	InstagramHandler *InstagramHandler
	NoteHandler      *NoteHandler
	SyncHandler      *SyncHandler
	AuthService      *services.AuthService
	TokenService     *services.TokenService
	SyncStore        *services.SyncStore
	DB               *sqlx.DB
	Redis            *redis.Client
	Logger           *zap.Logger
	StartTime        time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	if deps.Redis != nil {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, rateLimit, rateLimitWindow, deps.Logger))
	}

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "disabled"
		if deps.DB != nil {
			dbStatus = "connected"
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				dbStatus = "unreachable"
			}
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if err := deps.Redis.Ping(c.Request.Context()).Err(); err != nil {
				redisStatus = "unreachable"
			}
		}

		statusCode := 200
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = 503
		}

		body := gin.H{
			"status":   "ok",
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		}
		if deps.SyncStore != nil {
			body["sync"] = deps.SyncStore.Status().State
		}
		c.JSON(statusCode, body)
	})

	apiV1 := router.Group("/api/v1")

	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(apiV1)
	}

	protected := apiV1.Group("")
	if deps.AuthService != nil && deps.AuthService.Enabled() {
		protected.Use(middleware.AuthMiddleware(deps.TokenService))
	}
	{
		register(protected, deps.HabitHandler)
		register(protected, deps.EntryHandler)
		register(protected, deps.StatsHandler)
		register(protected, deps.DataHandler)
		register(protected, deps.InstagramHandler)
		register(protected, deps.NoteHandler)
		register(protected, deps.SyncHandler)
	}

	return router
}

type routeRegistrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

func register[H routeRegistrar](group *gin.RouterGroup, h H) {
	var zero H
	if any(h) == any(zero) {
		return
	}
	h.RegisterRoutes(group)
}
