// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookforge-api/internal/config"
	"bookforge-api/internal/interfaces/http/handler"
	"bookforge-api/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Health   *handler.HealthHandler
	Book     *handler.BookHandler
	Chapter  *handler.ChapterHandler
	Generate *handler.GenerateHandler
	Export   *handler.ExportHandler
}

// Router HTTP 路由器
type Router struct {
	engine      *gin.Engine
	cfg         *config.Config
	handlers    Handlers
	rateLimiter middleware.RateLimiter
}

// New 创建新的路由器
func New(cfg *config.Config, handlers Handlers, rateLimiter middleware.RateLimiter) *Router {
	// 设置 Gin 模式
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:      engine,
		cfg:         cfg,
		handlers:    handlers,
		rateLimiter: rateLimiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	// 基础中间件
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	// CORS 中间件
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	// 追踪中间件
	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	// 指标中间件
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	// 限流中间件
	r.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: r.cfg.Security.RateLimit.RequestsPerSecond,
	}, r.rateLimiter))
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 系统端点
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	api := r.engine.Group("/api")
	{
		// 书籍管理
		books := api.Group("/books")
		{
			books.GET("", r.handlers.Book.List)
			books.POST("", r.handlers.Book.Create)
			books.GET("/:id", r.handlers.Book.Get)
			books.PUT("/:id", r.handlers.Book.Update)
			books.PATCH("/:id", r.handlers.Book.Update)
			books.DELETE("/:id", r.handlers.Book.Delete)

			// 书籍下的章节
			books.GET("/:id/chapters", r.handlers.Chapter.ListByBook)

			// 章节骨架重建
			books.POST("/:id/rearchitect", r.handlers.Generate.Rearchitect)

			// 导出
			books.GET("/:id/export-pdf", r.handlers.Export.PDF)
			books.GET("/:id/export-project", r.handlers.Export.Project)
		}

		// 章节管理
		chapters := api.Group("/chapters")
		{
			chapters.POST("", r.handlers.Chapter.Create)
			chapters.GET("/:id", r.handlers.Chapter.Get)
			chapters.PUT("/:id", r.handlers.Chapter.Update)
			chapters.PATCH("/:id", r.handlers.Chapter.Update)
			chapters.DELETE("/:id", r.handlers.Chapter.Delete)
		}

		// AI 生成
		ai := api.Group("/ai")
		{
			ai.POST("/generate-outline", r.handlers.Generate.Outline)
			ai.POST("/generate-chapter", r.handlers.Generate.Chapter)
			ai.POST("/generate-chapter-image", r.handlers.Generate.ChapterImage)
			ai.POST("/generate-cover", r.handlers.Generate.Cover)
			ai.POST("/generate-keywords", r.handlers.Generate.Keywords)
		}
	}
}
