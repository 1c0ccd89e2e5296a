// Package main API 服务入口
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"bookforge-api/internal/application/export"
	"bookforge-api/internal/application/generate"
	"bookforge-api/internal/config"
	"bookforge-api/internal/domain/entity"
	"bookforge-api/internal/domain/repository"
	"bookforge-api/internal/infrastructure/image"
	"bookforge-api/internal/infrastructure/llm"
	"bookforge-api/internal/infrastructure/persistence/postgres"
	"bookforge-api/internal/infrastructure/persistence/redis"
	"bookforge-api/internal/interfaces/http/handler"
	"bookforge-api/internal/interfaces/http/middleware"
	"bookforge-api/internal/interfaces/http/router"
	"bookforge-api/internal/workflow/prompt"
	"bookforge-api/pkg/logger"
	"bookforge-api/pkg/tracer"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting api-server",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	// 初始化追踪
	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// 初始化 Postgres
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to connect postgres", err)
	}
	defer pgClient.Close()

	if err := pgClient.Migrate(); err != nil {
		logger.Fatal(ctx, "failed to migrate database", err)
	}

	// 初始化 Redis（仅用于限流，不可用时降级为放行）
	var redisClient *redis.Client
	var rateLimiter middleware.RateLimiter
	if cfg.Security.RateLimit.Enabled {
		redisClient, err = redis.NewClient(&cfg.Cache.Redis)
		if err != nil {
			logger.Warn(ctx, "redis unavailable, rate limiting disabled", "error", err)
		} else {
			defer redisClient.Close()
			rateLimiter = redis.NewRateLimiter(redisClient)
		}
	}

	// 仓储与事务
	bookRepo := postgres.NewBookRepository(pgClient)
	chapterRepo := postgres.NewChapterRepository(pgClient)
	txManager := postgres.NewTxManager(pgClient)

	// LLM 与图像生成
	llmFactory := llm.NewFactory(cfg)
	textFactory := generate.TextGeneratorFactory(func(ctx context.Context, provider string) (generate.TextGenerator, error) {
		return llmFactory.Get(ctx, provider)
	})
	imageClient := image.NewClient(cfg.Image)
	promptRegistry := prompt.NewRegistry()

	// 应用服务
	orchestrator := generate.NewOrchestrator(
		bookRepo,
		chapterRepo,
		txManager,
		textFactory,
		imageClient,
		promptRegistry,
		cfg.Features,
	)
	exportService := export.NewService(bookRepo, chapterRepo)

	// 种子数据
	if cfg.App.Env != "production" && cfg.Features.SeedData {
		if err := seedBooks(ctx, bookRepo); err != nil {
			logger.Warn(ctx, "failed to seed database", "error", err)
		}
	}

	// 路由
	r := router.New(cfg, router.Handlers{
		Health:   handler.NewHealthHandler(pgClient, redisClient),
		Book:     handler.NewBookHandler(bookRepo),
		Chapter:  handler.NewChapterHandler(bookRepo, chapterRepo, orchestrator),
		Generate: handler.NewGenerateHandler(orchestrator),
		Export:   handler.NewExportHandler(exportService),
	}, rateLimiter)

	// HTTP 服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	// 独立的指标监听端口（与主端口相同时走主引擎的 /metrics）
	var metricsSrv *http.Server
	if cfg.Observability.Metrics.Enabled && cfg.Observability.Metrics.Port != cfg.Server.HTTP.Port {
		mux := http.NewServeMux()
		mux.Handle(cfg.Observability.Metrics.Path, promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Observability.Metrics.Port),
			Handler: mux,
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if metricsSrv != nil {
		g.Go(func() error {
			log.Info("metrics server starting", "addr", metricsSrv.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-quit:
			log.Info("shutting down server...")
		case <-gctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server forced to shutdown", "error", err)
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				log.Error("metrics server forced to shutdown", "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal(ctx, "server error", err)
	}
	log.Info("server exited")
}

// seedBooks 数据库为空时写入示例书籍
func seedBooks(ctx context.Context, bookRepo repository.BookRepository) error {
	books, err := bookRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(books) > 0 {
		return nil
	}

	logger.Info(ctx, "seeding database")
	return bookRepo.Create(ctx, &entity.Book{
		Title:           "The Silent Echo",
		Subtitle:        "A Mystery in the Mountains",
		AuthorName:      "Eleanor Vance",
		Language:        "English",
		Category:        "Mystery, Thriller & Suspense",
		TargetAudience:  "Adult",
		ToneStyle:       "Suspenseful, Atmospheric",
		POV:             "Third Person Limited",
		MinWordCount:    60000,
		TargetChapters:  12,
		WordsPerChapter: 5000,
		Outline:         "A woman returns to her hometown to uncover the truth about her sister's disappearance, only to find that the town itself is hiding a dark secret.",
		IsKdpCompliant:  true,
	})
}
