package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"site-assistant/internal/config"
	apihttp "site-assistant/internal/http"
	"site-assistant/internal/llm"
	"site-assistant/internal/metrics"
	"site-assistant/internal/service"
	"site-assistant/internal/sitemap"
	"site-assistant/internal/tools"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	tree, err := sitemap.Load(cfg.SitemapPath)
	if err != nil {
		logger.Fatal("load sitemap", zap.String("path", cfg.SitemapPath), zap.Error(err))
	}
	index := sitemap.NewIndex(tree)
	resolver, err := sitemap.NewCachedResolver(sitemap.NewResolver(index), cfg.ResolverCacheSize)
	if err != nil {
		logger.Fatal("resolver cache", zap.Error(err))
	}
	logger.Info("sitemap loaded", zap.Int("entries", index.Len()))

	listTool := tools.NewListSitemapTool(index)
	navigateTool := tools.NewNavigateTool(index, resolver)
	registry := tools.NewRegistry(listTool, navigateTool)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout(), logger)
	promptBuilder := service.AssistantPromptBuilder{SiteName: cfg.SiteName}
	assistantSvc := service.NewAssistantService(llmClient, registry, promptBuilder, m, logger, cfg.LLMMaxToolRounds).
		WithHistoryLimit(cfg.LLMMaxHistory)

	var limiter service.ChatRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, chat rate limit disabled", zap.Error(err))
		} else {
			limiter = service.NewRedisChatRateLimiter(redisClient, cfg.ChatRateLimitWindow(), cfg.ChatRateLimitMax)
		}
		cancel()
	}

	chatHandler := apihttp.NewChatHandler(logger, assistantSvc)
	sitemapHandler := apihttp.NewSitemapHandler(logger, listTool, navigateTool)
	router := apihttp.NewRouter(logger, chatHandler, sitemapHandler, limiter, reg)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
