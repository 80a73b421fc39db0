package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionsurface/internal/pricing/application"
	"github.com/wyfcoding/optionsurface/internal/pricing/domain"
	"github.com/wyfcoding/optionsurface/internal/pricing/infrastructure/messaging"
	httphandler "github.com/wyfcoding/optionsurface/internal/pricing/interfaces/http"
	"github.com/wyfcoding/optionsurface/pkg/cache"
	"github.com/wyfcoding/optionsurface/pkg/config"
	"github.com/wyfcoding/optionsurface/pkg/logger"
	"github.com/wyfcoding/optionsurface/pkg/metrics"
	"github.com/wyfcoding/optionsurface/pkg/middleware"
	"github.com/wyfcoding/optionsurface/pkg/mq"
	"github.com/wyfcoding/optionsurface/pkg/ratelimit"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", config.GetEnv("PRICING_CONFIG", "configs/pricing/config.toml"), "config file path")

func main() {
	flag.Parse()

	// 1. 配置
	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 日志
	if err := logger.Init(cfg.Logger); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	slog.Info("starting service", "service", cfg.ServiceName, "version", cfg.Version, "env", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 指标
	var metricsImpl *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsImpl = metrics.New(cfg.Metrics.Namespace, cfg.ServiceName)
		if err := metricsImpl.Register(nil); err != nil {
			logger.Fatal(ctx, "failed to register metrics", "error", err)
		}
	}

	// 4. 限流：Redis 可用时使用分布式限流，否则退化为进程内令牌桶
	var limiter ratelimit.RateLimiter = ratelimit.NewLocalRateLimiter()
	var redisClient *cache.RedisClient
	if cfg.Redis.Enabled {
		redisClient, err = cache.New(ctx, cfg.Redis)
		if err != nil {
			slog.Error("failed to init redis, falling back to local rate limiter", "error", err)
		} else {
			limiter = ratelimit.NewRedisRateLimiter(redisClient.GetClient())
		}
	}

	// 5. Kafka 事件
	opts := []application.Option{
		application.WithSurfaceSpec(domain.SurfaceSpec{
			SpotPoints: cfg.Pricing.SpotPoints,
			VolPoints:  cfg.Pricing.VolPoints,
			LowFactor:  cfg.Pricing.LowFactor,
			HighFactor: cfg.Pricing.HighFactor,
		}),
		application.WithMaxPoints(cfg.Pricing.MaxPoints),
		application.WithParallelism(cfg.Pricing.ParallelWorkers),
	}
	if metricsImpl != nil {
		opts = append(opts, application.WithMetrics(metricsImpl))
	}
	var producer *mq.KafkaProducer
	if cfg.Kafka.Enabled {
		producer, err = mq.NewProducer(cfg.Kafka)
		if err != nil {
			logger.Fatal(ctx, "failed to init kafka producer", "error", err)
		}
		opts = append(opts, application.WithPublisher(messaging.NewKafkaEventPublisher(producer)))
	}

	// 6. 应用服务
	svc := application.NewPricingService(opts...)

	// 7. 接口层
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.GinRecoveryMiddleware(), middleware.GinLoggingMiddleware(), middleware.GinCORSMiddleware())
	if metricsImpl != nil {
		r.Use(middleware.GinMetricsMiddleware(metricsImpl))
		r.GET(cfg.Metrics.Path, gin.WrapH(metricsImpl.Handler()))
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})
	api := r.Group("/")
	api.Use(middleware.RateLimitMiddleware(limiter, cfg.RateLimit, metricsImpl))
	httphandler.NewPricingHandler(svc, cfg.Pricing).RegisterRoutes(api)

	// 8. 启动
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}

	// 9. 清理
	if producer != nil {
		if err := producer.Close(); err != nil {
			slog.Error("failed to close kafka producer", "error", err)
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	slog.Info("service stopped")
}
