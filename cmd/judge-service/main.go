package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"judgecore/internal/config"
	"judgecore/internal/judge/cache"
	"judgecore/internal/judge/controller"
	"judgecore/internal/judge/observer"
	"judgecore/internal/judge/runner"
	"judgecore/internal/judge/service"
	"judgecore/internal/judge/toolchain"
	"judgecore/internal/judge/workspace"
	"judgecore/pkg/utils/logger"
)

const (
	defaultConfigPath      = "configs/judge_service.yaml"
	defaultShutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "judge-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load app config: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:      appCfg.Logger.Level,
		Format:     appCfg.Logger.Format,
		OutputPath: appCfg.Logger.OutputPath,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	workspaces, err := workspace.NewManager(appCfg.Judge.WorkRoot)
	if err != nil {
		return fmt.Errorf("init workspace manager: %w", err)
	}
	artifactCache, err := cache.NewArtifactCache(appCfg.Judge.CacheDir)
	if err != nil {
		return fmt.Errorf("init artifact cache: %w", err)
	}

	metrics := observer.NewPromMetricsRecorder(prometheus.DefaultRegisterer)
	judgeSvc, err := service.NewService(service.Config{
		Locator:        toolchain.NewLocator(),
		Workspaces:     workspaces,
		Runner:         runner.NewProcessRunner(appCfg.Judge.MaxOutputBytes),
		Cache:          artifactCache,
		Metrics:        metrics,
		CompileTimeout: appCfg.Judge.CompileTimeout,
		RunTimeout:     appCfg.Judge.RunTimeout,
		PoolSize:       appCfg.Judge.PoolSize,
		SkipWarmUp:     appCfg.Judge.SkipWarmUp,
	})
	if err != nil {
		return fmt.Errorf("init judge service: %w", err)
	}

	httpServer := buildHTTPServer(appCfg.Server, judgeSvc)

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "judge http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
	return serveErr
}

func buildHTTPServer(cfg config.ServerConfig, judgeSvc *service.Service) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(traceContext())
	router.Use(requestLogger())

	judgeController := controller.NewJudgeController(judgeSvc)
	api := router.Group("/api/v1/judge")
	api.POST("/submissions", judgeController.Submit)
	api.POST("/run", judgeController.RunOne)
	api.POST("/run-batch", judgeController.RunBatch)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// traceContext tags every request with a trace id picked up by the logger.
func traceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-Id")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set("trace_id", traceID)
		ctx := context.WithValue(c.Request.Context(), "trace_id", traceID) //nolint:staticcheck
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
