package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TomasB/geoip/internal/config"
	"github.com/TomasB/geoip/internal/data"
	grpchandler "github.com/TomasB/geoip/internal/handler/grpc"
	"github.com/TomasB/geoip/internal/handler/health"
	"github.com/TomasB/geoip/internal/handler/lookup"
	"github.com/TomasB/geoip/pkg/geoip"
	geoipv1 "github.com/TomasB/geoip/pkg/geoip/v1"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("service starting", "log_level", cfg.LogLevel.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load the geo database
	src := data.Source{Path: cfg.MMDBPath, Bucket: cfg.S3Bucket, Key: cfg.S3Key}
	var client geoip.ObjectGetter
	if src.IsS3() {
		s3Client, err := data.NewS3Client(ctx)
		if err != nil {
			slog.Error("failed to create S3 client", "error", err)
			os.Exit(1)
		}
		client = s3Client
	}

	resolver, err := data.Load(ctx, src, client)
	if err != nil {
		slog.Error("failed to load MMDB", "source", src.String(), "error", err)
		os.Exit(1)
	}

	store := data.NewStore()
	store.Swap(resolver)

	info := resolver.Info()
	slog.Info("MMDB loaded", "source", src.String(), "type", info.Type, "build_time", info.BuildTime)

	if cfg.Watch {
		watcher, err := data.NewWatcher(cfg.MMDBPath, store)
		if err != nil {
			slog.Error("failed to watch MMDB", "path", cfg.MMDBPath, "error", err)
			os.Exit(1)
		}
		defer watcher.Close()
		go watcher.Run(ctx)
		slog.Info("watching MMDB for changes", "path", cfg.MMDBPath)
	}

	// Set Gin mode based on log level
	if cfg.LogLevel == slog.LevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(ginLogger(logger))
	router.Use(gin.Recovery())

	// Register health endpoints
	healthHandler := health.NewHandler(store.Ready, store.Info)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Register API endpoints
	lookupHandler := lookup.NewHandler(store)
	api := router.Group("/api/v1")
	{
		api.GET("/lookup/:ip", lookupHandler.Lookup)
		api.POST("/lookup", lookupHandler.Batch)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("http server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	var grpcSrv *grpc.Server
	if cfg.GRPCEnabled() {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			slog.Error("failed to listen for gRPC", "port", cfg.GRPCPort, "error", err)
			os.Exit(1)
		}
		grpcSrv = grpc.NewServer()
		geoipv1.RegisterGeoIPServiceServer(grpcSrv, grpchandler.NewHandler(store))

		go func() {
			slog.Info("grpc server started", "port", cfg.GRPCPort)
			if err := grpcSrv.Serve(lis); err != nil {
				slog.Error("grpc server failed", "error", err)
				os.Exit(1)
			}
		}()
	}

	// Wait for interrupt signal for graceful shutdown
	<-ctx.Done()

	slog.Info("service shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if grpcSrv != nil {
		stopped := make(chan struct{})
		go func() {
			grpcSrv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			slog.Warn("grpc server forced to stop")
			grpcSrv.Stop()
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("service stopped")
}

// ginLogger creates a Gin middleware that logs using slog
func ginLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		attrs := []any{
			"method", method,
			"path", path,
			"status", statusCode,
			"duration_ms", duration.Milliseconds(),
		}

		if len(c.Errors) > 0 {
			logger.Error("request completed with errors", append(attrs, "errors", c.Errors.String())...)
		} else if statusCode >= 500 {
			logger.Error("request completed", attrs...)
		} else if statusCode >= 400 {
			logger.Warn("request completed", attrs...)
		} else {
			logger.Info("request completed", attrs...)
		}
	}
}
