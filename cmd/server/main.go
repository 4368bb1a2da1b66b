package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"userauth/docs" // swagger docs
	"userauth/internal/auth"
	"userauth/internal/cache"
	"userauth/internal/config"
	"userauth/internal/db"
	"userauth/internal/handler"
	"userauth/internal/logging"
	"userauth/internal/media"
	"userauth/internal/repository"
	"userauth/internal/router"
	"userauth/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title User Accounts API
// @version 1.0
// @description User registration, login, logout and rotating refresh tokens.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}
	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping users table")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
	}

	uploader, err := media.NewS3Uploader(ctx, media.S3Config{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		Bucket:        cfg.S3Bucket,
		AccessKeyID:   cfg.S3AccessKeyID,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
		UsePathStyle:  cfg.S3UsePathStyle,
	})
	if err != nil {
		logger.Fatal("media uploader init", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.AccessTokenSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenSecret, cfg.RefreshTokenExpiry)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, uploader, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, cacheClient)

	e := echo.New()
	e.HideBanner = true
	router.Register(
		e,
		cfg,
		jwtService,
		tokenStore,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
	)

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
		docs.SwaggerInfo.Host = host
	}
	logger.Info("swagger documentation available", zap.String("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server starting", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
