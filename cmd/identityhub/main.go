package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/identityhub/identityhub/internal/config"
	httpserver "github.com/identityhub/identityhub/internal/http"
	"github.com/identityhub/identityhub/pkg/auth"
	"github.com/identityhub/identityhub/pkg/repository"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Apply schema migrations
	if err := repository.Migrate(context.Background(), db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	usersRepo := repository.NewUsersRepository(db)
	workspacesRepo := repository.NewWorkspacesRepository(db)
	membershipsRepo := repository.NewMembershipsRepository(db)
	contactsRepo := repository.NewContactsRepository(db)
	tagsRepo := repository.NewTagsRepository(db)

	// Initialize services. Token misconfiguration is fatal here,
	// never handled per-request.
	tokenService, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:    []byte(cfg.AccessTokenSecret),
		RefreshSecret:   []byte(cfg.RefreshTokenSecret),
		Issuer:          cfg.TokenIssuer,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	})
	if err != nil {
		logger.Error("failed to initialize token service", "error", err)
		os.Exit(1)
	}
	authService := auth.NewService(usersRepo, membershipsRepo)

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:             logger,
		DB:                 db,
		AuthService:        authService,
		TokenService:       tokenService,
		UsersRepo:          usersRepo,
		WorkspacesRepo:     workspacesRepo,
		MembershipsRepo:    membershipsRepo,
		ContactsRepo:       contactsRepo,
		TagsRepo:           tagsRepo,
		AllowedOrigins:     cfg.AllowedOrigins,
		CookieSecure:       cfg.CookieSecure,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		RateLimitConfig:    cfg.RateLimit,
		SecurityHeaders:    cfg.SecurityHeaders,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
