package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"coinhub/docs"
	"coinhub/internal/auth"
	"coinhub/internal/cache"
	"coinhub/internal/config"
	"coinhub/internal/db"
	"coinhub/internal/handler"
	"coinhub/internal/logging"
	"coinhub/internal/metrics"
	"coinhub/internal/repository"
	"coinhub/internal/router"
	"coinhub/internal/service"
)

const serviceName = "coinhub"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// @title CoinHub API
// @version 1.0
// @description Personal finance API with accounts, categories, transactions and JWT authentication.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           serviceName,
		Short:         "CoinHub personal finance API server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				fmt.Fprintln(os.Stderr, "config:", err)
				return err
			}
			if err := cfg.Validate(); err != nil {
				fmt.Fprintln(os.Stderr, "config:", err)
				return err
			}
			logging.SetDefault(serviceName, version, cfg.LogFormat, cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, cfg); err != nil {
				slog.Error("server stopped", "error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	config.BindFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			slog.Warn("database close failed", "error", err)
		}
	}()

	if cfg.ResetDB {
		slog.Warn("reset_db enabled, dropping all tables")
		db.Reset(gormDB)
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		slog.Warn("redis unreachable, continuing without cache hits", "addr", cfg.RedisAddr, "error", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}
	m := metrics.New()

	userRepo := repository.NewUserRepository(gormDB)
	accountRepo := repository.NewAccountRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	transactionRepo := repository.NewTransactionRepository(gormDB)

	authOpts := []service.AuthOption{service.WithAuthObserver(m.ObserveAuth)}
	if !cfg.SeedCategories {
		authOpts = append(authOpts, service.WithoutDefaultCategories())
	}
	authService := service.NewAuthService(userRepo, tokens, authOpts...)
	userService := service.NewUserService(userRepo, cacheClient)
	accountService := service.NewAccountService(accountRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	transactionService := service.NewTransactionService(transactionRepo, accountRepo, categoryRepo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, cfg, m, tokens, router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		User:        handler.NewUserHandler(userService),
		Account:     handler.NewAccountHandler(accountService),
		Category:    handler.NewCategoryHandler(categoryService),
		Transaction: handler.NewTransactionHandler(transactionService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}
	slog.Info("swagger documentation available", "url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html")

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		slog.Info("server listening", "addr", addr, "environment", cfg.Environment)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
