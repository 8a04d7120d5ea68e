package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eventra/server/internal/api"
	"github.com/eventra/server/internal/auth"
	"github.com/eventra/server/internal/config"
	"github.com/eventra/server/internal/domain/accounts"
	"github.com/eventra/server/internal/domain/events"
	"github.com/eventra/server/internal/email"
	"github.com/eventra/server/internal/jobs"
	"github.com/eventra/server/internal/metrics"
	"github.com/eventra/server/internal/storage/postgres"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Eventra HTTP server",
	Long: `Start the Eventra HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables
- Bootstrap a superuser if ADMIN_* env vars are set
- Start background workers for verification email delivery
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Msg("starting eventra server")

	metrics.Init(Version, GitCommit, BuildDate)

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := postgres.NewPool(poolCtx, cfg.Database)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	// Collect pool statistics every 15 seconds.
	dbCollector := metrics.NewDBCollector(pool)
	collectorCtx, collectorCancel := context.WithCancel(context.Background())
	go dbCollector.Start(collectorCtx, 15*time.Second)
	defer collectorCancel()
	defer dbCollector.Stop()

	repo := postgres.NewRepository(pool)
	tokens := auth.NewTokens(
		cfg.Auth.JWTSecret,
		cfg.Auth.Issuer,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
		cfg.Auth.VerificationExpiry,
	)

	emailService, err := email.NewService(cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("email service setup failed: %w", err)
	}

	workers, err := jobs.NewWorkers(emailService)
	if err != nil {
		return fmt.Errorf("job workers setup failed: %w", err)
	}
	riverClient, err := jobs.NewClient(pool, workers, nil)
	if err != nil {
		return fmt.Errorf("job client setup failed: %w", err)
	}
	dispatcher := jobs.NewDispatcher(riverClient)

	accountsService := accounts.NewService(repo.Users(), tokens, dispatcher, cfg.Server.BaseURL, logger)
	eventsService := events.NewService(repo.Events(), logger)

	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapSuperuser(bootstrapCtx, cfg, accountsService, logger); err != nil {
		logger.Error().Err(err).Msg("superuser bootstrap failed")
	}
	bootstrapCancel()

	// Start the verification email workers.
	riverCtx, riverCancel := context.WithCancel(context.Background())
	defer riverCancel()
	if err := riverClient.Start(riverCtx); err != nil {
		return fmt.Errorf("background workers failed to start: %w", err)
	}
	logger.Info().Msg("background job workers started")
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			logger.Error().Err(err).Msg("background workers shutdown error")
		}
	}()

	handler := api.NewRouter(api.Dependencies{
		Config:    cfg,
		Logger:    logger,
		Tokens:    tokens,
		Accounts:  accountsService,
		Events:    eventsService,
		Pool:      pool,
		Version:   Version,
		GitCommit: GitCommit,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, logger)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	// Override logging from flags if provided
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

// bootstrapSuperuser creates the configured admin account on startup if it
// does not already exist. Partial ADMIN_* configuration skips the bootstrap.
func bootstrapSuperuser(ctx context.Context, cfg config.Config, svc *accounts.Service, logger zerolog.Logger) error {
	bootstrap := cfg.AdminBootstrap
	if bootstrap.Username == "" || bootstrap.Password == "" || bootstrap.Email == "" || bootstrap.PhoneNumber == "" {
		logger.Warn().Msg("admin bootstrap env vars not fully set; skipping")
		return nil
	}

	_, err := svc.CreateSuperuser(ctx, accounts.SuperuserParams{
		RegisterInput: accounts.RegisterInput{
			FirstName:   bootstrap.FirstName,
			LastName:    bootstrap.LastName,
			Username:    bootstrap.Username,
			Email:       bootstrap.Email,
			Password:    bootstrap.Password,
			PhoneNumber: bootstrap.PhoneNumber,
			DateOfBirth: bootstrap.DateOfBirth,
		},
	})
	if err != nil {
		var vErr accounts.ValidationError
		if errors.As(err, &vErr) && strings.Contains(vErr.Message, "already in use") {
			logger.Info().Str("username", bootstrap.Username).Msg("superuser already exists")
			return nil
		}
		return err
	}

	// Redact email in production to avoid PII leaks
	if cfg.Environment == "production" {
		logger.Info().Str("username", bootstrap.Username).Msg("bootstrapped superuser")
	} else {
		logger.Info().Str("email", bootstrap.Email).Str("username", bootstrap.Username).Msg("bootstrapped superuser")
	}
	return nil
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
