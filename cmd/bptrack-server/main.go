package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bptrack/bptrack/internal/config"
	"github.com/bptrack/bptrack/internal/domain/chat"
	"github.com/bptrack/bptrack/internal/domain/reminder"
	"github.com/bptrack/bptrack/internal/platform/auth"
	"github.com/bptrack/bptrack/internal/platform/db"
	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/middleware"
	"github.com/bptrack/bptrack/internal/platform/websocket"
	"github.com/bptrack/bptrack/migrations"
)

// tokenIssuer is the iss claim of API bearer tokens.
const tokenIssuer = "bptrack"

func main() {
	rootCmd := &cobra.Command{
		Use:   "bptrack-server",
		Short: "Blood pressure tracking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(remindersCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openMigrator(ctx context.Context, cfg *config.Config) (*db.Migrator, func(), error) {
	pool, err := db.NewPool(ctx, db.PoolConfig{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(pool, migrations.Files), pool.Close, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			migrator, closePool, err := openMigrator(ctx, cfg)
			if err != nil {
				return err
			}
			defer closePool()

			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			migrator, closePool, err := openMigrator(ctx, cfg)
			if err != nil {
				return err
			}
			defer closePool()

			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

func remindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Medication reminder jobs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dispatch",
		Short: "Send every reminder due now and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Env)

			ctx := context.Background()
			pool, err := db.NewPool(ctx, db.PoolConfig{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
			if err != nil {
				return err
			}
			defer pool.Close()

			a, err := buildApp(ctx, cfg, pool, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.reminders.Dispatch(ctx)
			if err != nil {
				return fmt.Errorf("dispatch failed: %w", err)
			}
			fmt.Println(formatStats(stats))
			return nil
		},
	})

	return cmd
}

func formatStats(s reminder.DispatchStats) string {
	return fmt.Sprintf("checked=%d due=%d sent=%d failed=%d skipped=%d", s.Checked, s.Due, s.Sent, s.Failed, s.Skipped)
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API bearer tokens",
	}

	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("user-id")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || userID <= 0 {
				return fmt.Errorf("--user-id must be a positive integer")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is required to issue tokens")
			}

			tok, err := auth.IssueToken([]byte(cfg.JWTSecret), tokenIssuer, userID, ttl)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	issueCmd.Flags().String("user-id", "", "User the token authenticates as")
	issueCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	cmd.AddCommand(issueCmd)

	return cmd
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.Env)

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, db.PoolConfig{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	a, err := buildApp(ctx, cfg, pool, logger)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	defer a.Close()

	e := newEcho(cfg, logger)

	e.GET("/health", func(c echo.Context) error {
		return envelope.OK(c, http.StatusOK, envelope.Map{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	api := e.Group("/api")
	for _, h := range a.handlers {
		h.RegisterRoutes(api)
	}
	websocket.NewWebSocketHandler(a.hub, cfg.CORSOrigins).RegisterRoutes(e.Group(""))

	var scheduler *reminder.Scheduler
	if cfg.RemindersEnabled {
		scheduler, err = reminder.NewScheduler(a.reminders, cfg.ReminderSchedule, cfg.Location(),
			logger.With().Str("component", "reminders").Logger())
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	// Graceful shutdown
	serveErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("auth_mode", cfg.ResolvedAuthMode()).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var runErr error
	select {
	case <-quit:
	case runErr = <-serveErr:
		logger.Error().Err(runErr).Msg("server error")
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	a.hub.CloseAll()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return runErr
}

// newEcho builds the server with the global middleware chain.
func newEcho(cfg *config.Config, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = envelope.HTTPErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.RateLimit(rateLimitConfig(cfg)))
	e.Use(middleware.BodyLimit(cfg.BodyLimit, cfg.UploadBodyLimit, middleware.UploadRoute("/api/food-analysis")))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout, "/ws", chat.StreamPath))

	if cfg.ResolvedAuthMode() == "development" {
		logger.Warn().Msg("development auth mode: requests are not authenticated")
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			SigningKey: []byte(cfg.JWTSecret),
			Issuer:     tokenIssuer,
			Skipper:    auth.AuthSkipper,
		}))
	}
	return e
}

func rateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rl := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rl.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rl.BurstSize = cfg.RateLimitBurst
	}
	return rl
}
