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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/claimscrub/scrubber/internal/config"
	"github.com/claimscrub/scrubber/internal/domain/claim"
	"github.com/claimscrub/scrubber/internal/domain/reference"
	"github.com/claimscrub/scrubber/internal/domain/scrub"
	"github.com/claimscrub/scrubber/internal/platform/db"
	"github.com/claimscrub/scrubber/internal/platform/events"
	"github.com/claimscrub/scrubber/internal/platform/logging"
	"github.com/claimscrub/scrubber/internal/platform/middleware"
	"github.com/claimscrub/scrubber/internal/platform/npiregistry"
	"github.com/claimscrub/scrubber/internal/platform/validation"
	"github.com/claimscrub/scrubber/migrations"
)

const version = "0.1.0"

// exitCodeError asks main to exit with code after cobra has printed err.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ec *exitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "scrubber-server",
		Short:        "Pre-submission claim scrubbing API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(referenceCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the claim scrubbing API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func loadServerConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newRegistry builds the NPPES client, cached in redis when rdb is set. It
// returns nil when registry lookups are disabled.
func newRegistry(cfg *config.Config, rdb *redis.Client, logger zerolog.Logger) scrub.NPIRegistry {
	if !cfg.NPIRegistryEnabled {
		return nil
	}
	client := npiregistry.NewClient(cfg.NPIRegistryURL, cfg.NPIRegistryRPS, cfg.NPILookupTimeout)
	if rdb == nil {
		return client
	}
	return npiregistry.NewCache(client, rdb, cfg.NPICacheTTL, logger)
}

// newEngine builds the check engine over the packaged reference tables.
// A nil clock means wall time.
func newEngine(cfg *config.Config, registry scrub.NPIRegistry, clock func() time.Time, logger zerolog.Logger) *scrub.Engine {
	return scrub.NewEngine(reference.Default(), scrub.Options{
		Registry:             registry,
		NPILookupTimeout:     cfg.NPILookupTimeout,
		CheckTimeout:         cfg.CheckTimeout,
		TimelyFilingWarnDays: cfg.TimelyFilingWarnDays,
		Clock:                clock,
		Logger:               &logger,
	})
}

func poolOptions(cfg *config.Config, schema string) db.PoolOptions {
	return db.PoolOptions{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
		Schema:   schema,
	}
}

func runServer() error {
	cfg, err := loadServerConfig()
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	bodyLimit, err := middleware.ParseLimit(cfg.BodyLimit)
	if err != nil {
		return fmt.Errorf("BODY_LIMIT: %w", err)
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, poolOptions(cfg, cfg.DBSchema))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Redis backs the NPI cache only; the API works without it.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, npi lookups will not be cached until it recovers")
		}
		cancel()
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn().Err(err).Msg("rabbitmq unavailable, claim events disabled")
		} else {
			publisher = p
			logger.Info().Str("exchange", cfg.AMQPExchange).Msg("publishing claim events")
		}
	}
	defer publisher.Close()

	registry := newRegistry(cfg, rdb, logger)
	engine := newEngine(cfg, registry, nil, logger)

	claimRepo := claim.NewRepoPG(pool)
	resultRepo := scrub.NewRepoPG(pool)
	claimSvc := claim.NewService(claimRepo, publisher, logger)
	scrubSvc := scrub.NewService(claimRepo, resultRepo, db.NewTxManager(pool), engine, publisher, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger, "/health"))
	e.Use(middleware.SecurityHeaders(cfg.TLSEnabled))
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout, "/health"))

	deps := []db.Dependency{{Name: "database", Required: true, Ping: pool.Ping}}
	if rdb != nil {
		deps = append(deps, db.Dependency{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	e.GET("/health", db.HealthHandler(func() *db.PoolStats { return db.GetPoolStats(pool) }, deps...))
	e.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"version": version})
	})

	apiV1 := e.Group("/api/v1")
	claim.NewHandler(claimSvc).RegisterRoutes(apiV1)
	scrub.NewHandler(scrubSvc).RegisterRoutes(apiV1)
	reference.NewHandler(engine.Tables()).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().
			Str("addr", addr).
			Bool("tls", cfg.TLSEnabled).
			Bool("npi_registry", registry != nil).
			Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	openMigrator := func(ctx context.Context, schema string) (*db.Migrator, func(), error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		if err := cfg.RequireDatabase(); err != nil {
			return nil, nil, err
		}
		if schema == "" {
			schema = cfg.DBSchema
		}
		pool, err := db.NewPool(ctx, poolOptions(cfg, schema))
		if err != nil {
			return nil, nil, err
		}
		return db.NewMigrator(pool, migrations.FS, schema), pool.Close, nil
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			migrator, closeFn, err := openMigrator(ctx, schema)
			if err != nil {
				return err
			}
			defer closeFn()

			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", "", "Target schema for migrations (default DB_SCHEMA)")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			migrator, closeFn, err := openMigrator(ctx, schema)
			if err != nil {
				return err
			}
			defer closeFn()

			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printMigrationStatus(cmd, statuses)
			return nil
		},
	}
	statusCmd.Flags().String("schema", "", "Target schema for migrations (default DB_SCHEMA)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func printMigrationStatus(cmd *cobra.Command, statuses []db.MigrationStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}
