package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carewatch/carewatch/internal/config"
	"github.com/carewatch/carewatch/internal/domain/activity"
	"github.com/carewatch/carewatch/internal/domain/admin"
	"github.com/carewatch/carewatch/internal/domain/agency"
	"github.com/carewatch/carewatch/internal/domain/alert"
	"github.com/carewatch/carewatch/internal/domain/carer"
	"github.com/carewatch/carewatch/internal/domain/client"
	"github.com/carewatch/carewatch/internal/domain/symptom"
	"github.com/carewatch/carewatch/internal/domain/visit"
	"github.com/carewatch/carewatch/internal/platform/auth"
	"github.com/carewatch/carewatch/internal/platform/db"
	"github.com/carewatch/carewatch/internal/platform/events"
	"github.com/carewatch/carewatch/internal/platform/metrics"
	"github.com/carewatch/carewatch/internal/platform/middleware"
)

const version = "0.3.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "carewatch-server",
		Short:         "CareWatch home-care risk monitoring API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(catalogCmd())
	rootCmd.AddCommand(adminCmd())
	return rootCmd
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

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg != nil && cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := newLogger(nil)
		bootLogger.Error().Err(err).Msg("failed to load config")
		return err
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}
	if cfg.ResolvedAuthMode() == "development" {
		logger.Warn().Msg("development auth is enabled: unauthenticated requests run as admin")
	}

	catalog, err := symptom.Load(cfg.SymptomCatalogPath)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load symptom catalog")
		return err
	}
	logger.Info().Str("version", catalog.Version).Int("symptoms", catalog.Len()).Msg("symptom catalog loaded")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	var pub events.Publisher = events.NewLogPublisher(logger)
	if cfg.EventsEnabled() {
		pub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAlertTopic)
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaAlertTopic).Msg("publishing alert events to kafka")
	}
	defer pub.Close()

	e := newServer(cfg, logger, pool, catalog, pub, metrics.New())

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
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

// newServer builds the echo instance with middleware and every domain
// handler registered. The pool is only touched when requests arrive.
func newServer(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool, catalog *symptom.Catalog, pub events.Publisher, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader, auth.AgencyHeader},
	}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(m.Middleware())

	// Auth middleware
	if cfg.ResolvedAuthMode() == "development" {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
			Skipper:    auth.AuthSkipper,
		}))
	}

	// Health and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":          "ok",
			"version":         version,
			"catalog_version": catalog.Version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool, func() *db.PoolStats { return db.GetPoolStats(pool) }))
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	apiV1 := e.Group("/api/v1")
	apiV1.Use(auth.AgencyScope())
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	tx := db.NewTransactor(pool)

	// Activity log
	activitySvc := activity.NewService(activity.NewRepo(pool))
	activity.NewHandler(activitySvc).RegisterRoutes(apiV1)

	// Symptom catalog
	symptom.NewHandler(catalog).RegisterRoutes(apiV1)

	// Alerts
	alertSvc := alert.NewService(alert.NewRepo(pool), pub, m)
	alertSvc.SetPublishTimeout(cfg.KafkaPublishTimeout)
	alert.NewHandler(alertSvc).RegisterRoutes(apiV1)

	// Clients and carers
	clientSvc := client.NewService(client.NewRepo(pool), activitySvc, tx)
	client.NewHandler(clientSvc).RegisterRoutes(apiV1)

	carerSvc := carer.NewService(carer.NewRepo(pool), activitySvc, tx)
	carer.NewHandler(carerSvc).RegisterRoutes(apiV1)

	// Visit entries
	visitSvc := visit.NewService(visit.NewRepo(pool), catalog, alertSvc, tx)
	visitSvc.SetClientChecker(clientSvc)
	visitSvc.SetMetrics(m)
	visit.NewHandler(visitSvc).RegisterRoutes(apiV1)

	// Platform administration
	agencySvc := agency.NewService(agency.NewRepo(pool), activitySvc, tx)
	agency.NewHandler(agencySvc).RegisterRoutes(apiV1)

	adminSvc := admin.NewService(admin.NewRepo(pool), activitySvc, tx)
	admin.NewHandler(adminSvc).RegisterRoutes(apiV1)

	return e
}

// connect loads configuration and opens a pool for the one-shot commands.
func connect(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return cfg, pool, nil
}
