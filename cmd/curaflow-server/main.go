package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/curaflow/curaflow/internal/config"
	"github.com/curaflow/curaflow/internal/domain/accounts"
	"github.com/curaflow/curaflow/internal/domain/finance"
	"github.com/curaflow/curaflow/internal/domain/inventory"
	"github.com/curaflow/curaflow/internal/domain/notifications"
	"github.com/curaflow/curaflow/internal/domain/patients"
	"github.com/curaflow/curaflow/internal/domain/records"
	"github.com/curaflow/curaflow/internal/domain/scheduling"
	"github.com/curaflow/curaflow/internal/platform/auth"
	"github.com/curaflow/curaflow/internal/platform/db"
	"github.com/curaflow/curaflow/internal/platform/mail"
	"github.com/curaflow/curaflow/internal/platform/middleware"
	"github.com/curaflow/curaflow/internal/platform/realtime"
	"github.com/curaflow/curaflow/internal/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "curaflow-server",
		Short: "Clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
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

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
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
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// Two groups share the /api/v1 prefix: pubV1 carries the unauthenticated
	// account endpoints, apiV1 carries everything behind the bearer token.
	pubV1 := e.Group("/api/v1")
	pubV1.Use(middleware.RateLimit(rateLimitCfg))

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	if cfg.IsDev() {
		apiV1.Use(auth.DevMiddleware())
	} else {
		apiV1.Use(auth.Middleware(cfg.JWTSecret))
	}

	// Mail
	var sender mail.EmailSender
	if cfg.SMTPHost != "" {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		logger.Info().Str("host", cfg.SMTPHost).Msg("SMTP mail transport enabled")
	} else {
		sender = &mail.MockEmailSender{}
		logger.Warn().Msg("no SMTP host configured, mail is logged but not delivered")
	}
	mailManager := mail.NewManager(sender, mail.NewTemplateEngine())

	// Realtime hub
	hub := realtime.NewHub()
	realtimeHandler := realtime.NewHandler(hub)
	realtimeHandler.RegisterRoutes(apiV1)

	// Notifications
	notifRepo := notifications.NewRepoPG(pool)
	notifSvc := notifications.NewService(notifRepo, hub)
	notifHandler := notifications.NewHandler(notifSvc)
	notifHandler.RegisterRoutes(apiV1)

	// Patients
	patientRepo := patients.NewRepoPG(pool)
	patientSvc := patients.NewService(patientRepo)
	patientHandler := patients.NewHandler(patientSvc)
	patientHandler.RegisterRoutes(apiV1)

	// Accounts
	accountRepo := accounts.NewRepoPG(pool)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, 0)
	accountSvc := accounts.NewService(accountRepo, issuer, patientSvc, mailManager, accounts.Options{
		OrgKey:              cfg.StaffOrgKey,
		BaseURL:             cfg.BaseURL,
		VerificationEnabled: cfg.MailVerification,
	})
	accountHandler := accounts.NewHandler(accountSvc)
	accountHandler.RegisterPublicRoutes(pubV1)
	accountHandler.RegisterRoutes(apiV1)

	// Scheduling
	apptRepo := scheduling.NewRepoPG(pool)
	apptSvc := scheduling.NewService(apptRepo, notifSvc, patientSvc)
	apptHandler := scheduling.NewHandler(apptSvc)
	apptHandler.RegisterRoutes(apiV1)

	// Medical records and prescriptions
	recordRepo := records.NewRecordRepoPG(pool)
	prescriptionRepo := records.NewPrescriptionRepoPG(pool)
	recordSvc := records.NewService(recordRepo, prescriptionRepo, notifSvc)
	recordHandler := records.NewHandler(recordSvc)
	recordHandler.RegisterRoutes(apiV1)

	// Inventory and vendor orders
	stockRepo := inventory.NewStockRepoPG(pool)
	vendorRepo := inventory.NewVendorRepoPG(pool)
	orderRepo := inventory.NewOrderRepoPG(pool)
	inventorySvc := inventory.NewService(stockRepo, vendorRepo, orderRepo, notifSvc, mailManager, cfg.BaseURL)
	inventoryHandler := inventory.NewHandler(inventorySvc)
	inventoryHandler.RegisterRoutes(apiV1)
	inventoryHandler.RegisterPublicRoutes(e)

	// Payments and financial ledger
	paymentRepo := finance.NewPaymentRepoPG(pool)
	ledgerRepo := finance.NewLedgerRepoPG(pool)
	financeSvc := finance.NewService(paymentRepo, ledgerRepo)
	financeHandler := finance.NewHandler(financeSvc)
	financeHandler.RegisterRoutes(apiV1)

	// Background stock sweep
	sched := worker.NewScheduler(logger)
	if err := sched.ScheduleStockSweep(inventorySvc, time.Duration(cfg.StockSweepMinutes)*time.Minute); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule stock sweep")
	}
	sched.Start()
	defer sched.Stop()

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
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
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
