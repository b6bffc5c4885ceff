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

	"github.com/psconsult/psconsult/internal/config"
	"github.com/psconsult/psconsult/internal/domain/audit"
	"github.com/psconsult/psconsult/internal/domain/consult"
	"github.com/psconsult/psconsult/internal/domain/dashboard"
	"github.com/psconsult/psconsult/internal/domain/identity"
	"github.com/psconsult/psconsult/internal/domain/notification"
	"github.com/psconsult/psconsult/internal/domain/review"
	"github.com/psconsult/psconsult/internal/domain/schedule"
	"github.com/psconsult/psconsult/internal/platform/auth"
	"github.com/psconsult/psconsult/internal/platform/db"
	"github.com/psconsult/psconsult/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "psconsult-server",
		Short: "Plastic surgery consult tracking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

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

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
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

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
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

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the initial admin account and demo users",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
			auditSvc := audit.NewService(audit.NewRepoPG(pool), logger)
			issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLMins)*time.Minute)
			users := identity.NewService(identity.NewRepoPG(pool), issuer, auditSvc)

			unit := "Emergency Department"
			regDesignation := identity.DesignationRegistrar
			seeds := []struct {
				user     identity.User
				password string
			}{
				{identity.User{Username: "admin", FullName: "System Admin", Role: auth.RoleAdmin}, "admin123"},
				{identity.User{Username: "registrar1", FullName: "Demo Registrar", Role: auth.RoleRegistrar, Designation: &regDesignation}, "registrar123"},
				{identity.User{Username: "consultant1", FullName: "Demo Consultant", Role: auth.RoleConsultant}, "consultant123"},
				{identity.User{Username: "ed_desk", FullName: "ED Front Desk", Role: auth.RoleInvitingUnit, Unit: &unit}, "eddesk123"},
			}
			for i := range seeds {
				s := &seeds[i]
				if err := users.Register(ctx, &s.user, s.password); err != nil {
					fmt.Printf("skipped %s: %v\n", s.user.Username, err)
					continue
				}
				fmt.Printf("created %s (%s)\n", s.user.Username, s.user.Role)
			}
			return nil
		},
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLMins)*time.Minute)
	runTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.RunInTx(ctx, pool, fn)
	}

	// Services
	auditSvc := audit.NewService(audit.NewRepoPG(pool), logger)
	notifSvc := notification.NewService(notification.NewRepoPG(pool), logger)
	identitySvc := identity.NewService(identity.NewRepoPG(pool), issuer, auditSvc)
	consultSvc := consult.NewService(consult.NewRepoPG(pool), notifSvc, auditSvc, identitySvc, runTx, logger)
	reviewSvc := review.NewService(review.NewRepoPG(pool), consultSvc, auditSvc, runTx)
	scheduleSvc := schedule.NewService(schedule.NewRepoPG(pool))
	dashboardSvc := dashboard.NewService(dashboard.NewRepoPG(pool))

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.ClientIP())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Public routes attribute a token when one is present; protected routes
	// require one.
	public := e.Group("/api", auth.OptionalJWTMiddleware(issuer))
	api := e.Group("/api", auth.JWTMiddleware(issuer))

	identity.NewHandler(identitySvc).RegisterRoutes(public, api)
	consult.NewHandler(consultSvc).RegisterRoutes(public, api)
	review.NewHandler(reviewSvc).RegisterRoutes(api)
	notification.NewHandler(notifSvc).RegisterRoutes(api)
	schedule.NewHandler(scheduleSvc).RegisterRoutes(api)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(api)
	audit.NewHandler(auditSvc).RegisterRoutes(api)

	// Start with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
