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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"healthcare-app-server/internal/config"
	"healthcare-app-server/internal/jobs"
	"healthcare-app-server/internal/logger"
	"healthcare-app-server/internal/middleware"
	"healthcare-app-server/internal/models"
	"healthcare-app-server/internal/notify"
	"healthcare-app-server/internal/repository"
	"healthcare-app-server/internal/routes"
	"healthcare-app-server/internal/services"
	"healthcare-app-server/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "sehat-sathi",
		Short:        "Sehat Sathi telehealth API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(accountsCmd())

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
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadEnvironment()
			if err != nil {
				return err
			}
			if _, err := openDatabase(cfg); err != nil {
				return err
			}
			log.WithComponent("migrate").Info("Database schema is up to date")
			return nil
		},
	}
}

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage user accounts",
	}

	setActive := func(use, short string, active bool) *cobra.Command {
		c := &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				email, _ := cmd.Flags().GetString("email")
				if email == "" {
					return errors.New("--email is required")
				}

				cfg, log, err := loadEnvironment()
				if err != nil {
					return err
				}
				db, err := openDatabase(cfg)
				if err != nil {
					return err
				}

				identity := services.NewIdentityService(
					repository.NewGormAccountRepository(db),
					repository.NewGormDoctorRepository(db),
					utils.NewBcryptHasher(),
					log,
				)
				user, err := identity.SetAccountActive(cmd.Context(), email, active)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) active=%t\n", user.Email, user.ID, user.IsActive)
				return nil
			},
		}
		c.Flags().String("email", "", "account email")
		return c
	}

	cmd.AddCommand(setActive("activate", "Allow an account to sign in", true))
	cmd.AddCommand(setActive("deactivate", "Block an account from signing in", false))
	return cmd
}

func loadEnvironment() (*config.Config, *logger.Logger, error) {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, logger.New(cfg.LogLevel), nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := models.InitDB(models.DatabaseConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Debug:  cfg.Environment == "development" && cfg.LogLevel == "debug",
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return db, nil
}

func runServer() error {
	cfg, log, err := loadEnvironment()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	accounts := repository.NewGormAccountRepository(db)
	doctors := repository.NewGormDoctorRepository(db)
	appointments := repository.NewGormAppointmentRepository(db)

	var revocations services.RevocationStore
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("error connecting to redis: %w", err)
		}
		revocations = services.NewRedisRevocationStore(client)
	} else {
		log.Warn("REDIS_ADDR not set, logout will not revoke tokens")
	}

	var notifier services.Notifier = notify.NewLogNotifier(log)
	if cfg.Mailer.Host != "" {
		notifier = notify.NewEmailNotifier(notify.NewSMTPSender(cfg.Mailer), log)
	}

	credentials := services.NewCredentialService(utils.NewJWTSigner(cfg.JWTSecret), revocations, cfg.TokenTTL(), time.Now)
	scheduling := services.NewSchedulingService(accounts, doctors, appointments, log, services.SchedulingOptions{
		Location: loc,
		Notifier: notifier,
	})

	sweeper, err := jobs.NewSweeper(cfg.SweepSchedule, loc, scheduling, log)
	if err != nil {
		return err
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.RequestLogger(log), middleware.Recovery(log))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Services{
		Identity:    services.NewIdentityService(accounts, doctors, utils.NewBcryptHasher(), log),
		Credentials: credentials,
		Guard:       services.NewGuard(credentials, accounts),
		Scheduling:  scheduling,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweeper.Start()
	go func() {
		log.WithField("port", cfg.Port).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sweeper.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
