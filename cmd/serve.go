package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"othershorts-backend/internal/config"
	"othershorts-backend/internal/handlers"
	"othershorts-backend/internal/middleware"
	"othershorts-backend/internal/repository"
	"othershorts-backend/internal/services"
	"othershorts-backend/internal/youtube"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return runServer(cmd.Context(), cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")

	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, migrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Connect to database
	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Msg("Database connection established")

	if migrate {
		if err := repository.Migrate(ctx, db); err != nil {
			return err
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	countryRepo := repository.NewCountryRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	ratingRepo := repository.NewRatingRepository(db)

	// Optional integrations
	var archive services.TakeoutArchive
	if cfg.AWS.S3Bucket != "" {
		s3Archive, err := services.NewS3Archive(ctx,
			cfg.AWS.Region,
			cfg.AWS.S3Bucket,
			cfg.AWS.AccessKey,
			cfg.AWS.SecretKey,
			cfg.AWS.Endpoint,
		)
		if err != nil {
			return fmt.Errorf("failed to create takeout archive: %w", err)
		}
		archive = s3Archive
		log.Info().Str("bucket", cfg.AWS.S3Bucket).Msg("Takeout archiving enabled")
	}

	var push services.PushSender
	if cfg.APNS.CertFile != "" {
		apns, err := services.NewAPNSNotifier(cfg.APNS.CertFile, cfg.APNS.CertPassword, cfg.APNS.Topic, cfg.APNS.Production)
		if err != nil {
			return fmt.Errorf("failed to create push notifier: %w", err)
		}
		push = apns
		log.Info().Bool("production", cfg.APNS.Production).Msg("Push notifications enabled")
	}

	if cfg.YouTube.APIKey == "" {
		log.Warn().Msg("YOUTUBE_API_KEY is not set, takeout uploads will fail")
	}
	lookup := youtube.NewClient(cfg.YouTube.APIKey,
		youtube.WithBaseURL(cfg.YouTube.BaseURL),
		youtube.WithRateLimit(cfg.YouTube.RequestsPerSecond),
		youtube.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.YouTube.TimeoutSeconds) * time.Second}),
	)

	// Initialize services
	userService := services.NewUserService(userRepo, countryRepo, cfg.JWT.Secret, cfg.JWT.ExpiryDays)
	warnIfUnauthenticated(userService)
	hub := services.NewNotifyHub(userRepo, push)
	takeoutService := services.NewTakeoutService(videoRepo, userRepo, lookup, archive, services.TakeoutPolicy{
		MaxDuration: time.Duration(cfg.Takeout.MaxDurationSeconds) * time.Second,
		BatchSize:   cfg.Takeout.LookupBatchSize,
	})
	feedService := services.NewFeedService(videoRepo, cfg.Feed.VideosPerBatch)
	ratingService := services.NewRatingService(ratingRepo, hub)

	// Setup router
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	handlers.RegisterRoutes(r, handlers.Set{
		User:      handlers.NewUserHandler(userService),
		Takeout:   handlers.NewTakeoutHandler(takeoutService, cfg.Takeout.MaxUploadBytes),
		Rating:    handlers.NewRatingHandler(ratingService),
		Feed:      handlers.NewFeedHandler(feedService),
		WebSocket: handlers.NewWebSocketHandler(hub, userService),
		Health:    handlers.HealthHandler(db),
	}, middleware.AuthMiddleware(userService, cfg.JWT.Required))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Wait()

	log.Info().Msg("Server exited")
	return nil
}

func warnIfUnauthenticated(tokens middleware.TokenValidator) bool {
	if tokens.TokensEnabled() {
		return false
	}
	log.Warn().Msg("JWT secret is not set: requests are not authenticated and /ws accepts any userId")
	return true
}
