package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"teachhub/config"
	"teachhub/internal/application/usecase"
	"teachhub/internal/infrastructure/cache"
	"teachhub/internal/infrastructure/database"
	"teachhub/internal/infrastructure/metrics"
	"teachhub/internal/infrastructure/payment"
	"teachhub/internal/infrastructure/repository"
	"teachhub/internal/infrastructure/security"
	"teachhub/internal/infrastructure/storage"
	"teachhub/internal/middleware"
	handlers "teachhub/internal/transport/http"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "migrate the schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg config.Config) error {
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	log.Printf("Connected to %s database", driverName(cfg))

	if autoMigrate || cfg.DBDriver == "sqlite" {
		if err := repository.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	log.Println("Connected to Redis at", cfg.RedisAddr)

	blobs, err := newBlobStore(cfg)
	if err != nil {
		return err
	}
	gateway, err := newPaymentGateway(cfg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry)

	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	reviews := repository.NewReviewRepository(db)
	courseCache := cache.NewCourseCache(rdb, cfg.CourseCacheTTL)
	validate := usecase.NewValidator()

	accounts := usecase.NewAccountUseCase(users, security.NewPasswordHasher(), security.NewTokenManager(cfg.AccessSecret, cfg.AccessTTL), validate)
	catalog := usecase.NewCatalogUseCase(courses, enrollments, reviews, courseCache)
	courseUseCase := usecase.NewCourseUseCase(users, courses, blobs, validate, usecase.WithCourseCache(courseCache))
	enrollmentUseCase := usecase.NewEnrollmentUseCase(users, courses, enrollments, gateway,
		usecase.WithEnrollmentGuard(cache.NewEnrollmentGuard(rdb, cfg.EnrollLockTTL)),
		usecase.WithEnrollmentObserver(recorder),
		usecase.WithPaymentTimeout(cfg.PaymentTimeout),
	)
	reviewUseCase := usecase.NewReviewUseCase(users, courses, enrollments, reviews, usecase.WithReviewCache(courseCache))
	profileUseCase := usecase.NewProfileUseCase(users, blobs, courseCache)

	router := handlers.NewRouter(handlers.Handlers{
		Auth:       handlers.NewAuthHandler(accounts),
		Profile:    handlers.NewProfileHandler(profileUseCase),
		Course:     handlers.NewCourseHandler(courseUseCase, catalog),
		Enrollment: handlers.NewEnrollmentHandler(enrollmentUseCase, catalog),
		Review:     handlers.NewReviewHandler(reviewUseCase, catalog),
	}, handlers.RouterDeps{
		Limiter:        middleware.NewRateLimiter(rdb),
		Access:         accounts,
		AllowedOrigins: cfg.Origins(),
		Metrics:        recorder.Handler(),
		Health:         healthCheck(db, rdb),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API running on %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("Server exited")
	return nil
}

func newBlobStore(cfg config.Config) (usecase.BlobStore, error) {
	if cfg.S3Bucket == "" {
		log.Println("S3_BUCKET not set, keeping uploads in memory")
		return storage.NewMemoryStore("memory://uploads"), nil
	}
	return storage.NewS3Store(storage.S3Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	})
}

func newPaymentGateway(cfg config.Config) (usecase.PaymentGateway, error) {
	switch cfg.PaymentProvider {
	case "", "simulated":
		if cfg.IsProduction() {
			return nil, errors.New("simulated payments are not allowed in production")
		}
		return payment.NewSimulatedGateway(), nil
	case "stripe":
		if cfg.StripeSecretKey == "" {
			return nil, errors.New("STRIPE_SECRET_KEY is required for the stripe provider")
		}
		return payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeAPIURL), nil
	default:
		return nil, fmt.Errorf("unknown PAYMENT_PROVIDER %q", cfg.PaymentProvider)
	}
}

func healthCheck(db *gorm.DB, rdb *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}
}

func driverName(cfg config.Config) string {
	if cfg.DBDriver == "" {
		return "postgres"
	}
	return cfg.DBDriver
}
