package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"enrollment-api/internal/cache"
	"enrollment-api/internal/config"
	"enrollment-api/internal/database"
	"enrollment-api/internal/handler"
	"enrollment-api/internal/identity"
	"enrollment-api/internal/mailer"
	"enrollment-api/internal/metrics"
	"enrollment-api/internal/middleware"
	"enrollment-api/internal/repository"
	"enrollment-api/internal/router"
	"enrollment-api/internal/service"
	"enrollment-api/internal/storage"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	closeDB := func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	}

	if cfg.SeedOnStart {
		if err := database.Seed(db); err != nil {
			closeDB()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	userRepo := repository.NewUserRepository(db)
	childRepo := repository.NewChildRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	slog.Info("database ready")

	profiles, redisCleanup := newProfileCache(cfg)

	provider, err := identity.NewClient(identity.ClientConfig{
		BaseURL:     cfg.IdentityBaseURL,
		TokenURL:    cfg.IdentityTokenURL,
		APIKey:      cfg.IdentityAPIKey,
		TokenSecret: cfg.IdentityTokenSecret,
	})
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("failed to initialize identity provider: %w", err)
	}

	mail, err := newMailer(cfg)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	documents, err := newObjectStorage(cfg)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	collector := metrics.NewCollector()

	authService := service.NewAuthService(
		userRepo, provider, profiles, mail, collector, cfg.ProfileTTL, cfg.IsProduction())
	parentService := service.NewParentService(
		userRepo, childRepo, applicationRepo, documents, profiles, cfg.MaxUploadSize)
	classroomService := service.NewClassroomService(classroomRepo)
	studentService := service.NewStudentService(studentRepo, userRepo, classroomRepo)
	applicationService := service.NewApplicationService(
		applicationRepo, paymentRepo, studentRepo, childRepo, userRepo, collector)

	authMiddleware := middleware.NewAuthMiddleware(provider)

	appRouter := router.New(cfg, authMiddleware, collector, router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Parent:      handler.NewParentHandler(parentService, cfg.MaxUploadSize),
		Classroom:   handler.NewClassroomHandler(classroomService),
		Student:     handler.NewStudentHandler(studentService),
		Application: handler.NewApplicationHandler(applicationService),
		Admin: handler.NewAdminHandler(authService, func() error {
			return database.Seed(db)
		}, cfg.IsProduction()),
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(){
			closeDB,
			redisCleanup,
		},
	}, nil
}

func newProfileCache(cfg *config.Config) (cache.ProfileCache, func()) {
	if cfg.RedisAddr == "" {
		slog.Info("profile cache: in-memory")
		return cache.NewMemoryCache(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	slog.Info("profile cache: redis", "addr", cfg.RedisAddr)
	return cache.NewRedisCache(client), func() {
		_ = client.Close()
	}
}

func newMailer(cfg *config.Config) (mailer.Sender, error) {
	if cfg.MailAPIKey == "" {
		slog.Info("mailer: noop (no API key configured)")
		return mailer.NoopSender{}, nil
	}

	return mailer.NewMailtrapSender(mailer.MailtrapConfig{
		APIURL:    cfg.MailAPIURL,
		APIKey:    cfg.MailAPIKey,
		FromEmail: cfg.MailFromEmail,
		FromName:  cfg.MailFromName,
	})
}

func newObjectStorage(cfg *config.Config) (storage.ObjectStorage, error) {
	if cfg.StorageBucket == "" {
		slog.Info("object storage: disabled (no bucket configured)")
		return storage.Disabled{}, nil
	}

	return storage.NewS3Storage(context.Background(), storage.S3Config{
		Endpoint:       cfg.StorageEndpoint,
		Region:         cfg.StorageRegion,
		AccessKey:      cfg.StorageAccessKey,
		SecretKey:      cfg.StorageSecretKey,
		Bucket:         cfg.StorageBucket,
		ForcePathStyle: cfg.StoragePathStyle,
	})
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
