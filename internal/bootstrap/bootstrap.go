// Package bootstrap assembles configuration, storage, services and the HTTP router.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/alnet/mentorbridge/internal/app/controllers"
	appMigrations "github.com/alnet/mentorbridge/internal/app/migrations"
	appRepos "github.com/alnet/mentorbridge/internal/app/repositories"
	"github.com/alnet/mentorbridge/internal/app/repositories/memory"
	appRoutes "github.com/alnet/mentorbridge/internal/app/routes"
	appServices "github.com/alnet/mentorbridge/internal/app/services"
	"github.com/alnet/mentorbridge/internal/config"
	"github.com/alnet/mentorbridge/internal/db"
	appMiddleware "github.com/alnet/mentorbridge/internal/middleware"
	pkgAuth "github.com/alnet/mentorbridge/internal/pkg/auth"
	"github.com/alnet/mentorbridge/internal/pkg/email"
	"github.com/alnet/mentorbridge/internal/pkg/events"
	"github.com/alnet/mentorbridge/internal/pkg/filestorage"
	"github.com/alnet/mentorbridge/internal/pkg/helpers"
	"github.com/alnet/mentorbridge/internal/pkg/logger"
	"github.com/alnet/mentorbridge/internal/pkg/metrics"
	"github.com/alnet/mentorbridge/internal/pkg/validation"
	"github.com/alnet/mentorbridge/internal/pkg/websocket"
	"github.com/alnet/mentorbridge/internal/seed"
)

// DefaultConfigPath is used when MENTORBRIDGE_CONFIG is unset
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Storage is the persistence layer selected by the database driver
type Storage struct {
	Repos *appRepos.Repositories
	// DB is nil for the memory driver
	DB *db.PostgresDB
}

// Close releases the database pool, if any
func (s *Storage) Close() {
	if s.DB != nil {
		s.DB.Close()
	}
}

// Ping reports whether the backing store is reachable
func (s *Storage) Ping(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Ping(ctx)
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Storage     *Storage
	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	Email       email.EmailService
	FileStorage *filestorage.LocalStorage
	Publisher   events.Publisher
	Metrics     *metrics.Metrics
	Hub         *websocket.Hub

	AuthService       appServices.AuthService
	ProfileService    appServices.ProfileService
	ConnectionService appServices.ConnectionService
	MessageService    appServices.MessageService
	JobService        appServices.JobService
	StartupService    appServices.StartupService
	DonationService   appServices.DonationService
	EventService      appServices.EventService
	AnalyticsService  appServices.AnalyticsService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	AuthLimiter    *appMiddleware.RateLimiter

	Logger zerolog.Logger
	stop   context.CancelFunc
}

// Close stops the stream hub and releases the publisher and the database
func (d *Dependencies) Close() {
	if d.stop != nil {
		d.stop()
		<-d.Hub.Done()
	}
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close event publisher")
		}
	}
	if d.Storage != nil {
		d.Storage.Close()
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = config.GetEnv("MENTORBRIDGE_CONFIG", DefaultConfigPath)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.ConfigFromSettings(cfg.Logging.Level, cfg.Logging.Format))

	lgr := logger.Default()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the configured store. For PostgreSQL it also applies migrations.
// The admin account is seeded for either driver.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Storage, error) {
	storage := &Storage{}

	switch cfg.Database.Driver {
	case config.DriverMemory:
		lgr.Warn().Msg("Using in-memory storage; data is lost on restart")
		storage.Repos = memory.NewRepositories()

	default:
		lgr.Info().Msg("Establishing database connection...")
		database, err := db.NewPostgresDB(ctx, cfg, lgr)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}

		migrationsDir := cfg.Database.MigrationsPath
		if _, err := os.Stat(migrationsDir); errors.Is(err, os.ErrNotExist) {
			database.Close()
			return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
		}

		if err := appMigrations.NewMigrator(database, lgr).MigrateFromDirectory(ctx, migrationsDir); err != nil {
			database.Close()
			lgr.Error().Err(err).Msg("Database migration error")
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}

		storage.DB = database
		storage.Repos = appRepos.NewRepositories(database.Pool)
	}

	if err := seed.CreateDefaultData(ctx, cfg, storage.Repos, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return storage, nil
}

// newPublisher connects to NATS when a url is configured and falls back to logging events
func newPublisher(cfg *config.Config, recorder events.Recorder, lgr zerolog.Logger) events.Publisher {
	if cfg.NATS.URL == "" {
		return events.NewLogPublisher(recorder, lgr)
	}
	publisher, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, recorder, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("NATS unavailable, domain events will only be logged")
		return events.NewLogPublisher(recorder, lgr)
	}
	return publisher
}

// BuildDependencies initializes services, controllers and the stream hub.
// The hub runs until Close is called.
func BuildDependencies(cfg *config.Config, storage *Storage, lgr zerolog.Logger) (*Dependencies, error) {
	if err := validation.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	deps := &Dependencies{
		Storage: storage,
		Repos:   storage.Repos,
		Metrics: metrics.New(),
		Logger:  lgr,
	}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.BaseURL()+"/uploads")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Email = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		BaseURL:   cfg.BaseURL(),
	}, logger.WithField("component", "email"))

	deps.Publisher = newPublisher(cfg, deps.Metrics, logger.WithField("component", "events"))

	deps.Hub = websocket.NewHub(websocket.HubConfig{
		Buffer:         cfg.Messaging.StreamBuffer,
		AllowedOrigins: cfg.Server.CORSOrigins,
		Subscribers:    deps.Metrics.StreamSubscribers,
		Dropped:        deps.Metrics.StreamDropped,
	}, logger.WithField("component", "stream"))
	hubCtx, stop := context.WithCancel(context.Background())
	deps.stop = stop
	go deps.Hub.Run(hubCtx)

	repos := deps.Repos
	deps.AuthService = appServices.NewAuthService(repos, deps.JWTService, deps.Email, deps.Publisher, lgr)
	deps.ProfileService = appServices.NewProfileService(repos, deps.FileStorage, deps.Email, lgr)
	deps.ConnectionService = appServices.NewConnectionService(repos, deps.Email, deps.Publisher, lgr)
	deps.MessageService = appServices.NewMessageService(repos, deps.Hub, deps.Publisher, appServices.MessageOptions{
		RequireConnection: cfg.Messaging.RequireConnection,
		ReplayLimit:       cfg.Messaging.ReplayLimit,
	}, lgr)
	deps.JobService = appServices.NewJobService(repos, deps.Publisher, lgr)
	deps.StartupService = appServices.NewStartupService(repos, deps.Publisher, lgr)
	deps.DonationService = appServices.NewDonationService(repos, lgr)
	deps.EventService = appServices.NewEventService(repos, deps.Publisher, lgr)
	deps.AnalyticsService = appServices.NewAnalyticsService(repos, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, repos.Users)
	deps.AuthLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst)

	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(deps.AuthService, lgr),
		Profile:    appControllers.NewProfileController(deps.ProfileService, lgr),
		Connection: appControllers.NewConnectionController(deps.ConnectionService, lgr),
		Message:    appControllers.NewMessageController(deps.MessageService, deps.Hub, lgr),
		Job:        appControllers.NewJobController(deps.JobService, lgr),
		Startup:    appControllers.NewStartupController(deps.StartupService, lgr),
		Donation:   appControllers.NewDonationController(deps.DonationService, lgr),
		Event:      appControllers.NewEventController(deps.EventService, lgr),
		Analytics:  appControllers.NewAnalyticsController(deps.AnalyticsService, lgr),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.CORS(cfg.Server.CORSOrigins),
		deps.Metrics.Middleware(),
	)

	v1 := appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.AuthLimiter)

	v1.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := deps.Storage.Ping(ctx); err != nil {
			lgr.Error().Err(err).Msg("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "driver": cfg.Database.Driver, "time": time.Now().UTC()})
	})

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	router.Static("/uploads", cfg.Server.StoragePath)

	return router
}
