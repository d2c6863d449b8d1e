package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"healmymind_backend/internal/config"
	"healmymind_backend/internal/controller"
	"healmymind_backend/internal/repository"
	"healmymind_backend/internal/service"
	"healmymind_backend/pkg/configwatcher"
	"healmymind_backend/pkg/database"
	"healmymind_backend/pkg/logger"
	"healmymind_backend/pkg/monitoring"
	"healmymind_backend/pkg/security"
	"healmymind_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	// ConfigPath is the file watched for hot reload. Empty disables it.
	ConfigPath string

	services        *services
	origins         *security.OriginList
	limiter         *security.RateLimiter
	tracer          *sdktrace.TracerProvider
	stop            chan struct{}
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user    *repository.UserRepository
	test    *repository.TestRepository
	result  *repository.ResultRepository
	session *repository.SessionRepository
	cache   *repository.TestCache
}

type services struct {
	auth           *service.AuthService
	test           *service.TestService
	recommendation *service.RecommendationService
	statistics     *service.StatisticsService
	export         *service.ExportService
}

type controllers struct {
	auth      *controller.AuthController
	test      *controller.TestController
	result    *controller.ResultController
	adminTest *controller.AdminTestController
	health    *controller.HealthController
}

// RegisterConfigCallback runs callback with every reloaded config.
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
	logger.Log.Info("Config reloaded")
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		test:    repository.NewTestRepository(db),
		result:  repository.NewResultRepository(db),
		session: repository.NewSessionRepository(db),
		cache:   repository.NewTestCache(rdb, cfg.Cache.Prefix, cfg.Cache.TTL()),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.recommendation = service.NewRecommendationService(cfg.AI)

	var cache service.TestCache
	if a.Redis != nil {
		cache = repos.cache
	}
	s.test = service.NewTestService(repos.test, repos.result, repos.session, cache, s.recommendation)
	s.statistics = service.NewStatisticsService(repos.test, repos.result, repos.session)
	s.export = service.NewExportService(repos.test, repos.result)

	a.RegisterConfigCallback(func(c *config.Config) {
		s.recommendation.UpdateConfig(c.AI)
	})
	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		test:      controller.NewTestController(s.test),
		result:    controller.NewResultController(s.test),
		adminTest: controller.NewAdminTestController(s.test, s.statistics, s.export),
		health:    controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	a.origins = security.NewOriginList(cfg.CORS.AllowedOrigins)
	a.limiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())

	a.RegisterConfigCallback(func(c *config.Config) {
		a.origins.Set(c.CORS.AllowedOrigins)
		a.limiter.Update(c.RateLimit.MaxRequests, c.RateLimit.Window())
	})

	router.Use(security.CORS(a.origins))
	router.Use(security.Secure())
	router.Use(a.limiter.Middleware())

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks() {
	go a.limiter.Run(a.stop)

	if a.ConfigPath == "" {
		return
	}
	go func() {
		if err := configwatcher.WatchConfig(a.ConfigPath, a.applyConfig, a.stop); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

// NewApp connects storage and builds the router. With cfg.MigrateOnly it
// returns after migrating and seeding.
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	debug := cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, debug)
	if err != nil {
		return nil, err
	}

	if debug || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
	}
	if debug || cfg.ForceMigrate || cfg.Seed {
		if err := database.SeedInstruments(repository.NewTestRepository(db)); err != nil {
			return nil, err
		}
	}

	app := &App{
		Config:     cfg,
		DB:         db,
		ConfigPath: filepath.Join("configs", "config.yaml"),
		stop:       make(chan struct{}),
	}
	if cfg.MigrateOnly {
		return app, nil
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, err
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb, cfg)
	app.services = app.initServices(repos, cfg)
	controllers := app.initControllers(app.services)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)
	return app, nil
}

func (a *App) Run() {
	a.startBackgroundTasks()

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	close(a.stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	a.Close(ctx)

	logger.Log.Info("Server exiting")
}

// Close releases tracing, redis and database resources.
func (a *App) Close(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = logger.Log.Sync()
}
