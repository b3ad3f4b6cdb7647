package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sheet_lms_backend/internal/cache"
	"sheet_lms_backend/internal/config"
	"sheet_lms_backend/internal/controller"
	"sheet_lms_backend/internal/repository"
	"sheet_lms_backend/internal/service"
	"sheet_lms_backend/internal/sheet"
	"sheet_lms_backend/pkg/configwatcher"
	"sheet_lms_backend/pkg/database"
	"sheet_lms_backend/pkg/logger"
	"sheet_lms_backend/pkg/monitoring"
	"sheet_lms_backend/pkg/security"
	"sheet_lms_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigFile 热更新监听的配置文件
const ConfigFile = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	Store           sheet.Store
	Cache           cache.Cache
	DB              *gorm.DB
	Redis           *redis.Client
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	course   *repository.CourseRepository
	lesson   *repository.LessonRepository
	quiz     *repository.QuizRepository
	progress *repository.ProgressRepository
}

type services struct {
	auth     *service.AuthService
	storage  *service.StorageService
	course   *service.CourseService
	lesson   *service.LessonService
	quiz     *service.QuizService
	progress *service.ProgressService
}

type controllers struct {
	auth     *controller.AuthController
	course   *controller.CourseController
	lesson   *controller.LessonController
	quiz     *controller.QuizController
	progress *controller.ProgressController
	health   *controller.HealthController
}

// ttlSetter 支持热更新 TTL 的缓存实现
type ttlSetter interface {
	SetTTL(time.Duration)
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories() *repositories {
	return &repositories{
		user:     repository.NewUserRepository(a.Store),
		course:   repository.NewCourseRepository(a.Store, a.Cache),
		lesson:   repository.NewLessonRepository(a.Store, a.Cache),
		quiz:     repository.NewQuizRepository(a.Store, a.Cache),
		progress: repository.NewProgressRepository(a.Store, a.Cache),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.course = service.NewCourseService(repos.course, repos.lesson, repos.progress, s.storage)
	s.lesson = service.NewLessonService(repos.lesson, repos.course, repos.quiz, repos.progress)
	s.quiz = service.NewQuizService(repos.lesson, repos.quiz, repos.progress, cfg)
	s.progress = service.NewProgressService(repos.progress, repos.lesson, repos.course)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		course:   controller.NewCourseController(s.course),
		lesson:   controller.NewLessonController(s.lesson),
		quiz:     controller.NewQuizController(s.quiz),
		progress: controller.NewProgressController(s.progress),
		health:   controller.NewHealthController(a.Store, a.Config.Sheets.Backend, s.storage),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 {
		window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
		if window <= 0 {
			window = time.Minute
		}
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// openStore 按配置选择行存储后端，并加上监控装饰
func openStore(ctx context.Context, cfg *config.Config) (sheet.Store, *gorm.DB, error) {
	switch cfg.Sheets.Backend {
	case config.SheetsBackendGoogle:
		st, err := sheet.NewSheetsStore(ctx, sheet.SheetsOptions{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			CredentialsFile: cfg.Sheets.CredentialsFile,
			CredentialsJSON: cfg.Sheets.CredentialsJSON,
			Timeout:         cfg.Sheets.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return sheet.Instrument(st), nil, nil
	case config.SheetsBackendDatabase:
		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
		if err != nil {
			return nil, nil, err
		}
		st, err := sheet.NewDBStore(db)
		if err != nil {
			return nil, nil, err
		}
		return sheet.Instrument(st), db, nil
	case config.SheetsBackendMemory:
		logger.Log.Warn("Using in-memory row store, data is lost on restart")
		return sheet.Instrument(sheet.NewMemoryStore()), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown sheets backend %q", cfg.Sheets.Backend)
}

func openCache(cfg *config.Config) (cache.Cache, *redis.Client, error) {
	if cfg.Cache.Backend == config.CacheBackendRedis {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedis(rdb, cfg.Cache.Prefix, cfg.Cache.TTL), rdb, nil
	}
	return cache.NewMemory(cfg.Cache.TTL), nil, nil
}

// Build 用给定的行存储和缓存组装路由，测试中直接使用
func Build(cfg *config.Config, store sheet.Store, c cache.Cache) *App {
	app := &App{
		Config: cfg,
		Store:  store,
		Cache:  c,
	}

	repos := app.initRepositories()
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.Use(logger.GinRecovery(), logger.GinLogger())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" && cfg.Storage.LocalPath != "" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetLevel(newCfg.Server.Mode)
	})
	if ts, ok := c.(ttlSetter); ok {
		app.RegisterConfigCallback(func(newCfg *config.Config) {
			ts.SetTTL(newCfg.Cache.TTL)
			logger.Log.Info("Cache TTL updated", zap.Duration("ttl", newCfg.Cache.TTL))
		})
	}

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	gin.SetMode(cfg.Server.Mode)

	logger.Log.Info("Logger initialized successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, db, err := openStore(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize row store",
			zap.String("backend", cfg.Sheets.Backend),
			zap.Error(err),
		)
	}

	c, rdb, err := openCache(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize cache", zap.Error(err))
	}

	if cfg.InitSheets {
		if err := InitSheets(ctx, store); err != nil {
			logger.Log.Fatal("Failed to initialize sheets", zap.Error(err))
		}
	}

	app := Build(cfg, store, c)
	app.DB = db
	app.Redis = rdb

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("sheet-lms-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

// InitSheets 按实体注册表写入各表表头
func InitSheets(ctx context.Context, store sheet.Store) error {
	for _, def := range repository.Registry() {
		if err := store.WriteHeader(ctx, def.Table, def.Columns); err != nil {
			return fmt.Errorf("init %s: %w", def.Table, err)
		}
		logger.Log.Info("Sheet header written",
			zap.String("table", def.Table),
			zap.Strings("columns", def.Columns),
		)
	}
	return nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		if err := configwatcher.WatchConfig(watchCtx, ConfigFile, a.applyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

// Close 释放外部连接
func (a *App) Close(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
