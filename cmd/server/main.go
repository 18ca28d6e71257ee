package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/workdesk/api/handler"
	"github.com/fastygo/workdesk/internal/config"
	"github.com/fastygo/workdesk/internal/infrastructure/buffer"
	"github.com/fastygo/workdesk/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/workdesk/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/workdesk/internal/infrastructure/redis"
	"github.com/fastygo/workdesk/internal/middleware"
	"github.com/fastygo/workdesk/internal/router"
	"github.com/fastygo/workdesk/internal/services"
	"github.com/fastygo/workdesk/internal/services/lifecycle"
	"github.com/fastygo/workdesk/pkg/httpcontext"
	"github.com/fastygo/workdesk/pkg/logger"
	"github.com/fastygo/workdesk/repository/postgres"
	redisRepo "github.com/fastygo/workdesk/repository/redis"
	"github.com/fastygo/workdesk/usecase"
	authUC "github.com/fastygo/workdesk/usecase/auth"
	dashboardUC "github.com/fastygo/workdesk/usecase/dashboard"
	leaveUC "github.com/fastygo/workdesk/usecase/leave"
	profileUC "github.com/fastygo/workdesk/usecase/profile"
	taskUC "github.com/fastygo/workdesk/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
		Env:      cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(pool, redisClient, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	leaveRepo := postgres.NewLeaveRepository(pool)
	leaveTypeRepo := postgres.NewLeaveTypeRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)
	statsCache := redisRepo.NewStatsCache(redisClient)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		services.Repositories{
			Users:  userRepo,
			Tasks:  taskRepo,
			Leaves: leaveRepo,
		},
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	bufferBridge := services.NewBufferBridge(bufferProcessor)
	clock := usecase.SystemClock(cfg.Location)

	authUseCase := authUC.New(userRepo, sessionRepo, clock, zapLogger)
	profileUseCase := profileUC.New(userRepo, bufferBridge, zapLogger)
	taskUseCase := taskUC.New(taskRepo, bufferBridge, statsCache, clock, zapLogger)
	dashboardUseCase := dashboardUC.New(taskRepo, userRepo, categoryRepo, statsCache, cfg.Stats.CacheTTL, clock, zapLogger)
	leaveUseCase := leaveUC.New(leaveRepo, leaveTypeRepo, balanceRepo, userRepo, bufferBridge, clock, zapLogger)

	sweep, err := services.NewOverdueSweep(dashboardUseCase, cfg.Jobs.OverdueSweep, cfg.Location, zapLogger)
	if err != nil {
		zapLogger.Fatal("invalid overdue sweep schedule", zap.Error(err))
	}
	sweep.Start()
	manager.Register("overdue_sweep", func(ctx context.Context) error {
		sweep.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:      apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.SessionTTL),
		Profile:   apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:      apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger, cfg.Location),
		Dashboard: apiHandler.NewDashboardHandler(dashboardUseCase, ctxAdapter, zapLogger, cfg.Location),
		Leave:     apiHandler.NewLeaveHandler(leaveUseCase, ctxAdapter, zapLogger, cfg.Location),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("timezone", cfg.Location.String()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
