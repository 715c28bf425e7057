package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nimasrn/reservation-hub/internal/config"
	"github.com/nimasrn/reservation-hub/internal/handlers"
	"github.com/nimasrn/reservation-hub/internal/queue"
	"github.com/nimasrn/reservation-hub/internal/repository"
	"github.com/nimasrn/reservation-hub/internal/services"
	xhttp "github.com/nimasrn/reservation-hub/pkg/http"
	"github.com/nimasrn/reservation-hub/pkg/logger"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"github.com/nimasrn/reservation-hub/pkg/prom"
	"github.com/nimasrn/reservation-hub/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer logger.Sync()

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	logger.Info("starting api", "version", version, "commit", commit, "date", date)

	// transport (tcp for now)
	opts := xhttp.DefaultServerOption
	opts.Name = "reservation-hub"
	opts.RequestTimeout = cfg.HttpRequestTimeout
	s := xhttp.NewServer(opts)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(s.Option().RequestTimeout))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)

	logger.Info("connecting to pg", "read", cfg.PostgresRead().String(), "write", cfg.PostgresWrite().String())
	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), cfg.AppEnv == "dev")
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: "api",
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	q, err := queue.NewQueue(redisAdap, queue.QueueConfig{
		Name:              cfg.QueueName,
		ConsumerGroup:     cfg.QueueConsumerGroup,
		ConsumerName:      cfg.QueueConsumerName,
		VisibilityTimeout: cfg.QueueVisibilityTimeout,
		PollInterval:      cfg.QueuePollInterval,
		BatchSize:         cfg.QueueBatchSize,
		MaxLen:            cfg.QueueMaxLen,
	})
	if err != nil {
		logger.Error("failed creating queue", "error", err)
		return
	}

	customerRepo := repository.NewCustomerRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	revenueRepo := repository.NewRevenueRepository(db)
	targetRepo := repository.NewTargetRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	userRepo := repository.NewUserRepository(db)

	// services
	publisher := services.NewQueuePublisher(q)
	customerService := services.NewCustomerService(customerRepo)
	storeService := services.NewStoreService(storeRepo, customerRepo)
	reservationService := services.NewReservationService(reservationRepo, storeRepo, customerRepo, publisher,
		services.WithStatusPolicy(services.NewStatusPolicy(cfg.ReservationStrictStatus)),
		services.WithUpcomingLimit(cfg.ReservationUpcomingLimit),
		services.WithLocation(cfg.Location()),
	)
	revenueService := services.NewRevenueService(revenueRepo, targetRepo, storeRepo, publisher)
	analyticsService := services.NewAnalyticsService(revenueRepo, storeRepo, targetRepo)
	settingsService := services.NewSettingsService(settingRepo, redisAdap)
	userService := services.NewUserService(userRepo)
	dashboardService := services.NewDashboardService(customerRepo, storeRepo, reservationRepo, revenueRepo)
	healthService := services.NewHealthService(db, redisAdap)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := settingsService.Load(ctx); err != nil {
		logger.Error("failed to load settings", "error", err)
		return
	}
	go func() {
		if err := settingsService.Watch(ctx); err != nil {
			logger.Error("settings watcher stopped", "error", err)
		}
	}()

	guard := handlers.NewGuard(userService)
	handlers.SetLocation(cfg.Location())

	// v1 handlers
	g := s.Router.Group(cfg.HttpBaseRequestUrl)
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(healthService))
	handlers.RegisterPublicRoutes(g, handlers.NewPublicHandler(reservationService, cfg.PublicCorsOrigin))
	handlers.RegisterStoreRoutes(g, handlers.NewStoreHandler(storeService, revenueService, reservationService), guard)
	handlers.RegisterCustomerRoutes(g, handlers.NewCustomerHandler(customerService), guard)
	handlers.RegisterReservationRoutes(g, handlers.NewReservationHandler(reservationService), guard)
	handlers.RegisterRevenueRoutes(g, handlers.NewRevenueHandler(revenueService), guard)
	handlers.RegisterAnalyticsRoutes(g, handlers.NewAnalyticsHandler(analyticsService), guard)
	handlers.RegisterSettingsRoutes(g, handlers.NewSettingsHandler(settingsService), guard)
	handlers.RegisterUserRoutes(g, handlers.NewUserHandler(userService), guard)
	handlers.RegisterDashboardRoutes(g, handlers.NewDashboardHandler(dashboardService), guard)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err := prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	go prom.ListenAndServer(cfg.PromListenAddr, "/metrics")

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(cfg.HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
	if err := redis.Close("default"); err != nil {
		logger.Warn("failed to close redis", "error", err)
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
