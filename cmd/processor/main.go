package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nimasrn/reservation-hub/internal/config"
	gateway "github.com/nimasrn/reservation-hub/internal/gateways"
	"github.com/nimasrn/reservation-hub/internal/notify"
	"github.com/nimasrn/reservation-hub/internal/processor"
	"github.com/nimasrn/reservation-hub/internal/queue"
	"github.com/nimasrn/reservation-hub/internal/repository"
	"github.com/nimasrn/reservation-hub/internal/services"
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
	logger.Info("starting processor", "version", version, "commit", commit, "date", date)

	logger.Info("connecting to pg", "read", cfg.PostgresRead().String(), "write", cfg.PostgresWrite().String())
	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), cfg.AppEnv == "dev")
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: "processor",
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the token is read on every send, so updates from the api apply without a restart
	settingsService := services.NewSettingsService(repository.NewSettingRepository(db), redisAdap)
	if err := settingsService.Load(ctx); err != nil {
		logger.Error("failed to load settings", "error", err)
		return
	}
	go func() {
		if err := settingsService.Watch(ctx); err != nil {
			logger.Error("settings watcher stopped", "error", err)
		}
	}()

	gwConfig := gateway.DefaultConfig(cfg.WhatsAppPrimaryUrl, cfg.WhatsAppSecondaryUrl)
	gwConfig.CountryCode = cfg.WhatsAppCountryCode
	gwConfig.Timeout = cfg.WhatsAppTimeout
	client, err := gateway.NewClient(gwConfig)
	if err != nil {
		logger.Error("failed to create gateway", "error", err)
		return
	}
	defer client.Close()

	storeRepo := repository.NewStoreRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	reservationService := services.NewReservationService(repository.NewReservationRepository(db), storeRepo, customerRepo, nil,
		services.WithUpcomingLimit(cfg.ReservationUpcomingLimit),
		services.WithLocation(cfg.Location()),
	)
	revenueService := services.NewRevenueService(repository.NewRevenueRepository(db), repository.NewTargetRepository(db), storeRepo, nil)
	composer := notify.NewComposer(reservationService, revenueService, storeRepo, cfg.Location(), cfg.ReservationUpcomingLimit)

	idempotencyService := processor.NewIdempotencyService(redisAdap, processor.DefaultIdempotencyConfig())

	service := processor.NewProcessorService(redisAdap, processor.ServiceConfig{
		Queue: queue.QueueConfig{
			Name:              cfg.QueueName,
			ConsumerGroup:     cfg.QueueConsumerGroup,
			ConsumerName:      cfg.QueueConsumerName,
			VisibilityTimeout: cfg.QueueVisibilityTimeout,
			PollInterval:      cfg.QueuePollInterval,
			BatchSize:         cfg.QueueBatchSize,
			MaxLen:            cfg.QueueMaxLen,
		},
		Consumers:  cfg.QueueConsumers,
		Workers:    cfg.WorkerCount,
		BufferSize: cfg.WorkerBufferSize,
	})
	service.RegisterProcessor(processor.NewNotificationProcessor(composer, client, settingsService, idempotencyService))

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
		if err := service.Start(); err != nil {
			logger.Error("failed to start processor", "error", err)
		}
	}()

	<-c
	service.Stop()
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
