package e2e

import (
	"context"
	"strings"
	"testing"
	"time"

	gateway "github.com/nimasrn/reservation-hub/internal/gateways"
	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/internal/notify"
	"github.com/nimasrn/reservation-hub/internal/processor"
	"github.com/nimasrn/reservation-hub/internal/queue"
	"github.com/nimasrn/reservation-hub/internal/repository"
	"github.com/nimasrn/reservation-hub/internal/services"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"github.com/nimasrn/reservation-hub/pkg/redis"
	"github.com/nimasrn/reservation-hub/test/fixtures"
	"github.com/nimasrn/reservation-hub/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestEnvironment struct {
	DB           *pg.DB
	RedisAdapter redis.RedisAdapter
	Queue        *queue.Queue
	WhatsApp     *helpers.FakeWhatsApp

	Reservations *services.ReservationService
	Revenues     *services.RevenueService
	Settings     *services.SettingsService
	Idempotency  *processor.IdempotencyService
	Processor    *processor.ProcessorService
}

func setupE2EEnvironment(t *testing.T) *TestEnvironment {
	db := helpers.SetupTestDB(t)
	_, adapter := helpers.SetupTestRedis(t)
	wa := helpers.StartFakeWhatsApp(t)

	queueConfig := queue.QueueConfig{
		Name:              "test:notifications",
		ConsumerGroup:     "test-notifiers",
		ConsumerName:      "test-notifier",
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      20 * time.Millisecond,
		BatchSize:         10,
		MaxLen:            1000,
	}
	q, err := queue.NewQueue(adapter, queueConfig)
	require.NoError(t, err)

	storeRepo := repository.NewStoreRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	publisher := services.NewQueuePublisher(q)

	reservations := services.NewReservationService(repository.NewReservationRepository(db), storeRepo, customerRepo, publisher,
		services.WithUpcomingLimit(5),
	)
	revenues := services.NewRevenueService(repository.NewRevenueRepository(db), repository.NewTargetRepository(db), storeRepo, publisher)
	settings := services.NewSettingsService(repository.NewSettingRepository(db), adapter)
	require.NoError(t, settings.Load(context.Background()))

	gwConfig := gateway.DefaultConfig(wa.URL)
	gwConfig.Timeout = 2 * time.Second
	client, err := gateway.NewClient(gwConfig)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	composer := notify.NewComposer(reservations, revenues, storeRepo, time.UTC, 5)
	idem := processor.NewIdempotencyService(adapter, processor.DefaultIdempotencyConfig())

	svc := processor.NewProcessorService(adapter, processor.ServiceConfig{
		Queue:      queueConfig,
		Consumers:  2,
		Workers:    2,
		BufferSize: 8,
	})
	svc.RegisterProcessor(processor.NewNotificationProcessor(composer, client, settings, idem))

	return &TestEnvironment{
		DB:           db,
		RedisAdapter: adapter,
		Queue:        q,
		WhatsApp:     wa,
		Reservations: reservations,
		Revenues:     revenues,
		Settings:     settings,
		Idempotency:  idem,
		Processor:    svc,
	}
}

func (env *TestEnvironment) Start(t *testing.T) {
	require.NoError(t, env.Processor.Start())
	t.Cleanup(env.Processor.Stop)
}

func (env *TestEnvironment) Cleanup() {
	if env.Queue != nil {
		_ = env.Queue.Stop(time.Second)
	}
}

func TestE2E_ReservationNotification(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()
	ctx := context.Background()

	require.NoError(t, env.Settings.Set(ctx, model.SettingWhatsAppAPIToken, "tok-e2e"))

	store := helpers.CreateTestStore(t, env.DB, "Main Hall", helpers.Ptr(fixtures.StoreWhatsApp))
	budi := helpers.CreateTestCustomer(t, env.DB, "Budi", "628111")
	sari := helpers.CreateTestCustomer(t, env.DB, "Sari", "628222")

	at := fixtures.NextMonthAt(19, 30)
	later := fixtures.NewReservationRequest(sari.ID, store.ID, at.AddDate(0, 0, 3), 6)
	later.Notify = false
	_, err := env.Reservations.Create(ctx, later)
	require.NoError(t, err)

	res, err := env.Reservations.Create(ctx, fixtures.NewReservationRequest(budi.ID, store.ID, at, 4))
	require.NoError(t, err)
	assert.Len(t, res.Code, 10)

	stats, err := env.Queue.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalMessages)

	env.Start(t)
	helpers.AssertEventually(t, 5*time.Second, func() bool {
		return len(env.WhatsApp.Sent()) == 1
	}, "reservation notification was not delivered")

	sent := env.WhatsApp.Sent()[0]
	assert.Equal(t, "tok-e2e", sent.Token)
	assert.Equal(t, fixtures.StoreWhatsApp, sent.Target)
	assert.Contains(t, sent.Message, "Customer: Budi")
	assert.Contains(t, sent.Message, "Code: "+res.Code)
	assert.Contains(t, sent.Message, "Guests: 4")
	assert.Contains(t, sent.Message, "- Sari - 6 guests")

	helpers.AssertEventually(t, 2*time.Second, func() bool {
		return env.Processor.Metrics().GetStats().Processed == 1
	}, "processor did not record the job")
}

func TestE2E_RevenueNotification(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()
	ctx := context.Background()

	require.NoError(t, env.Settings.Set(ctx, model.SettingWhatsAppAPIToken, "tok-e2e"))
	store := helpers.CreateTestStore(t, env.DB, "Main Hall", helpers.Ptr(fixtures.StoreWhatsApp))

	food, err := env.Revenues.CreateType(ctx, fixtures.TestFoodType)
	require.NoError(t, err)
	discount, err := env.Revenues.CreateType(ctx, fixtures.TestDiscountType)
	require.NoError(t, err)

	date := time.Date(2025, time.August, 16, 0, 0, 0, 0, time.UTC)
	_, err = env.Revenues.CreateTarget(ctx, fixtures.NewTarget(store.ID, time.August, 2025, 100_000_000))
	require.NoError(t, err)

	rev, err := env.Revenues.Create(ctx, fixtures.NewRevenue(store.ID, date))
	require.NoError(t, err)
	_, err = env.Revenues.AddItem(ctx, rev.ID, fixtures.NewRevenueItem(food.ID, 10_000_000))
	require.NoError(t, err)
	_, err = env.Revenues.AddItem(ctx, rev.ID, fixtures.NewRevenueItem(discount.ID, 2_000_000))
	require.NoError(t, err)

	require.NoError(t, env.Revenues.Notify(ctx, rev.ID))

	env.Start(t)
	helpers.AssertEventually(t, 5*time.Second, func() bool {
		return len(env.WhatsApp.Sent()) == 1
	}, "revenue notification was not delivered")

	msg := env.WhatsApp.Sent()[0].Message
	assert.Contains(t, msg, "*Revenue Report*")
	assert.Contains(t, msg, "+ Food: Rp 10.000.000,00")
	assert.Contains(t, msg, "- Discount: Rp 2.000.000,00")
	assert.Contains(t, msg, "*Net: Rp 8.000.000,00*")
	assert.Contains(t, msg, "- Achieved: 8.00%")
}

func TestE2E_PublicReservationWithoutStoreWhatsApp(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()
	ctx := context.Background()

	require.NoError(t, env.Settings.Set(ctx, model.SettingWhatsAppAPIToken, "tok-e2e"))
	quiet := helpers.CreateTestStore(t, env.DB, "Quiet Room", nil)
	loud := helpers.CreateTestStore(t, env.DB, "Loud Room", helpers.Ptr(fixtures.StoreWhatsApp))

	at := fixtures.NextMonthAt(12, 0)
	receipt, err := env.Reservations.PublicCreate(ctx, fixtures.NewPublicReservationRequest(quiet.ID, "Dewi", "0812-333", at))
	require.NoError(t, err)
	assert.Equal(t, "62812333", receipt.Phone)

	view, err := env.Reservations.PublicLookup(ctx, receipt.Code, "0812333")
	require.NoError(t, err)
	assert.Equal(t, "Quiet Room", view.StoreName)

	_, err = env.Reservations.PublicCreate(ctx, fixtures.NewPublicReservationRequest(loud.ID, "Dewi", "0812-333", at))
	require.NoError(t, err)

	env.Start(t)
	helpers.AssertEventually(t, 5*time.Second, func() bool {
		return env.Processor.Metrics().GetStats().Processed == 2
	}, "both jobs should be processed")

	// the quiet store is skipped, only the loud one gets a message
	sent := env.WhatsApp.Sent()
	require.Len(t, sent, 1)
	assert.True(t, strings.Contains(sent[0].Message, "Store: Loud Room"))
}

func TestE2E_MissingTokenSkipsDelivery(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()
	ctx := context.Background()

	store := helpers.CreateTestStore(t, env.DB, "Main Hall", helpers.Ptr(fixtures.StoreWhatsApp))
	customer := helpers.CreateTestCustomer(t, env.DB, "Budi", "628111")

	_, err := env.Reservations.Create(ctx, fixtures.NewReservationRequest(customer.ID, store.ID, fixtures.NextMonthAt(10, 0), 2))
	require.NoError(t, err)

	env.Start(t)
	helpers.AssertEventually(t, 5*time.Second, func() bool {
		return env.Processor.Metrics().GetStats().Processed == 1
	}, "job should be processed")
	assert.Empty(t, env.WhatsApp.Sent())
}
