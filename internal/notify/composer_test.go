package notify

import (
	"context"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReservations struct {
	mock.Mock
}

func (m *MockReservations) Get(ctx context.Context, id int64) (*model.ReservationDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReservationDetail), args.Error(1)
}

func (m *MockReservations) Upcoming(ctx context.Context, storeID int64, from time.Time, limit int) ([]*model.ReservationDetail, error) {
	args := m.Called(ctx, storeID, from, limit)
	return args.Get(0).([]*model.ReservationDetail), args.Error(1)
}

type MockRevenues struct {
	mock.Mock
}

func (m *MockRevenues) Report(ctx context.Context, id int64) (*model.RevenueReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RevenueReport), args.Error(1)
}

type MockStores struct {
	mock.Mock
}

func (m *MockStores) GetByID(ctx context.Context, id int64) (*model.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Store), args.Error(1)
}

func ptr[T any](v T) *T { return &v }

func reservationAt(id int64, name string, at time.Time) *model.ReservationDetail {
	return &model.ReservationDetail{
		Reservation: model.Reservation{
			ID:       id,
			StoreID:  1,
			Datetime: at,
			Status:   model.ReservationStatusPending,
			Code:     fmt.Sprintf("ABCD%02d0825", id),
		},
		CustomerName: name,
		StoreName:    "Main",
	}
}

func TestComposer_Reservation(t *testing.T) {
	ctx := context.Background()
	reservations := new(MockReservations)
	stores := new(MockStores)
	c := NewComposer(reservations, nil, stores, time.UTC, 30)

	at := time.Date(2025, 8, 15, 19, 30, 0, 0, time.UTC)
	res := reservationAt(10, "Budi", at)
	res.CustomerTelephone = "628123"
	res.Guests = ptr(4)
	res.Room = ptr("VIP")

	reservations.On("Get", ctx, int64(10)).Return(res, nil)
	stores.On("GetByID", ctx, int64(1)).Return(&model.Store{ID: 1, Name: "Main", WhatsApp: ptr("62811")}, nil)
	reservations.On("Upcoming", ctx, int64(1), time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC), 30).
		Return([]*model.ReservationDetail{res, reservationAt(11, "Sari", at.AddDate(0, 0, 5))}, nil)

	msg, err := c.Reservation(ctx, 10)
	require.NoError(t, err)

	assert.Equal(t, "62811", msg.Destination)
	assert.Contains(t, msg.Text, "Customer: Budi")
	assert.Contains(t, msg.Text, "Code: ABCD100825")
	assert.Contains(t, msg.Text, "Date: 15 August 2025")
	assert.Contains(t, msg.Text, "Time: 19:30")
	assert.Contains(t, msg.Text, "Room: VIP")
	assert.Contains(t, msg.Text, "Guests: 4")
	assert.Contains(t, msg.Text, "1. 20/08 19:30 - Sari - ? guests")
	assert.NotContains(t, msg.Text, "- Budi -")
	assert.NotContains(t, msg.Text, "more reservations")
	reservations.AssertExpectations(t)
}

func TestComposer_ReservationInStoreZone(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	ctx := context.Background()
	reservations := new(MockReservations)
	stores := new(MockStores)
	c := NewComposer(reservations, nil, stores, jakarta, 30)

	// 31 Aug 20:00 in Jakarta, as the database hands it back
	res := reservationAt(7, "Budi", time.Date(2025, 8, 31, 13, 0, 0, 0, time.UTC))
	res.Code = "QWER310825"
	late := reservationAt(8, "Sari", time.Date(2025, 8, 31, 16, 0, 0, 0, time.UTC))

	reservations.On("Get", ctx, int64(7)).Return(res, nil)
	stores.On("GetByID", ctx, int64(1)).Return(&model.Store{ID: 1, Name: "Main"}, nil)
	reservations.On("Upcoming", ctx, int64(1), time.Date(2025, 8, 31, 0, 0, 0, 0, jakarta), 30).
		Return([]*model.ReservationDetail{res, late}, nil)

	msg, err := c.Reservation(ctx, 7)
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "Code: QWER310825")
	assert.Contains(t, msg.Text, "Date: 31 August 2025")
	assert.Contains(t, msg.Text, "Time: 20:00")
	assert.Contains(t, msg.Text, "1. 31/08 23:00 - Sari - ? guests")
	assert.NotContains(t, msg.Text, "September")
	reservations.AssertExpectations(t)
}

func TestComposer_ReservationMoreHint(t *testing.T) {
	ctx := context.Background()
	reservations := new(MockReservations)
	stores := new(MockStores)
	c := NewComposer(reservations, nil, stores, time.UTC, 3)

	at := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	res := reservationAt(1, "A", at)
	reservations.On("Get", ctx, int64(1)).Return(res, nil)
	stores.On("GetByID", ctx, int64(1)).Return(&model.Store{ID: 1, Name: "Main"}, nil)
	reservations.On("Upcoming", ctx, int64(1), mock.Anything, 3).Return([]*model.ReservationDetail{
		res, reservationAt(2, "B", at.Add(time.Hour)), reservationAt(3, "C", at.Add(2*time.Hour)),
	}, nil)

	msg, err := c.Reservation(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, msg.Destination)
	assert.Contains(t, msg.Text, "There are more reservations this month")
}

func TestComposer_ReservationNoOthers(t *testing.T) {
	ctx := context.Background()
	reservations := new(MockReservations)
	stores := new(MockStores)
	c := NewComposer(reservations, nil, stores, nil, 0)

	res := reservationAt(1, "A", time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC))
	reservations.On("Get", ctx, int64(1)).Return(res, nil)
	stores.On("GetByID", ctx, int64(1)).Return(&model.Store{ID: 1, Name: "Main"}, nil)
	reservations.On("Upcoming", ctx, int64(1), mock.Anything, model.DefaultUpcomingLimit).Return([]*model.ReservationDetail{res}, nil)

	msg, err := c.Reservation(ctx, 1)
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "No other reservations this month.")
}

func TestComposer_Revenue(t *testing.T) {
	ctx := context.Background()
	revenues := new(MockRevenues)
	stores := new(MockStores)
	c := NewComposer(nil, revenues, stores, time.UTC, 30)

	target := decimal.NewFromInt(100_000_000)
	remaining := decimal.NewFromInt(92_000_000)
	required := decimal.RequireFromString("6133333.33")
	gap := decimal.RequireFromString("5633333.33")
	report := &model.RevenueReport{
		Revenue: &model.RevenueDetail{
			Revenue: model.Revenue{ID: 5, StoreID: 1, Date: time.Date(2025, 8, 16, 0, 0, 0, 0, time.UTC)},
			Items: []*model.RevenueItem{
				{TypeName: "Food", Category: model.RevenueCategoryAddition, Amount: decimal.NewFromInt(10_000_000)},
				{TypeName: "Discount", Category: model.RevenueCategoryDeduction, Amount: decimal.NewFromInt(2_000_000)},
			},
			Compliments: []*model.RevenueCompliment{{Description: "Dessert", For: "Table 4"}},
			Totals: model.RevenueTotals{
				Additions:  decimal.NewFromInt(10_000_000),
				Deductions: decimal.NewFromInt(2_000_000),
				Net:        decimal.NewFromInt(8_000_000),
			},
		},
		Target:             &target,
		MonthlyAccumulated: decimal.NewFromInt(8_000_000),
		AchievementPercent: decimal.NewFromInt(8),
		DaysRemaining:      15,
		RemainingTarget:    &remaining,
		RequiredDaily:      &required,
		DailyGap:           &gap,
	}
	revenues.On("Report", ctx, int64(5)).Return(report, nil)
	stores.On("GetByID", ctx, int64(1)).Return(&model.Store{ID: 1, Name: "Main", WhatsApp: ptr("62811")}, nil)

	msg, err := c.Revenue(ctx, 5)
	require.NoError(t, err)

	assert.Equal(t, "62811", msg.Destination)
	assert.Contains(t, msg.Text, "+ Food: Rp 10.000.000,00")
	assert.Contains(t, msg.Text, "- Discount: Rp 2.000.000,00")
	assert.Contains(t, msg.Text, "*Net: Rp 8.000.000,00*")
	assert.Contains(t, msg.Text, "- Target: Rp 100.000.000,00")
	assert.Contains(t, msg.Text, "- Achieved: 8.00%")
	assert.Contains(t, msg.Text, "- Dessert (for: Table 4)")
	assert.Contains(t, msg.Text, "- Days remaining: 15")
	assert.Contains(t, msg.Text, "Behind pace by Rp 5.633.333,33 per day")
}

func TestComposer_UnknownKind(t *testing.T) {
	c := NewComposer(nil, nil, nil, nil, 0)
	_, err := c.Compose(context.Background(), model.NotificationJob{Kind: "sms"})
	assert.Error(t, err)
}
