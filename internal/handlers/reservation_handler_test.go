package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/valyala/fasthttp"
)

type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) Create(ctx context.Context, req model.ReservationCreateRequest) (*model.ReservationDetail, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReservationDetail), args.Error(1)
}

func (m *MockReservationService) Update(ctx context.Context, id int64, patch model.ReservationPatch) (*model.ReservationDetail, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReservationDetail), args.Error(1)
}

func (m *MockReservationService) Get(ctx context.Context, id int64) (*model.ReservationDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReservationDetail), args.Error(1)
}

func (m *MockReservationService) List(ctx context.Context, f model.ReservationFilter) ([]*model.ReservationDetail, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]*model.ReservationDetail), args.Error(1)
}

func (m *MockReservationService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReservationService) Notify(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func reservationRouter(svc *MockReservationService, role model.Role) func(method, path string, body any) *fasthttp.RequestCtx {
	r, g := newRouter()
	RegisterReservationRoutes(g, NewReservationHandler(svc), asUser(role))
	return func(method, path string, body any) *fasthttp.RequestCtx {
		return serve(r, method, path, body)
	}
}

func TestReservationHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockReservationService)
		do := reservationRouter(svc, model.RoleContributor)

		at := time.Date(2025, 8, 15, 19, 30, 0, 0, time.UTC)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(req model.ReservationCreateRequest) bool {
			return req.CustomerID == 3 && req.StoreID == 1 && req.Datetime.Equal(at) && *req.Guests == 4 && req.Notify
		})).Return(&model.ReservationDetail{Reservation: model.Reservation{ID: 10, Code: "ABCD150825"}}, nil)

		ctx := do("POST", "/api/v1/reservations", `{"customer_id":3,"store_id":1,"datetime":"2025-08-15T19:30","guests":4,"notify":true}`)

		assert.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
		var got model.ReservationDetail
		decodeBody(t, ctx, &got)
		assert.Equal(t, "ABCD150825", got.Code)
		svc.AssertExpectations(t)
	})

	t.Run("bad json", func(t *testing.T) {
		svc := new(MockReservationService)
		ctx := reservationRouter(svc, model.RoleAdmin)("POST", "/api/v1/reservations", `{"customer_id":`)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown customer", func(t *testing.T) {
		svc := new(MockReservationService)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, model.NewValidationError("customer_id", "customer 3 does not exist"))
		ctx := reservationRouter(svc, model.RoleAdmin)("POST", "/api/v1/reservations", `{"customer_id":3,"store_id":1,"datetime":"2025-08-15"}`)

		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
		var body map[string]string
		decodeBody(t, ctx, &body)
		assert.Equal(t, "customer_id", body["field"])
	})

	t.Run("codes exhausted", func(t *testing.T) {
		svc := new(MockReservationService)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, services.ErrCodeGenerationExhausted)
		ctx := reservationRouter(svc, model.RoleAdmin)("POST", "/api/v1/reservations", `{"customer_id":3,"store_id":1,"datetime":"2025-08-15"}`)
		assert.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
	})

	t.Run("guests are refused", func(t *testing.T) {
		svc := new(MockReservationService)
		ctx := reservationRouter(svc, model.RoleGuest)("POST", "/api/v1/reservations", `{}`)
		assert.Equal(t, fasthttp.StatusForbidden, ctx.Response.StatusCode())
	})
}

func TestReservationHandler_Update(t *testing.T) {
	svc := new(MockReservationService)
	do := reservationRouter(svc, model.RoleOperator)

	svc.On("Update", mock.Anything, int64(10), mock.MatchedBy(func(p model.ReservationPatch) bool {
		return p.Status != nil && *p.Status == model.ReservationStatusConfirmed && p.Datetime == nil && p.Guests == nil
	})).Return(&model.ReservationDetail{Reservation: model.Reservation{ID: 10, Status: model.ReservationStatusConfirmed}}, nil).Once()
	ctx := do("PUT", "/api/v1/reservations/10", `{"status":"Confirmed"}`)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	svc.On("Update", mock.Anything, int64(11), mock.Anything).Return(nil, services.ErrStatusTransition).Once()
	ctx = do("PUT", "/api/v1/reservations/11", `{"status":"Pending"}`)
	assert.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())

	svc.On("Update", mock.Anything, int64(12), mock.Anything).Return(nil, services.ErrReservationNotFound).Once()
	ctx = do("PUT", "/api/v1/reservations/12", `{"guests":2}`)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	ctx = do("PUT", "/api/v1/reservations/abc", `{}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestReservationHandler_List(t *testing.T) {
	svc := new(MockReservationService)
	do := reservationRouter(svc, model.RoleContributor)

	svc.On("List", mock.Anything, mock.MatchedBy(func(f model.ReservationFilter) bool {
		return f.StoreID != nil && *f.StoreID == 2 && f.From != nil && f.To == nil && f.Limit == 5
	})).Return([]*model.ReservationDetail{{Reservation: model.Reservation{ID: 1}}}, nil)

	ctx := do("GET", "/api/v1/reservations?store_id=2&from=2025-08-01&limit=5", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var got []model.ReservationDetail
	decodeBody(t, ctx, &got)
	assert.Len(t, got, 1)

	ctx = do("GET", "/api/v1/reservations?store_id=x", nil)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestReservationHandler_DeleteNeedsStaff(t *testing.T) {
	svc := new(MockReservationService)
	ctx := reservationRouter(svc, model.RoleContributor)("DELETE", "/api/v1/reservations/3", nil)
	assert.Equal(t, fasthttp.StatusForbidden, ctx.Response.StatusCode())

	svc.On("Delete", mock.Anything, int64(3)).Return(nil)
	ctx = reservationRouter(svc, model.RoleOperator)("DELETE", "/api/v1/reservations/3", nil)
	assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())
}

func TestReservationHandler_Notify(t *testing.T) {
	svc := new(MockReservationService)
	svc.On("Notify", mock.Anything, int64(4)).Return(nil)
	ctx := reservationRouter(svc, model.RoleContributor)("POST", "/api/v1/reservations/4/notify", nil)
	assert.Equal(t, fasthttp.StatusAccepted, ctx.Response.StatusCode())
}
