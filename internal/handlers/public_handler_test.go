package handlers

import (
	"context"
	"testing"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/valyala/fasthttp"
)

type MockPublicService struct {
	mock.Mock
}

func (m *MockPublicService) PublicCreate(ctx context.Context, req model.PublicReservationRequest) (*model.PublicReservationReceipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublicReservationReceipt), args.Error(1)
}

func (m *MockPublicService) PublicLookup(ctx context.Context, code, phone string) (*model.PublicReservationView, error) {
	args := m.Called(ctx, code, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublicReservationView), args.Error(1)
}

func publicRequest(svc *MockPublicService, method, path, body string) *fasthttp.RequestCtx {
	r, g := newRouter()
	RegisterPublicRoutes(g, NewPublicHandler(svc, "https://book.example.com"))
	ctx := setupTestContext(method, path, []byte(body))
	r.Handler(ctx)
	return ctx
}

func TestPublicHandler_Preflight(t *testing.T) {
	svc := new(MockPublicService)
	ctx := publicRequest(svc, "OPTIONS", "/api/v1/public/reservations", "")

	assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())
	assert.Equal(t, "https://book.example.com", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	assert.Contains(t, string(ctx.Response.Header.Peek("Access-Control-Allow-Methods")), "POST")
	svc.AssertNotCalled(t, "PublicCreate", mock.Anything, mock.Anything)
}

func TestPublicHandler_Create(t *testing.T) {
	svc := new(MockPublicService)
	svc.On("PublicCreate", mock.Anything, mock.MatchedBy(func(req model.PublicReservationRequest) bool {
		return req.StoreID == 1 && req.Name == "Budi" && req.Phone == "0812-7777-8888" && !req.Datetime.IsZero()
	})).Return(&model.PublicReservationReceipt{Code: "WXYZ150825", Phone: "6281277778888"}, nil)

	ctx := publicRequest(svc, "POST", "/api/v1/public/reservations",
		`{"store_id":1,"name":"Budi","phone":"0812-7777-8888","datetime":"2025-08-15T19:30"}`)

	assert.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
	assert.Equal(t, "https://book.example.com", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	var receipt model.PublicReservationReceipt
	decodeBody(t, ctx, &receipt)
	assert.Equal(t, "WXYZ150825", receipt.Code)
}

func TestPublicHandler_CreateClosedStore(t *testing.T) {
	svc := new(MockPublicService)
	svc.On("PublicCreate", mock.Anything, mock.Anything).Return(nil, model.NewValidationError("store_id", "store does not accept public reservations"))

	ctx := publicRequest(svc, "POST", "/api/v1/public/reservations", `{"store_id":2,"name":"A","phone":"1","datetime":"2025-08-15"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestPublicHandler_Lookup(t *testing.T) {
	svc := new(MockPublicService)
	svc.On("PublicLookup", mock.Anything, "wxyz150825", "6281277778888").
		Return(&model.PublicReservationView{Code: "WXYZ150825", Name: "Budi"}, nil)
	svc.On("PublicLookup", mock.Anything, "WXYZ150825", "000").Return(nil, services.ErrPublicLookupNotFound)

	ctx := publicRequest(svc, "POST", "/api/v1/public/reservations/lookup", `{"code":"wxyz150825","phone":"6281277778888"}`)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = publicRequest(svc, "POST", "/api/v1/public/reservations/lookup", `{"code":"WXYZ150825","phone":"000"}`)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"error":"reservation not found"}`, string(ctx.Response.Body()))
}
