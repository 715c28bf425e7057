package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"
	"github.com/nimasrn/reservation-hub/internal/model"
	xhttp "github.com/nimasrn/reservation-hub/pkg/http"
	"github.com/shopspring/decimal"
)

type StoreService interface {
	Create(ctx context.Context, st model.Store) (*model.Store, error)
	Update(ctx context.Context, st model.Store) (*model.Store, error)
	Get(ctx context.Context, id int64) (*model.Store, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*model.Store, error)
	LinkCustomer(ctx context.Context, storeID, customerID int64) error
	UnlinkCustomer(ctx context.Context, storeID, customerID int64) error
	Customers(ctx context.Context, storeID int64) ([]*model.Customer, error)
}

type TargetService interface {
	CreateTarget(ctx context.Context, t model.StoreRevenueTarget) (*model.StoreRevenueTarget, error)
	UpdateTarget(ctx context.Context, id int64, amount decimal.Decimal) (*model.StoreRevenueTarget, error)
	DeleteTarget(ctx context.Context, id int64) error
	Targets(ctx context.Context, storeID int64) ([]*model.StoreRevenueTarget, error)
}

type UpcomingService interface {
	Upcoming(ctx context.Context, storeID int64, from time.Time, limit int) ([]*model.ReservationDetail, error)
}

type StoreHandler struct {
	stores   StoreService
	targets  TargetService
	upcoming UpcomingService
}

func RegisterStoreRoutes(e *router.Group, h *StoreHandler, g *Guard) {
	e.GET("/stores", g.Require(Editors, h.ListStores))
	e.POST("/stores", g.Require(Staff, h.CreateStore))
	e.GET("/stores/{id}", g.Require(Editors, h.GetStore))
	e.PUT("/stores/{id}", g.Require(Staff, h.UpdateStore))
	e.DELETE("/stores/{id}", g.Require(Staff, h.DeleteStore))

	e.GET("/stores/{id}/targets", g.Require(Editors, h.ListTargets))
	e.POST("/stores/{id}/targets", g.Require(Staff, h.CreateTarget))
	e.PUT("/targets/{id}", g.Require(Staff, h.UpdateTarget))
	e.DELETE("/targets/{id}", g.Require(Staff, h.DeleteTarget))

	e.GET("/stores/{id}/customers", g.Require(Editors, h.ListCustomers))
	e.POST("/stores/{id}/customers", g.Require(Staff, h.LinkCustomer))
	e.DELETE("/stores/{id}/customers/{customerId}", g.Require(Staff, h.UnlinkCustomer))

	e.GET("/stores/{id}/upcoming", g.Require(Editors, h.Upcoming))
}

func NewStoreHandler(stores StoreService, targets TargetService, upcoming UpcomingService) *StoreHandler {
	return &StoreHandler{
		stores:   stores,
		targets:  targets,
		upcoming: upcoming,
	}
}

type storeRequest struct {
	Name                      string  `json:"name"`
	Telephone                 string  `json:"telephone"`
	Email                     string  `json:"email"`
	Address                   string  `json:"address"`
	WhatsApp                  *string `json:"whatsapp"`
	AcceptsPublicReservations *bool   `json:"accepts_public_reservations"`
}

func (r storeRequest) toModel(id int64) model.Store {
	st := model.Store{
		ID:                        id,
		Name:                      r.Name,
		Telephone:                 r.Telephone,
		Email:                     r.Email,
		Address:                   r.Address,
		WhatsApp:                  r.WhatsApp,
		AcceptsPublicReservations: true,
	}
	if r.AcceptsPublicReservations != nil {
		st.AcceptsPublicReservations = *r.AcceptsPublicReservations
	}
	return st
}

type targetRequest struct {
	Month  int             `json:"month"`
	Year   int             `json:"year"`
	Amount decimal.Decimal `json:"amount"`
}

type linkCustomerRequest struct {
	CustomerID int64 `json:"customer_id"`
}

/* --------------------------------- Stores ----------------------------------- */

func (h *StoreHandler) ListStores(ctx *xhttp.RequestCtx) {
	stores, err := h.stores.List(requestContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, stores)
}

func (h *StoreHandler) CreateStore(ctx *xhttp.RequestCtx) {
	var req storeRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	st, err := h.stores.Create(requestContext(ctx), req.toModel(0))
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, st)
}

func (h *StoreHandler) GetStore(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	st, err := h.stores.Get(requestContext(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, st)
}

func (h *StoreHandler) UpdateStore(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req storeRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	st, err := h.stores.Update(requestContext(ctx), req.toModel(id))
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, st)
}

func (h *StoreHandler) DeleteStore(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := h.stores.Delete(requestContext(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

/* --------------------------------- Targets ---------------------------------- */

func (h *StoreHandler) ListTargets(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	targets, err := h.targets.Targets(requestContext(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, targets)
}

func (h *StoreHandler) CreateTarget(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req targetRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	target, err := h.targets.CreateTarget(requestContext(ctx), model.StoreRevenueTarget{
		StoreID: id,
		Month:   req.Month,
		Year:    req.Year,
		Amount:  req.Amount,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, target)
}

func (h *StoreHandler) UpdateTarget(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req targetRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	target, err := h.targets.UpdateTarget(requestContext(ctx), id, req.Amount)
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, target)
}

func (h *StoreHandler) DeleteTarget(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := h.targets.DeleteTarget(requestContext(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

/* -------------------------------- Customers --------------------------------- */

func (h *StoreHandler) ListCustomers(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	customers, err := h.stores.Customers(requestContext(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, customers)
}

func (h *StoreHandler) LinkCustomer(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req linkCustomerRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	if err := h.stores.LinkCustomer(requestContext(ctx), id, req.CustomerID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

func (h *StoreHandler) UnlinkCustomer(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	customerID, ok := pathID(ctx, "customerId")
	if !ok {
		return
	}
	if err := h.stores.UnlinkCustomer(requestContext(ctx), id, customerID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

// Upcoming lists the store's reservations from ?from= (default: start of
// today) to the end of that month. A missing limit uses the configured one.
func (h *StoreHandler) Upcoming(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	from, err := queryTime(ctx, "from")
	if err != nil {
		respondError(ctx, err)
		return
	}
	limit, err := queryInt(ctx, "limit")
	if err != nil {
		respondError(ctx, err)
		return
	}
	// the zero time asks the service for the start of today
	var start time.Time
	if from != nil {
		start = *from
	}

	items, err := h.upcoming.Upcoming(requestContext(ctx), id, start, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, items)
}
