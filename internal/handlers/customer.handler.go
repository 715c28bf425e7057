package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/reservation-hub/internal/model"
	xhttp "github.com/nimasrn/reservation-hub/pkg/http"
)

type CustomerService interface {
	Create(ctx context.Context, c model.Customer) (*model.Customer, error)
	Update(ctx context.Context, c model.Customer) (*model.Customer, error)
	Get(ctx context.Context, id int64) (*model.Customer, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*model.Customer, error)
}

type CustomerHandler struct {
	svc CustomerService
}

func RegisterCustomerRoutes(e *router.Group, h *CustomerHandler, g *Guard) {
	e.GET("/customers", g.Require(Editors, h.ListCustomers))
	e.POST("/customers", g.Require(Editors, h.CreateCustomer))
	e.GET("/customers/{id}", g.Require(Editors, h.GetCustomer))
	e.PUT("/customers/{id}", g.Require(Editors, h.UpdateCustomer))
	e.DELETE("/customers/{id}", g.Require(Staff, h.DeleteCustomer))
}

func NewCustomerHandler(svc CustomerService) *CustomerHandler {
	return &CustomerHandler{
		svc: svc,
	}
}

type customerRequest struct {
	Name         string `json:"name"`
	Code         string `json:"code"`
	IsMember     bool   `json:"is_member"`
	Organization string `json:"organization"`
	Telephone    string `json:"telephone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	WhatsApp     string `json:"whatsapp"`
}

func (r customerRequest) toModel(id int64) model.Customer {
	return model.Customer{
		ID:           id,
		Name:         r.Name,
		Code:         r.Code,
		IsMember:     r.IsMember,
		Organization: r.Organization,
		Telephone:    r.Telephone,
		Email:        r.Email,
		Address:      r.Address,
		WhatsApp:     r.WhatsApp,
	}
}

func (h *CustomerHandler) ListCustomers(ctx *xhttp.RequestCtx) {
	customers, err := h.svc.List(requestContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, customers)
}

func (h *CustomerHandler) CreateCustomer(ctx *xhttp.RequestCtx) {
	var req customerRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	c, err := h.svc.Create(requestContext(ctx), req.toModel(0))
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, c)
}

func (h *CustomerHandler) GetCustomer(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	c, err := h.svc.Get(requestContext(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, c)
}

func (h *CustomerHandler) UpdateCustomer(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req customerRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	c, err := h.svc.Update(requestContext(ctx), req.toModel(id))
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, c)
}

func (h *CustomerHandler) DeleteCustomer(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(requestContext(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}
