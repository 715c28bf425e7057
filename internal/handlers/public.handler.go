package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/reservation-hub/internal/model"
	xhttp "github.com/nimasrn/reservation-hub/pkg/http"
)

type PublicReservationService interface {
	PublicCreate(ctx context.Context, req model.PublicReservationRequest) (*model.PublicReservationReceipt, error)
	PublicLookup(ctx context.Context, code, phone string) (*model.PublicReservationView, error)
}

// PublicHandler serves the unauthenticated reservation intake used by
// external booking forms.
type PublicHandler struct {
	svc    PublicReservationService
	origin string
}

func RegisterPublicRoutes(e *router.Group, h *PublicHandler) {
	create := xhttp.CORS(h.origin, h.CreateReservation)
	lookup := xhttp.CORS(h.origin, h.LookupReservation)

	e.POST("/public/reservations", create)
	e.OPTIONS("/public/reservations", create)
	e.POST("/public/reservations/lookup", lookup)
	e.OPTIONS("/public/reservations/lookup", lookup)
}

func NewPublicHandler(svc PublicReservationService, origin string) *PublicHandler {
	return &PublicHandler{
		svc:    svc,
		origin: origin,
	}
}

type publicReservationRequest struct {
	StoreID  int64     `json:"store_id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email"`
	Datetime Timestamp `json:"datetime"`
	Guests   *int      `json:"guests"`
	Notes    *string   `json:"notes"`
	Event    *string   `json:"event"`
	Notify   bool      `json:"notify"`
}

type publicLookupRequest struct {
	Code  string `json:"code"`
	Phone string `json:"phone"`
}

func (h *PublicHandler) CreateReservation(ctx *xhttp.RequestCtx) {
	var req publicReservationRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	receipt, err := h.svc.PublicCreate(ctx, model.PublicReservationRequest{
		StoreID:  req.StoreID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Datetime: req.Datetime.Time,
		Guests:   req.Guests,
		Notes:    req.Notes,
		Event:    req.Event,
		Notify:   req.Notify,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, receipt)
}

func (h *PublicHandler) LookupReservation(ctx *xhttp.RequestCtx) {
	var req publicLookupRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	view, err := h.svc.PublicLookup(ctx, req.Code, req.Phone)
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, view)
}
