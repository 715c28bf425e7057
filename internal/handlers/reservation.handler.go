package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/reservation-hub/internal/model"
	xhttp "github.com/nimasrn/reservation-hub/pkg/http"
)

type ReservationService interface {
	Create(ctx context.Context, req model.ReservationCreateRequest) (*model.ReservationDetail, error)
	Update(ctx context.Context, id int64, patch model.ReservationPatch) (*model.ReservationDetail, error)
	Get(ctx context.Context, id int64) (*model.ReservationDetail, error)
	List(ctx context.Context, f model.ReservationFilter) ([]*model.ReservationDetail, error)
	Delete(ctx context.Context, id int64) error
	Notify(ctx context.Context, id int64) error
}

type ReservationHandler struct {
	svc ReservationService
}

func RegisterReservationRoutes(e *router.Group, h *ReservationHandler, g *Guard) {
	e.GET("/reservations", g.Require(Editors, h.ListReservations))
	e.POST("/reservations", g.Require(Editors, h.CreateReservation))
	e.GET("/reservations/{id}", g.Require(Editors, h.GetReservation))
	e.PUT("/reservations/{id}", g.Require(Editors, h.UpdateReservation))
	e.DELETE("/reservations/{id}", g.Require(Staff, h.DeleteReservation))
	e.POST("/reservations/{id}/notify", g.Require(Editors, h.NotifyReservation))
}

func NewReservationHandler(svc ReservationService) *ReservationHandler {
	return &ReservationHandler{
		svc: svc,
	}
}

type createReservationRequest struct {
	CustomerID int64     `json:"customer_id"`
	StoreID    int64     `json:"store_id"`
	Datetime   Timestamp `json:"datetime"`
	Guests     *int      `json:"guests"`
	Notes      *string   `json:"notes"`
	Event      *string   `json:"event"`
	Room       *string   `json:"room"`
	Notify     bool      `json:"notify"`
}

type updateReservationRequest struct {
	CustomerID *int64                   `json:"customer_id"`
	StoreID    *int64                   `json:"store_id"`
	Datetime   *Timestamp               `json:"datetime"`
	Status     *model.ReservationStatus `json:"status"`
	Guests     *int                     `json:"guests"`
	Notes      *string                  `json:"notes"`
	Event      *string                  `json:"event"`
	Room       *string                  `json:"room"`
	Notify     bool                     `json:"notify"`
}

func (h *ReservationHandler) ListReservations(ctx *xhttp.RequestCtx) {
	var (
		f   model.ReservationFilter
		err error
	)
	if f.StoreID, err = queryInt64(ctx, "store_id"); err != nil {
		respondError(ctx, err)
		return
	}
	if f.From, err = queryTime(ctx, "from"); err != nil {
		respondError(ctx, err)
		return
	}
	if f.To, err = queryTime(ctx, "to"); err != nil {
		respondError(ctx, err)
		return
	}
	if f.Limit, err = queryInt(ctx, "limit"); err != nil {
		respondError(ctx, err)
		return
	}

	items, err := h.svc.List(requestContext(ctx), f)
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, items)
}

func (h *ReservationHandler) CreateReservation(ctx *xhttp.RequestCtx) {
	var req createReservationRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	res, err := h.svc.Create(requestContext(ctx), model.ReservationCreateRequest{
		CustomerID: req.CustomerID,
		StoreID:    req.StoreID,
		Datetime:   req.Datetime.Time,
		Guests:     req.Guests,
		Notes:      req.Notes,
		Event:      req.Event,
		Room:       req.Room,
		Notify:     req.Notify,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, res)
}

func (h *ReservationHandler) GetReservation(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	res, err := h.svc.Get(requestContext(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, res)
}

func (h *ReservationHandler) UpdateReservation(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req updateReservationRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	res, err := h.svc.Update(requestContext(ctx), id, model.ReservationPatch{
		CustomerID: req.CustomerID,
		StoreID:    req.StoreID,
		Datetime:   req.Datetime.Ptr(),
		Status:     req.Status,
		Guests:     req.Guests,
		Notes:      req.Notes,
		Event:      req.Event,
		Room:       req.Room,
		Notify:     req.Notify,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, res)
}

func (h *ReservationHandler) DeleteReservation(ctx *xhttp.RequestCtx) {
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

func (h *ReservationHandler) NotifyReservation(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := h.svc.Notify(requestContext(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusAccepted, map[string]string{"status": "queued"})
}
