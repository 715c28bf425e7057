package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/fasthttp/router"
	"github.com/nimasrn/reservation-hub/internal/model"
	xhttp "github.com/nimasrn/reservation-hub/pkg/http"
	"github.com/shopspring/decimal"
)

type RevenueService interface {
	CreateType(ctx context.Context, t model.RevenueType) (*model.RevenueType, error)
	UpdateType(ctx context.Context, t model.RevenueType) (*model.RevenueType, error)
	DeleteType(ctx context.Context, id int64) error
	ListTypes(ctx context.Context) ([]*model.RevenueType, error)

	Create(ctx context.Context, rev model.Revenue) (*model.Revenue, error)
	Update(ctx context.Context, rev model.Revenue) (*model.RevenueDetail, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.RevenueDetail, error)
	List(ctx context.Context, f model.RevenueFilter) ([]*model.Revenue, error)
	AddItem(ctx context.Context, revenueID int64, req model.RevenueItemRequest) (*model.RevenueItem, error)
	DeleteItem(ctx context.Context, id int64) error
	AddCompliment(ctx context.Context, revenueID int64, c model.RevenueCompliment) (*model.RevenueCompliment, error)
	DeleteCompliment(ctx context.Context, id int64) error
	NetTotal(ctx context.Context, revenueID int64) (model.RevenueTotals, error)
	Report(ctx context.Context, revenueID int64) (*model.RevenueReport, error)
	Notify(ctx context.Context, revenueID int64) error
}

type RevenueHandler struct {
	svc RevenueService
}

func RegisterRevenueRoutes(e *router.Group, h *RevenueHandler, g *Guard) {
	e.GET("/revenue-types", g.Require(Staff, h.ListTypes))
	e.POST("/revenue-types", g.Require(Staff, h.CreateType))
	e.PUT("/revenue-types/{id}", g.Require(Staff, h.UpdateType))
	e.DELETE("/revenue-types/{id}", g.Require(Staff, h.DeleteType))

	e.GET("/revenues", g.Require(Editors, h.ListRevenues))
	e.POST("/revenues", g.Require(Editors, h.CreateRevenue))
	e.GET("/revenues/{id}", g.Require(Editors, h.GetRevenue))
	e.PUT("/revenues/{id}", g.Require(Editors, h.UpdateRevenue))
	e.DELETE("/revenues/{id}", g.Require(Editors, h.DeleteRevenue))
	e.POST("/revenues/{id}/items", g.Require(Editors, h.AddItem))
	e.DELETE("/revenue-items/{id}", g.Require(Editors, h.DeleteItem))
	e.POST("/revenues/{id}/compliments", g.Require(Editors, h.AddCompliment))
	e.DELETE("/revenue-compliments/{id}", g.Require(Editors, h.DeleteCompliment))
	e.GET("/revenues/{id}/total", g.Require(Editors, h.NetTotal))
	e.GET("/revenues/{id}/report", g.Require(Editors, h.Report))
	e.POST("/revenues/{id}/notify", g.Require(Editors, h.Notify))
}

func NewRevenueHandler(svc RevenueService) *RevenueHandler {
	return &RevenueHandler{
		svc: svc,
	}
}

type revenueTypeRequest struct {
	Name     string                `json:"name"`
	Category model.RevenueCategory `json:"category"`
}

type revenueRequest struct {
	StoreID int64     `json:"store_id"`
	Date    Timestamp `json:"date"`
	Guests  *int      `json:"guests"`
	Notes   *string   `json:"notes"`
}

type revenueItemRequest struct {
	RevenueTypeID int64           `json:"revenue_type_id"`
	Amount        decimal.Decimal `json:"amount"`
}

type complimentRequest struct {
	Description string `json:"description"`
	For         string `json:"for"`
}

/* ------------------------------ Revenue types ------------------------------- */

func (h *RevenueHandler) ListTypes(ctx *xhttp.RequestCtx) {
	types, err := h.svc.ListTypes(requestContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, types)
}

func (h *RevenueHandler) CreateType(ctx *xhttp.RequestCtx) {
	var req revenueTypeRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	t, err := h.svc.CreateType(requestContext(ctx), model.RevenueType{Name: req.Name, Category: req.Category})
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, t)
}

func (h *RevenueHandler) UpdateType(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req revenueTypeRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	t, err := h.svc.UpdateType(requestContext(ctx), model.RevenueType{ID: id, Name: req.Name, Category: req.Category})
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, t)
}

func (h *RevenueHandler) DeleteType(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteType(requestContext(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

/* --------------------------------- Revenues --------------------------------- */

// ListRevenues accepts ?store_id=1,2 plus from/to/limit.
func (h *RevenueHandler) ListRevenues(ctx *xhttp.RequestCtx) {
	var (
		f   model.RevenueFilter
		err error
	)
	if v := query(ctx, "store_id"); v != "" {
		if f.StoreIDs, err = parseIDs(v); err != nil {
			respondError(ctx, model.NewValidationError("store_id", "invalid store_id"))
			return
		}
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

func (h *RevenueHandler) CreateRevenue(ctx *xhttp.RequestCtx) {
	var req revenueRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	rev, err := h.svc.Create(requestContext(ctx), model.Revenue{
		StoreID: req.StoreID,
		Date:    req.Date.Time,
		Guests:  req.Guests,
		Notes:   req.Notes,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, rev)
}

func (h *RevenueHandler) GetRevenue(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	rev, err := h.svc.Get(requestContext(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, rev)
}

func (h *RevenueHandler) UpdateRevenue(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req revenueRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	rev, err := h.svc.Update(requestContext(ctx), model.Revenue{
		ID:      id,
		StoreID: req.StoreID,
		Date:    req.Date.Time,
		Guests:  req.Guests,
		Notes:   req.Notes,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, rev)
}

func (h *RevenueHandler) DeleteRevenue(ctx *xhttp.RequestCtx) {
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

func (h *RevenueHandler) AddItem(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req revenueItemRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	item, err := h.svc.AddItem(requestContext(ctx), id, model.RevenueItemRequest{
		RevenueTypeID: req.RevenueTypeID,
		Amount:        req.Amount,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, item)
}

func (h *RevenueHandler) DeleteItem(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(requestContext(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

func (h *RevenueHandler) AddCompliment(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req complimentRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	c, err := h.svc.AddCompliment(requestContext(ctx), id, model.RevenueCompliment{
		Description: req.Description,
		For:         req.For,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, c)
}

func (h *RevenueHandler) DeleteCompliment(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCompliment(requestContext(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

func (h *RevenueHandler) NetTotal(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	totals, err := h.svc.NetTotal(requestContext(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, totals)
}

func (h *RevenueHandler) Report(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	report, err := h.svc.Report(requestContext(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, report)
}

func (h *RevenueHandler) Notify(ctx *xhttp.RequestCtx) {
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

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
