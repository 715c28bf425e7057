package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/reservation-hub/internal/model"
	xhttp "github.com/nimasrn/reservation-hub/pkg/http"
)

type AnalyticsService interface {
	Aggregate(ctx context.Context, q model.AggregateQuery) (*model.AggregateResult, error)
	TargetOverlay(ctx context.Context, storeID int64, month, year int) (*model.TargetOverlay, error)
}

type AnalyticsHandler struct {
	svc AnalyticsService
}

func RegisterAnalyticsRoutes(e *router.Group, h *AnalyticsHandler, g *Guard) {
	e.POST("/analytics/revenue", g.Require(Staff, h.Revenue))
	e.GET("/analytics/targets", g.Require(Staff, h.Target))
}

func NewAnalyticsHandler(svc AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		svc: svc,
	}
}

type aggregateRequest struct {
	StoreIDs       []int64       `json:"store_ids"`
	DateFrom       Timestamp     `json:"date_from"`
	DateTo         Timestamp     `json:"date_to"`
	GroupBy        model.GroupBy `json:"group_by"`
	Cumulative     bool          `json:"cumulative"`
	SplitByStore   bool          `json:"split_by_store"`
	ChartType      string        `json:"chart_type"`
	IncludeTargets bool          `json:"include_targets"`
}

func (h *AnalyticsHandler) Revenue(ctx *xhttp.RequestCtx) {
	var req aggregateRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	result, err := h.svc.Aggregate(requestContext(ctx), model.AggregateQuery{
		StoreIDs:       req.StoreIDs,
		DateFrom:       req.DateFrom.Time,
		DateTo:         req.DateTo.Time,
		GroupBy:        req.GroupBy,
		Cumulative:     req.Cumulative,
		SplitByStore:   req.SplitByStore,
		ChartType:      req.ChartType,
		IncludeTargets: req.IncludeTargets,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, result)
}

// Target answers ?store_id=&month=&year= with the raw monthly target.
func (h *AnalyticsHandler) Target(ctx *xhttp.RequestCtx) {
	storeID, err := queryInt64(ctx, "store_id")
	if err != nil {
		respondError(ctx, err)
		return
	}
	if storeID == nil {
		respondError(ctx, model.NewValidationError("store_id", "store_id is required"))
		return
	}
	month, err := queryInt(ctx, "month")
	if err != nil {
		respondError(ctx, err)
		return
	}
	year, err := queryInt(ctx, "year")
	if err != nil {
		respondError(ctx, err)
		return
	}

	overlay, err := h.svc.TargetOverlay(requestContext(ctx), *storeID, month, year)
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, overlay)
}
