package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/reservation-hub/internal/model"
	xhttp "github.com/nimasrn/reservation-hub/pkg/http"
)

type DashboardService interface {
	Summary(ctx context.Context) (*model.DashboardSummary, error)
}

type DashboardHandler struct {
	svc DashboardService
}

func RegisterDashboardRoutes(e *router.Group, h *DashboardHandler, g *Guard) {
	e.GET("/dashboard", g.Require(AnyUser, h.GetDashboard))
}

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{
		svc: svc,
	}
}

func (h *DashboardHandler) GetDashboard(ctx *xhttp.RequestCtx) {
	summary, err := h.svc.Summary(requestContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, summary)
}
