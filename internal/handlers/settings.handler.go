package handlers

import (
	"context"

	"github.com/fasthttp/router"
	xhttp "github.com/nimasrn/reservation-hub/pkg/http"
)

type SettingsService interface {
	All() map[string]string
	Set(ctx context.Context, key, value string) error
}

type SettingsHandler struct {
	svc SettingsService
}

func RegisterSettingsRoutes(e *router.Group, h *SettingsHandler, g *Guard) {
	e.GET("/settings", g.Require(Admins, h.ListSettings))
	e.PUT("/settings/{key}", g.Require(Admins, h.PutSetting))
}

func NewSettingsHandler(svc SettingsService) *SettingsHandler {
	return &SettingsHandler{
		svc: svc,
	}
}

type settingRequest struct {
	Value string `json:"value"`
}

func (h *SettingsHandler) ListSettings(ctx *xhttp.RequestCtx) {
	writeJSON(ctx, xhttp.StatusOK, h.svc.All())
}

func (h *SettingsHandler) PutSetting(ctx *xhttp.RequestCtx) {
	key, _ := ctx.UserValue("key").(string)
	var req settingRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	if err := h.svc.Set(requestContext(ctx), key, req.Value); err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"key": key, "value": req.Value})
}
